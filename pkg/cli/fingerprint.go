package cli

import (
	"flag"
	"fmt"

	"github.com/platinummonkey/protosign/pkg/engine"
)

func newFingerprintCommand() *Command {
	return &Command{
		Name:        "fingerprint",
		Description: "Print the semantic fingerprint of a schema",
		Run:         runFingerprint,
	}
}

func runFingerprint(args []string) error {
	flags := flag.NewFlagSet("fingerprint", flag.ExitOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: protosign fingerprint FILE")
	}

	src, err := engine.ReadSource(flags.Arg(0))
	if err != nil {
		return exitForEngine(err)
	}
	eng, err := engine.New()
	if err != nil {
		return exitForEngine(err)
	}
	fp, err := eng.Fingerprint(src)
	if err != nil {
		return exitForEngine(err)
	}
	fmt.Println(fp)
	return nil
}
