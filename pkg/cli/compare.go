package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/platinummonkey/protosign/pkg/engine"
)

func newCompareCommand() *Command {
	return &Command{
		Name:        "compare",
		Description: "Summarize two schema revisions as green, yellow, or red",
		Run:         runCompare,
	}
}

func runCompare(args []string) error {
	flags := flag.NewFlagSet("compare", flag.ExitOnError)
	var common commonFlags
	common.register(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		return fmt.Errorf("usage: protosign compare [flags] PREVIOUS CURRENT")
	}

	prev, err := engine.ReadSource(flags.Arg(0))
	if err != nil {
		return exitForEngine(err)
	}
	curr, err := engine.ReadSource(flags.Arg(1))
	if err != nil {
		return exitForEngine(err)
	}

	eng, err := engine.New()
	if err != nil {
		return exitForEngine(err)
	}
	result, err := eng.Compare(prev, curr)
	if err != nil {
		return exitForEngine(err)
	}

	if common.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return exitForEngine(err)
		}
	} else {
		fmt.Println(result.Verdict)
	}

	if result.Verdict == engine.VerdictRed {
		return &ExitError{Code: 1}
	}
	return nil
}
