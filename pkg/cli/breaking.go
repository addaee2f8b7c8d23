package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/platinummonkey/protosign/pkg/engine"
)

func newBreakingCommand() *Command {
	return &Command{
		Name:        "breaking",
		Description: "Check a schema revision against its predecessor for breaking changes",
		Run:         runBreaking,
	}
}

func runBreaking(args []string) error {
	flags := flag.NewFlagSet("breaking", flag.ExitOnError)
	var common commonFlags
	common.register(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		return fmt.Errorf("usage: protosign breaking [flags] PREVIOUS CURRENT")
	}

	sel, err := loadSelection(common.configPath, common.useCategories)
	if err != nil {
		return exitForEngine(err)
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
	report, err := eng.Breaking(prev, curr, sel)
	if err != nil {
		return exitForEngine(err)
	}

	if err := writeReport(os.Stdout, report, common.format); err != nil {
		return exitForEngine(err)
	}
	if report.HasChanges() {
		return &ExitError{Code: 1}
	}
	return nil
}
