// Package cli implements the protosign command-line interface: a small
// subcommand table over the comparison engine.
package cli

import (
	"flag"
	"fmt"
	"os"
	"sort"
)

// Command represents a CLI subcommand.
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
}

// ExitError carries a process exit code through the error return. A
// wrapped error, when present, is printed to standard error by main.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewRootCommand creates the root command with all subcommands.
func NewRootCommand() *Command {
	root := &Command{
		Name:        "protosign",
		Description: "Protobuf schema fingerprinting and breaking-change detection",
		Subcommands: make(map[string]*Command),
	}

	root.Subcommands["breaking"] = newBreakingCommand()
	root.Subcommands["compare"] = newCompareCommand()
	root.Subcommands["fingerprint"] = newFingerprintCommand()
	root.Subcommands["batch"] = newBatchCommand()
	root.Subcommands["watch"] = newWatchCommand()
	root.Subcommands["serve"] = newServeCommand()

	return root
}

// Execute dispatches to a subcommand.
func (c *Command) Execute() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return c.usage()
	}

	if args[0] == "-h" || args[0] == "--help" {
		return c.usage()
	}

	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

func (c *Command) usage() error {
	fmt.Printf("Usage: %s <command> [args]\n\n", c.Name)
	fmt.Printf("Commands:\n")
	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}

// commonFlags registers the flags every comparison subcommand shares.
type commonFlags struct {
	configPath    string
	format        string
	useCategories string
}

func (f *commonFlags) register(flags *flag.FlagSet) {
	flags.StringVar(&f.configPath, "config", "", "Path to a protosign YAML config")
	flags.StringVar(&f.format, "format", "text", "Output format: text, json")
	flags.StringVar(&f.useCategories, "use-categories", "", "Comma-separated rule categories overriding the config")
}
