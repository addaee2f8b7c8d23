package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/platinummonkey/protosign/pkg/breaking"
	"github.com/platinummonkey/protosign/pkg/config"
	"github.com/platinummonkey/protosign/pkg/engine"
)

// loadSelection resolves the effective breaking selection from the
// optional config file and the --use-categories override.
func loadSelection(configPath, useCategories string) (breaking.Selection, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return breaking.Selection{}, err
		}
		cfg = loaded
	}
	sel := cfg.Breaking.Selection()
	if useCategories != "" {
		var categories []string
		for _, c := range strings.Split(useCategories, ",") {
			if trimmed := strings.TrimSpace(c); trimmed != "" {
				categories = append(categories, trimmed)
			}
		}
		sel.UseCategories = categories
		sel.UseRules = nil
	}
	return sel, nil
}

// writeReport renders a breaking report as text or JSON.
func writeReport(w io.Writer, report *engine.Report, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}
	for _, c := range report.Changes {
		fmt.Fprintln(w, changeLine(c))
	}
	return nil
}

func changeLine(c breaking.Change) string {
	loc := c.CurrentLocation.FilePath
	if c.CurrentLocation.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, c.CurrentLocation.Line)
	}
	return fmt.Sprintf("%s: %s (%s)", loc, c.Message, c.RuleID)
}

// exitForEngine wraps engine failures into the documented exit code 2.
func exitForEngine(err error) error {
	return &ExitError{Code: 2, Err: err}
}
