package cli

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/protosign/pkg/cache"
	"github.com/platinummonkey/protosign/pkg/engine"
)

func newBatchCommand() *Command {
	return &Command{
		Name:        "batch",
		Description: "Compare every .proto file in a previous/current directory pair",
		Run:         runBatch,
	}
}

// batchOutcome is one file's comparison result, collected for
// deterministic reporting.
type batchOutcome struct {
	relPath string
	verdict engine.Verdict
	err     error
}

func runBatch(args []string) error {
	flags := flag.NewFlagSet("batch", flag.ExitOnError)
	var common commonFlags
	common.register(flags)
	concurrency := flags.Int("concurrency", runtime.NumCPU(), "Maximum concurrent comparisons")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		return fmt.Errorf("usage: protosign batch [flags] PREVIOUS_DIR CURRENT_DIR")
	}
	prevDir, currDir := flags.Arg(0), flags.Arg(1)

	relPaths, err := protoFiles(prevDir)
	if err != nil {
		return exitForEngine(err)
	}
	if len(relPaths) == 0 {
		return fmt.Errorf("no .proto files found in %s", prevDir)
	}

	fpCache, err := cache.New(cache.DefaultSize)
	if err != nil {
		return exitForEngine(err)
	}
	eng, err := engine.New(engine.WithCache(fpCache))
	if err != nil {
		return exitForEngine(err)
	}

	var mu sync.Mutex
	outcomes := make([]batchOutcome, 0, len(relPaths))
	var group errgroup.Group
	group.SetLimit(*concurrency)

	for _, relPath := range relPaths {
		group.Go(func() error {
			outcome := compareOne(eng, prevDir, currDir, relPath)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return exitForEngine(err)
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].relPath < outcomes[j].relPath })

	exitCode := 0
	for _, outcome := range outcomes {
		if outcome.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", outcome.relPath, outcome.err)
			exitCode = 2
			continue
		}
		fmt.Printf("%s: %s\n", outcome.relPath, outcome.verdict)
		if outcome.verdict == engine.VerdictRed && exitCode == 0 {
			exitCode = 1
		}
	}
	if exitCode != 0 {
		return &ExitError{Code: exitCode}
	}
	return nil
}

func compareOne(eng *engine.Engine, prevDir, currDir, relPath string) batchOutcome {
	outcome := batchOutcome{relPath: relPath}
	prev, err := engine.ReadSource(filepath.Join(prevDir, relPath))
	if err != nil {
		outcome.err = err
		return outcome
	}
	curr, err := engine.ReadSource(filepath.Join(currDir, relPath))
	if err != nil {
		outcome.err = err
		return outcome
	}
	result, err := eng.Compare(prev, curr)
	if err != nil {
		outcome.err = err
		return outcome
	}
	outcome.verdict = result.Verdict
	return outcome
}

// protoFiles lists .proto files under root, relative to it.
func protoFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".proto" {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
