package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/platinummonkey/protosign/pkg/engine"
	"github.com/platinummonkey/protosign/pkg/observability"
)

func newWatchCommand() *Command {
	return &Command{
		Name:        "watch",
		Description: "Re-run the breaking check whenever either input changes",
		Run:         runWatch,
	}
}

func runWatch(args []string) error {
	flags := flag.NewFlagSet("watch", flag.ExitOnError)
	var common commonFlags
	common.register(flags)
	logLevel := flags.String("log-level", "info", "Log level")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		return fmt.Errorf("usage: protosign watch [flags] PREVIOUS CURRENT")
	}
	prevPath, currPath := flags.Arg(0), flags.Arg(1)

	log := observability.NewLogger(*logLevel, os.Stderr)

	sel, err := loadSelection(common.configPath, common.useCategories)
	if err != nil {
		return exitForEngine(err)
	}
	eng, err := engine.New(engine.WithLogger(log))
	if err != nil {
		return exitForEngine(err)
	}

	check := func() {
		prev, err := engine.ReadSource(prevPath)
		if err != nil {
			log.WithError(err).Error("read previous")
			return
		}
		curr, err := engine.ReadSource(currPath)
		if err != nil {
			log.WithError(err).Error("read current")
			return
		}
		report, err := eng.Breaking(prev, curr, sel)
		if err != nil {
			log.WithError(err).Error("breaking check failed")
			return
		}
		if !report.HasChanges() {
			log.Info("no breaking changes")
			return
		}
		for _, c := range report.Changes {
			fmt.Println(changeLine(c))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return exitForEngine(err)
	}
	defer watcher.Close()

	// Watch the parent directories: editors replace files on save, and
	// watching the path directly loses the handle on rename.
	for _, dir := range watchDirs(prevPath, currPath) {
		if err := watcher.Add(dir); err != nil {
			return exitForEngine(err)
		}
	}

	check()
	watched := map[string]bool{
		filepath.Clean(prevPath): true,
		filepath.Clean(currPath): true,
	}
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.WithField("file", event.Name).Debug("change detected")
			check()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")
		}
	}
}

func watchDirs(paths ...string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		dir := filepath.Dir(p)
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}
	return out
}
