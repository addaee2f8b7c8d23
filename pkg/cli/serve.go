package cli

import (
	"flag"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/protosign/pkg/api"
	"github.com/platinummonkey/protosign/pkg/cache"
	"github.com/platinummonkey/protosign/pkg/engine"
	"github.com/platinummonkey/protosign/pkg/observability"
)

// Version is stamped by the build; the default marks dev builds.
var Version = "dev"

func newServeCommand() *Command {
	return &Command{
		Name:        "serve",
		Description: "Serve the comparison engine over HTTP",
		Run:         runServe,
	}
}

func runServe(args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", ":8080", "Listen address")
	logLevel := flags.String("log-level", "info", "Log level")
	cacheSize := flags.Int("cache-size", cache.DefaultSize, "Fingerprint cache entries")
	if err := flags.Parse(args); err != nil {
		return err
	}

	log := observability.NewLogger(*logLevel, os.Stderr)
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	fpCache, err := cache.New(*cacheSize)
	if err != nil {
		return exitForEngine(err)
	}
	eng, err := engine.New(
		engine.WithCache(fpCache),
		engine.WithMetrics(metrics),
		engine.WithLogger(log),
	)
	if err != nil {
		return exitForEngine(err)
	}

	server := api.NewServer(eng, log, registry, Version)
	if err := server.ListenAndServe(*addr); err != nil {
		return exitForEngine(err)
	}
	return nil
}
