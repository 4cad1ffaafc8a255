package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/backupwatch/backupwatch/internal/apply"
	"github.com/backupwatch/backupwatch/internal/config"
	"github.com/backupwatch/backupwatch/internal/policy"
	"github.com/backupwatch/backupwatch/internal/render"
	"github.com/backupwatch/backupwatch/internal/state"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outDir := flag.String("out", "", "override the output directory from the config file")
	stateDB := flag.String("state", "", "override the state database path from the config file")
	watch := flag.Bool("watch", false, "keep running and regenerate whenever the config file changes")
	printOnly := flag.Bool("print", false, "print each policy as monitoring API JSON to stdout instead of applying")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("backupwatch starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	applyOverrides(cfg, *outDir, *stateDB)

	slog.Info("config loaded",
		"project", cfg.Project,
		"policies", len(cfg.Policies),
		"output_dir", cfg.OutputDir,
	)

	if *printOnly {
		if err := printPolicies(cfg); err != nil {
			slog.Error("print failed", "err", err)
			os.Exit(1)
		}
		return
	}

	store, err := state.OpenSQLite(cfg.StateDB)
	if err != nil {
		slog.Error("failed to open state database", "path", cfg.StateDB, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if _, err := apply.New(cfg, store).Run(ctx); err != nil {
		slog.Error("apply failed", "err", err)
		os.Exit(1)
	}

	if !*watch {
		return
	}

	// Watch mode: regenerate on every config change until interrupted.
	err = config.Watch(ctx, *configPath, func(next *config.Config) {
		applyOverrides(next, *outDir, *stateDB)
		if _, err := apply.New(next, store).Run(ctx); err != nil {
			slog.Error("apply failed after reload", "err", err)
		}
	})
	if err != nil {
		slog.Error("watch failed", "err", err)
		os.Exit(1)
	}
}

// applyOverrides applies non-empty CLI flag values over the file config.
func applyOverrides(cfg *config.Config, outDir, stateDB string) {
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if stateDB != "" {
		cfg.StateDB = stateDB
	}
}

// printPolicies writes each generated policy as monitoring API JSON to
// stdout, for inspection without touching disk or state.
func printPolicies(cfg *config.Config) error {
	for _, pc := range cfg.Policies {
		p, err := policy.Generate(pc.Request(cfg.Project, cfg.JobCategories))
		if err != nil {
			return err
		}
		doc, err := render.APIJSON(p)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(os.Stdout, "%s", doc); err != nil {
			return err
		}
	}
	return nil
}
