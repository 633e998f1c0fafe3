package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/conorfennell/ankiview/internal/anki"
	"github.com/conorfennell/ankiview/internal/config"
	"github.com/conorfennell/ankiview/internal/pipeline"
)

func main() {
	flags := pflag.NewFlagSet("ankiview", pflag.ExitOnError)
	flags.StringP("db", "d", "", "Path to the Anki collection database (collection.anki2)")
	flags.String("config", "", "Path to a YAML config file")
	flags.StringP("repo", "r", ".", "Repository root receiving the generated artifacts")
	flags.Int("days", 365, "Review-history window in days")
	noCommit := flags.Bool("no-commit", false, "Export and render only, do not commit")
	flags.Bool("push", false, "Push after committing")
	flags.BoolP("quiet", "q", false, "Only log warnings and errors")
	flags.Bool("force", false, "Commit even when no artifact changed")
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	configPath, _ := flags.GetString("config")
	cfg, err := config.Load(flags, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ankiview: %v\n", err)
		os.Exit(1)
	}
	if *noCommit {
		cfg.Commit = false
	}

	level := slog.LevelInfo
	if cfg.Quiet {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := pipeline.New(cfg, logger).Run(); err != nil {
		logger.Error("sync failed", "error", err)
		switch {
		case errors.Is(err, anki.ErrDatabaseLocked):
			fmt.Fprintln(os.Stderr, "The collection is locked. Close Anki and run the sync again.")
		case errors.Is(err, anki.ErrDatabaseMissing), errors.Is(err, config.ErrNoProfile):
			fmt.Fprintln(os.Stderr, "No collection found. Install Anki or point --db (or ANKI_DB_PATH) at collection.anki2.")
		}
		os.Exit(1)
	}
}
