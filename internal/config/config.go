// Package config resolves the tool's settings from defaults, an optional
// YAML file, environment variables, and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix is the prefix for settings passed through the environment,
// e.g. ANKIVIEW_REPO. The database path additionally honors ANKI_DB_PATH.
const envPrefix = "ANKIVIEW_"

// ErrNoProfile is returned when no Anki installation with a usable
// collection can be located.
var ErrNoProfile = errors.New("no Anki profile with collection.anki2 found")

// CollectionFile is the collection database filename inside a profile.
const CollectionFile = "collection.anki2"

// Config holds every tunable of a sync run.
type Config struct {
	// DB is the path to collection.anki2. Empty means auto-detect.
	DB string `koanf:"db"`
	// Repo is the root of the repository that receives the artifacts.
	Repo string `koanf:"repo" validate:"required"`
	// DataDir and OutputDir are relative to Repo unless absolute.
	DataDir   string `koanf:"data_dir" validate:"required"`
	OutputDir string `koanf:"output_dir" validate:"required"`
	// Days is the review-history window for daily aggregates.
	Days int `koanf:"days" validate:"min=1,max=3650"`
	// Commit stages and commits artifacts after generation.
	Commit bool `koanf:"commit"`
	// Push pushes after a successful commit.
	Push bool `koanf:"push"`
	// Quiet suppresses per-step progress logging.
	Quiet bool `koanf:"quiet"`
	// Force commits even when the worktree reports no changes.
	Force bool `koanf:"force"`
}

// Default returns the baseline configuration before any overrides.
func Default() Config {
	return Config{
		Repo:      ".",
		DataDir:   "data",
		OutputDir: "output",
		Days:      365,
		Commit:    true,
	}
}

// Load merges the config file (if any), environment, and flags over the
// defaults and validates the result.
func Load(flags *pflag.FlagSet, configPath string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(key string) string {
		return strings.ToLower(strings.TrimPrefix(key, envPrefix))
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DataPath returns the resolved data directory.
func (c Config) DataPath() string {
	return resolveDir(c.Repo, c.DataDir)
}

// OutputPath returns the resolved output directory.
func (c Config) OutputPath() string {
	return resolveDir(c.Repo, c.OutputDir)
}

func resolveDir(root, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// ResolveDatabasePath decides which collection database to read.
//
// Priority: the configured path, then the ANKI_DB_PATH environment
// variable, then platform auto-detection.
func (c Config) ResolveDatabasePath() (string, error) {
	if c.DB != "" {
		return c.DB, nil
	}

	if envPath := os.Getenv("ANKI_DB_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("ANKI_DB_PATH not found: %s: %w", envPath, ErrNoProfile)
		}
		return envPath, nil
	}

	base, err := ankiBasePath()
	if err != nil {
		return "", err
	}
	return findProfileDB(base)
}

// ankiBasePath returns the platform's Anki data directory.
func ankiBasePath() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "Anki2"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA not set: %w", ErrNoProfile)
		}
		return filepath.Join(appData, "Anki2"), nil
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, ".local", "share", "Anki2"), nil
	}
}

// findProfileDB scans base for the first profile directory containing a
// collection database. Dotted entries and Anki's own bookkeeping
// directories are skipped.
func findProfileDB(base string) (string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("Anki directory not found: %s: %w", base, ErrNoProfile)
		}
		return "", fmt.Errorf("failed to read Anki directory %s: %w", base, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || name == "addons21" || name == "logs" {
			continue
		}
		dbPath := filepath.Join(base, name, CollectionFile)
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
	}
	return "", fmt.Errorf("%s: %w", base, ErrNoProfile)
}
