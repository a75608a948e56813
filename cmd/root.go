package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lector/core/internal/action"
	"lector/core/internal/cache"
	"lector/core/internal/logging"
	"lector/core/internal/privacy"
)

var (
	dbPath      string
	actionsDir  string
	privacyPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "lector",
	Short: "Inspect and exercise the reading-companion analysis core",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the .lector.db sidecar store")
	rootCmd.PersistentFlags().StringVar(&actionsDir, "actions-dir", "", "Directory with user action YAML files")
	rootCmd.PersistentFlags().StringVar(&privacyPath, "privacy", "", "Path to a privacy config JSON file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Debug logging")
}

// DiscoverStore finds the sidecar store path using priority: env > flag >
// walk-up > XDG fallback.
func DiscoverStore() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("LECTOR_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		return dbPath, nil
	}

	// 3. Walk up from CWD looking for .lector.db
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".lector.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG data fallback
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no sidecar store found and no home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "lector", "lector.db"), nil
}

// OpenStore discovers and opens the sidecar store, creating it on first use.
func OpenStore() (*cache.SQLiteStore, error) {
	path, err := DiscoverStore()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return cache.OpenSQLite(path, newLogger())
}

func newLogger() *zap.Logger {
	logger, err := logging.New(verbose)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// LoadRegistry builds the action registry: built-ins plus the user action
// directory, user definitions shadowing built-ins with the same ID.
func LoadRegistry() (*action.Registry, error) {
	if actionsDir == "" {
		return action.NewRegistry(action.Builtins()), nil
	}
	custom, err := action.LoadDir(actionsDir)
	if err != nil {
		return nil, err
	}
	return action.NewRegistry(action.Builtins(), custom), nil
}

// LoadPrivacyConfig reads the --privacy JSON file, or returns the
// everything-off default when no file is given.
func LoadPrivacyConfig() (*privacy.Config, error) {
	if privacyPath == "" {
		return &privacy.Config{}, nil
	}
	data, err := os.ReadFile(privacyPath)
	if err != nil {
		return nil, fmt.Errorf("reading privacy config: %w", err)
	}
	var cfg privacy.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing privacy config: %w", err)
	}
	return &cfg, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
