package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arbor/paesdiag/internal/config"
	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/metrics"
	"github.com/arbor/paesdiag/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "paesdiag",
	Short: "Adaptive PAES M1 diagnostic",
	Long: "paesdiag scores the two-stage PAES M1 diagnostic, infers atom mastery " +
		"and plans the learning routes that unlock the most official questions.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Database path or DSN (overrides PAESDIAG_DB env var)")
	rootCmd.PersistentFlags().String("driver", "", "Database driver: sqlite or postgres")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(atomsCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if d, _ := cmd.Flags().GetString("driver"); d != "" {
		cfg.DB.Driver = d
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.Log.Level = l
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return config.Config{}, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// resolveDBPath returns the DSN using --db flag (highest priority), then the
// configured DSN (PAESDIAG_DB env var or config file), then for SQLite the
// default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	if p == "" {
		p = cfg.DB.DSN
	}
	if cfg.DB.Driver == store.DriverPostgres {
		if p == "" {
			return "", fmt.Errorf("postgres requires --db or PAESDIAG_DB")
		}
		return p, nil
	}
	if p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(ctx context.Context, cmd *cobra.Command, cfg config.Config, logger *slog.Logger, m *metrics.Metrics) (*store.Store, error) {
	dsn, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	st, err := store.Open(ctx, cfg.DB.Driver, dsn, store.WithLogger(logger), store.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// curriculumSource reads reference data from the --curriculum file when set,
// otherwise from the database. The returned closer is never nil.
func curriculumSource(ctx context.Context, cmd *cobra.Command, cfg config.Config, logger *slog.Logger) (curriculum.Source, func(), error) {
	if path, _ := cmd.Flags().GetString("curriculum"); path != "" {
		b, err := curriculum.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		return b.Source(), func() {}, nil
	}
	st, err := openStore(ctx, cmd, cfg, logger, nil)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { st.Close() }, nil
}
