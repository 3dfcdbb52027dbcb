package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oncopacket/oncopacket/internal/config"
	"github.com/oncopacket/oncopacket/internal/domain/phenopacket"
	"github.com/oncopacket/oncopacket/internal/domain/terminology"
	"github.com/oncopacket/oncopacket/internal/duration"
	"github.com/oncopacket/oncopacket/internal/platform/db"
	"github.com/oncopacket/oncopacket/internal/platform/server"
	"github.com/oncopacket/oncopacket/migrations"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "oncopacket",
		Short:        "Convert CDA/GDC oncology records to GA4GH Phenopackets",
		SilenceUsage: true,
	}
	root.AddCommand(convertCmd())
	root.AddCommand(durationCmd())
	root.AddCommand(normalizeCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	return root
}

// newLogger writes JSON to stdout, or console output in development.
func newLogger(cfg *config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openPool connects when DATABASE_URL is set and returns nil otherwise.
func openPool(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	if !cfg.HasDatabase() {
		return nil, nil
	}
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, logger)
}

func requirePool(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	if !cfg.HasDatabase() {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return openPool(ctx, cfg, logger)
}

// newNormalizer loads the lookup tables from the configured source.
func newNormalizer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*terminology.Normalizer, error) {
	var src terminology.TableSource = terminology.NewEmbeddedSource()
	if cfg.TerminologySource == config.SourceDatabase {
		src = terminology.NewPGSource(pool)
	}
	norm, err := terminology.NewNormalizer(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load %s terminology: %w", cfg.TerminologySource, err)
	}
	return norm, nil
}

func durationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duration <days>",
		Short: "Print the ISO 8601 duration for a number of days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := duration.FromString(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <domain> <value>",
		Short: "Map a raw categorical value to its ontology term",
		Long: "Map a raw categorical value to its ontology term.\n" +
			"Domains: stage, anatomical_site, vital_status, cause_of_death.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			domain, err := terminology.ParseDomain(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := openPool(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			if pool != nil {
				defer pool.Close()
			}
			norm, err := newNormalizer(ctx, cfg, pool)
			if err != nil {
				return err
			}

			resp, err := norm.Resolve(domain, args[1])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
}

func serveCmd() *cobra.Command {
	var gdcOpts gdcOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := openPool(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if pool != nil {
				defer pool.Close()
			}
			norm, err := newNormalizer(ctx, cfg, pool)
			if err != nil {
				return err
			}

			var repo phenopacket.Repository
			if pool != nil {
				repo = phenopacket.NewRepoPG(pool)
			} else {
				logger.Warn().Msg("DATABASE_URL not set, phenopacket storage endpoints are disabled")
			}
			gdcClient, err := newGDCClient(ctx, cfg, logger, gdcOpts)
			if err != nil {
				return err
			}

			e := server.New(server.Options{
				Logger:       logger,
				Pool:         pool,
				Normalizer:   norm,
				Phenopackets: phenopacket.NewService(norm, gdcClient, repo, logger),
			})
			return server.Run(ctx, e, ":"+cfg.Port, logger)
		},
	}
	gdcOpts.bind(cmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := requirePool(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrations.FS).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := requirePool(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrations.FS).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatuses(cmd.OutOrStdout(), statuses)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Copy the embedded terminology tables into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := requirePool(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			stats, err := terminology.Seed(ctx, pool, terminology.NewEmbeddedSource())
			if err != nil {
				return fmt.Errorf("seed terminology: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d term(s) and %d label(s).\n", stats.Terms, stats.Labels)
			return nil
		},
	})

	return cmd
}

func printStatuses(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}
