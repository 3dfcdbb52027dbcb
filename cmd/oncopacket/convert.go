package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oncopacket/oncopacket/internal/config"
	"github.com/oncopacket/oncopacket/internal/domain/phenopacket"
	"github.com/oncopacket/oncopacket/internal/platform/db"
	"github.com/oncopacket/oncopacket/internal/platform/gdc"
	"github.com/oncopacket/oncopacket/internal/platform/tabular"
)

type gdcOptions struct {
	Enabled     bool
	StageIndex  bool
	Transcripts bool
}

func (o *gdcOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.Enabled, "gdc", false, "Enrich cases with GDC vital status, stage and variants")
	cmd.Flags().BoolVar(&o.StageIndex, "gdc-stage-index", false, "Prefetch the GDC stage export instead of querying per case")
	cmd.Flags().BoolVar(&o.Transcripts, "gdc-transcripts", false, "Load the Ensembl transcript map to emit hgvs.p expressions")
}

// newGDCClient returns nil when enrichment is disabled.
func newGDCClient(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts gdcOptions) (phenopacket.GDCClient, error) {
	if !opts.Enabled {
		return nil, nil
	}
	client := gdc.NewClient(gdc.Config{
		BaseURL:    cfg.GDCBaseURL,
		Timeout:    cfg.GDCTimeout,
		PageSize:   cfg.GDCPageSize,
		RetryCount: cfg.GDCRetryCount,
	}, logger)

	if opts.StageIndex {
		index, err := client.FetchStageIndex(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch gdc stage index: %w", err)
		}
		client.SetStageIndex(index)
	}
	if opts.Transcripts {
		m, err := client.LoadTranscriptMap(ctx, cfg.EnsemblTranscriptURL)
		if err != nil {
			return nil, fmt.Errorf("load transcript map: %w", err)
		}
		client.SetTranscriptMap(m)
	}
	return client, nil
}

type convertOptions struct {
	Subjects  string
	Diagnoses string
	Specimens string
	OutDir    string
	Workers   int
	Store     bool
	GDC       gdcOptions
}

func convertCmd() *cobra.Command {
	var opts convertOptions
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Build one phenopacket per subject from CDA tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("out") {
				opts.OutDir = cfg.OutputDir
			}
			if !cmd.Flags().Changed("workers") {
				opts.Workers = cfg.Workers
			}
			return runConvert(cmd.Context(), cfg, newLogger(cfg), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Subjects, "subjects", "", "Subject table (CSV or TSV)")
	cmd.Flags().StringVar(&opts.Diagnoses, "diagnoses", "", "Diagnosis table (CSV or TSV)")
	cmd.Flags().StringVar(&opts.Specimens, "specimens", "", "Specimen table (CSV or TSV)")
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "Output directory (default OUTPUT_DIR)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Concurrent case builds (default WORKERS)")
	cmd.Flags().BoolVar(&opts.Store, "store", false, "Persist phenopackets to Postgres")
	opts.GDC.bind(cmd)
	_ = cmd.MarkFlagRequired("subjects")
	return cmd
}

func readOptional(path string) ([]tabular.Row, error) {
	if path == "" {
		return nil, nil
	}
	return tabular.ReadFile(path)
}

func runConvert(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts convertOptions) error {
	start := time.Now()

	subjects, err := tabular.ReadFile(opts.Subjects)
	if err != nil {
		return err
	}
	diagnoses, err := readOptional(opts.Diagnoses)
	if err != nil {
		return err
	}
	specimens, err := readOptional(opts.Specimens)
	if err != nil {
		return err
	}
	if orphans := phenopacket.OrphanSubjects(subjects, diagnoses, specimens); len(orphans) > 0 {
		logger.Warn().Strs("subject_ids", orphans).Msg("rows reference subjects missing from the subject table")
	}
	cases := phenopacket.CasesFromTables(subjects, diagnoses, specimens)

	needPool := opts.Store || cfg.TerminologySource == config.SourceDatabase
	var pool *pgxpool.Pool
	if needPool {
		pool, err = requirePool(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	norm, err := newNormalizer(ctx, cfg, pool)
	if err != nil {
		return err
	}
	gdcClient, err := newGDCClient(ctx, cfg, logger, opts.GDC)
	if err != nil {
		return err
	}
	var repo phenopacket.Repository
	if opts.Store {
		repo = phenopacket.NewRepoPG(pool)
	}
	svc := phenopacket.NewService(norm, gdcClient, repo, logger)

	pkts, err := svc.BuildAll(ctx, cases, opts.Workers)
	if err != nil {
		return err
	}

	for _, p := range pkts {
		path, err := phenopacket.WriteJSON(opts.OutDir, p)
		if err != nil {
			return err
		}
		logger.Debug().Str("subject_id", p.ID).Str("path", path).Msg("wrote phenopacket")
	}

	if opts.Store {
		err := db.WithTx(ctx, pool, func(ctx context.Context) error {
			for _, p := range pkts {
				if err := svc.Save(ctx, p); err != nil {
					return fmt.Errorf("store %s: %w", p.ID, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	logger.Info().
		Int("phenopackets", len(pkts)).
		Str("out", opts.OutDir).
		Bool("stored", opts.Store).
		Dur("elapsed", time.Since(start)).
		Msg("conversion complete")
	return nil
}
