package terminology

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oncopacket/oncopacket/internal/platform/db"
)

// pgSource reads reference tables from ontology_label_map and ontology_term.
type pgSource struct{ pool *pgxpool.Pool }

// NewPGSource returns a TableSource backed by Postgres.
func NewPGSource(pool *pgxpool.Pool) TableSource { return &pgSource{pool: pool} }

func (s *pgSource) LoadLabels(ctx context.Context, domain Domain) ([]LabelRow, error) {
	rows, err := db.Conn(ctx, s.pool).Query(ctx,
		`SELECT raw_label, label FROM ontology_label_map WHERE domain = $1 ORDER BY raw_label`,
		string(domain))
	if err != nil {
		return nil, fmt.Errorf("load %s labels: %w", domain, err)
	}
	defer rows.Close()
	var out []LabelRow
	for rows.Next() {
		var r LabelRow
		if err := rows.Scan(&r.Raw, &r.Label); err != nil {
			return nil, fmt.Errorf("scan %s label: %w", domain, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *pgSource) LoadTerms(ctx context.Context, domain Domain) ([]TermRow, error) {
	rows, err := db.Conn(ctx, s.pool).Query(ctx,
		`SELECT label, ontology_id FROM ontology_term WHERE domain = $1 ORDER BY label`,
		string(domain))
	if err != nil {
		return nil, fmt.Errorf("load %s terms: %w", domain, err)
	}
	defer rows.Close()
	var out []TermRow
	for rows.Next() {
		var r TermRow
		if err := rows.Scan(&r.Label, &r.ID); err != nil {
			return nil, fmt.Errorf("scan %s term: %w", domain, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SeedStats counts the rows written by Seed.
type SeedStats struct {
	Labels int `json:"labels"`
	Terms  int `json:"terms"`
}

// Seed replaces the Postgres reference tables with every domain of src in one
// transaction. Rows absent from src are removed, so seeding is repeatable.
func Seed(ctx context.Context, pool *pgxpool.Pool, src TableSource) (SeedStats, error) {
	var stats SeedStats
	err := db.WithTx(ctx, pool, func(ctx context.Context) error {
		conn := db.Conn(ctx, pool)
		for _, domain := range Domains {
			if err := seedDomain(ctx, conn, src, domain, &stats); err != nil {
				return err
			}
		}
		return nil
	})
	return stats, err
}

func seedDomain(ctx context.Context, conn db.Querier, src TableSource, domain Domain, stats *SeedStats) error {
	labels, err := src.LoadLabels(ctx, domain)
	if err != nil {
		return err
	}
	terms, err := src.LoadTerms(ctx, domain)
	if err != nil {
		return err
	}
	// Build the table first so inconsistent sources never reach the database.
	if _, err := NewTable(domain, labels, terms); err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, `DELETE FROM ontology_label_map WHERE domain = $1`, string(domain)); err != nil {
		return fmt.Errorf("clear %s labels: %w", domain, err)
	}
	if _, err := conn.Exec(ctx, `DELETE FROM ontology_term WHERE domain = $1`, string(domain)); err != nil {
		return fmt.Errorf("clear %s terms: %w", domain, err)
	}

	for _, t := range terms {
		if _, err := conn.Exec(ctx,
			`INSERT INTO ontology_term (domain, label, ontology_id) VALUES ($1, $2, $3)`,
			string(domain), t.Label, t.ID); err != nil {
			return fmt.Errorf("seed %s term %q: %w", domain, t.Label, err)
		}
		stats.Terms++
	}
	for _, l := range labels {
		if _, err := conn.Exec(ctx,
			`INSERT INTO ontology_label_map (domain, raw_label, label) VALUES ($1, $2, $3)`,
			string(domain), l.Raw, l.Label); err != nil {
			return fmt.Errorf("seed %s label %q: %w", domain, l.Raw, err)
		}
		stats.Labels++
	}
	return nil
}
