package phenopacket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oncopacket/oncopacket/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Repository storing phenopackets as JSONB.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func scanBody(row pgx.Row) (*Phenopacket, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		return nil, err
	}
	var p Phenopacket
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode phenopacket: %w", err)
	}
	return &p, nil
}

func (r *repoPG) Save(ctx context.Context, p *Phenopacket) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode phenopacket %s: %w", p.ID, err)
	}
	subjectID := ""
	if p.Subject != nil {
		subjectID = p.Subject.ID
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO phenopacket (id, phenopacket_id, subject_id, body)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phenopacket_id) DO UPDATE
		SET subject_id = EXCLUDED.subject_id, body = EXCLUDED.body, updated_at = NOW()`,
		uuid.New(), p.ID, subjectID, body)
	if err != nil {
		return fmt.Errorf("save phenopacket %s: %w", p.ID, err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Phenopacket, error) {
	p, err := scanBody(r.conn(ctx).QueryRow(ctx,
		`SELECT body FROM phenopacket WHERE phenopacket_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Phenopacket, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM phenopacket`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT body FROM phenopacket ORDER BY created_at DESC, phenopacket_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return collect(rows, total)
}

func (r *repoPG) ListBySubject(ctx context.Context, subjectID string, limit, offset int) ([]*Phenopacket, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM phenopacket WHERE subject_id = $1`, subjectID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT body FROM phenopacket WHERE subject_id = $1 ORDER BY created_at DESC, phenopacket_id LIMIT $2 OFFSET $3`,
		subjectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return collect(rows, total)
}

func collect(rows pgx.Rows, total int) ([]*Phenopacket, int, error) {
	defer rows.Close()
	var items []*Phenopacket
	for rows.Next() {
		p, err := scanBody(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
