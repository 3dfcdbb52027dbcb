package phenopacket

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no phenopacket has the requested id.
var ErrNotFound = errors.New("phenopacket not found")

// Repository persists built phenopackets.
type Repository interface {
	// Save inserts p or replaces the stored phenopacket with the same id.
	Save(ctx context.Context, p *Phenopacket) error
	GetByID(ctx context.Context, id string) (*Phenopacket, error)
	List(ctx context.Context, limit, offset int) ([]*Phenopacket, int, error)
	ListBySubject(ctx context.Context, subjectID string, limit, offset int) ([]*Phenopacket, int, error)
}
