package phenopacket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/oncopacket/oncopacket/internal/domain/terminology"
	"github.com/oncopacket/oncopacket/internal/platform/tabular"
)

// CreatedBy is recorded in the metadata of every phenopacket.
const CreatedBy = "oncopacket"

// ErrNoRepository is returned by storage operations on a service built
// without a repository.
var ErrNoRepository = errors.New("phenopacket storage is not configured")

// GDCClient enriches cases with data held by the Genomic Data Commons.
type GDCClient interface {
	FetchVitalStatus(ctx context.Context, subjectID string) (*VitalStatus, error)
	FetchStage(ctx context.Context, subjectID string) (string, error)
	FetchVariants(ctx context.Context, subjectID string) ([]*VariantInterpretation, error)
}

// Service converts cases into phenopackets and stores them.
type Service struct {
	factory *Factory
	gdc     GDCClient
	repo    Repository
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a service. gdc and repo may be nil, disabling
// enrichment and storage respectively.
func NewService(norm *terminology.Normalizer, gdc GDCClient, repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		factory: NewFactory(norm),
		gdc:     gdc,
		repo:    repo,
		logger:  logger.With().Str("component", "phenopacket").Logger(),
		now:     time.Now,
	}
}

// Build converts a single case.
func (s *Service) Build(ctx context.Context, c *Case) (*Phenopacket, error) {
	if c == nil || c.Subject == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, ColSubjectID)
	}
	subject, err := s.factory.Individual(c.Subject)
	if err != nil {
		return nil, err
	}
	log := s.logger.With().Str("subject_id", subject.ID).Logger()

	if s.gdc != nil && subject.VitalStatus == nil {
		vs, err := s.gdc.FetchVitalStatus(ctx, subject.ID)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("gdc vital status unavailable")
		case vs != nil && vs.Status != terminology.StatusUnknown:
			subject.VitalStatus = vs
		}
	}

	p := &Phenopacket{ID: subject.ID, Subject: subject}

	gdcStage := ""
	if s.gdc != nil && needsStage(c.Diagnoses) {
		if gdcStage, err = s.gdc.FetchStage(ctx, subject.ID); err != nil {
			log.Warn().Err(err).Msg("gdc stage unavailable")
			gdcStage = ""
		}
	}
	for _, row := range c.Diagnoses {
		d, err := s.factory.Disease(row, gdcStage)
		if err != nil {
			return nil, err
		}
		p.Diseases = append(p.Diseases, d)
	}

	for _, row := range c.Specimens {
		b, err := s.factory.Biosample(row)
		if err != nil {
			return nil, err
		}
		p.Biosamples = append(p.Biosamples, b)
	}

	if s.gdc != nil {
		variants, err := s.gdc.FetchVariants(ctx, subject.ID)
		if err != nil {
			log.Warn().Err(err).Msg("gdc variants unavailable")
		} else if len(variants) > 0 {
			p.Interpretations = []*Interpretation{interpretation(subject.ID, p.Diseases, variants)}
		}
	}

	p.MetaData = s.metaData()
	log.Debug().
		Int("diseases", len(p.Diseases)).
		Int("biosamples", len(p.Biosamples)).
		Int("interpretations", len(p.Interpretations)).
		Msg("phenopacket built")
	return p, nil
}

// BuildAll converts cases using at most workers goroutines. The result keeps
// the order of cases. The first failing case cancels the batch and its
// subject id is reported in the error.
func (s *Service) BuildAll(ctx context.Context, cases []*Case, workers int) ([]*Phenopacket, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]*Phenopacket, len(cases))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range cases {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := s.Build(ctx, c)
			if err != nil {
				return fmt.Errorf("case %q: %w", caseID(c), err)
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save stores p, replacing any phenopacket with the same id.
func (s *Service) Save(ctx context.Context, p *Phenopacket) error {
	if s.repo == nil {
		return ErrNoRepository
	}
	return s.repo.Save(ctx, p)
}

// Get returns a stored phenopacket.
func (s *Service) Get(ctx context.Context, id string) (*Phenopacket, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.GetByID(ctx, id)
}

// List pages through stored phenopackets, optionally restricted to one
// subject.
func (s *Service) List(ctx context.Context, subjectID string, limit, offset int) ([]*Phenopacket, int, error) {
	if s.repo == nil {
		return nil, 0, ErrNoRepository
	}
	if subjectID != "" {
		return s.repo.ListBySubject(ctx, subjectID, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}

// HasRepository reports whether storage is configured.
func (s *Service) HasRepository() bool { return s.repo != nil }

func (s *Service) metaData() *MetaData {
	return &MetaData{
		Created:                  s.now().UTC(),
		CreatedBy:                CreatedBy,
		Resources:                []*Resource{ResourceNCIT, ResourceUBERON, ResourceNCBITaxon},
		PhenopacketSchemaVersion: SchemaVersion,
	}
}

func needsStage(rows []tabular.Row) bool {
	for _, r := range rows {
		if _, ok := r.Get(ColStage); !ok {
			return true
		}
	}
	return false
}

func interpretation(subjectID string, diseases []*Disease, variants []*VariantInterpretation) *Interpretation {
	disease := MalignantNeoplasm
	if len(diseases) > 0 {
		disease = diseases[0].Term
	}
	dx := &Diagnosis{Disease: disease}
	for _, v := range variants {
		dx.GenomicInterpretations = append(dx.GenomicInterpretations, &GenomicInterpretation{
			SubjectOrBiosampleID:  subjectID,
			InterpretationStatus:  "CANDIDATE",
			VariantInterpretation: v,
		})
	}
	return &Interpretation{
		ID:             subjectID + "-interpretation",
		ProgressStatus: "COMPLETED",
		Diagnosis:      dx,
	}
}

func caseID(c *Case) string {
	if c == nil {
		return ""
	}
	return c.SubjectID()
}

// WriteJSON writes p as indented JSON to <dir>/<id>.json and returns the
// path written.
func WriteJSON(dir string, p *Phenopacket) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode phenopacket %s: %w", p.ID, err)
	}
	path := filepath.Join(dir, fileName(p.ID)+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// fileName replaces characters that are unsafe in file names.
func fileName(id string) string {
	if id == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		}
		return '_'
	}, id)
}
