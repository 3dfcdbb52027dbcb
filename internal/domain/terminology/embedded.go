package terminology

import (
	"context"
	"embed"
	"fmt"

	"github.com/oncopacket/oncopacket/internal/platform/tabular"
)

//go:embed data/*.tsv
var tables embed.FS

// EmbeddedSource reads the tab-separated reference tables compiled into the
// binary: data/<domain>_labels.tsv and data/<domain>_terms.tsv.
type EmbeddedSource struct{}

// NewEmbeddedSource returns the built-in table source.
func NewEmbeddedSource() TableSource { return EmbeddedSource{} }

func (EmbeddedSource) LoadLabels(_ context.Context, domain Domain) ([]LabelRow, error) {
	var rows []LabelRow
	if err := readTSV(fmt.Sprintf("data/%s_labels.tsv", domain), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (EmbeddedSource) LoadTerms(_ context.Context, domain Domain) ([]TermRow, error) {
	var rows []TermRow
	if err := readTSV(fmt.Sprintf("data/%s_terms.tsv", domain), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func readTSV(name string, out interface{}) error {
	f, err := tables.Open(name)
	if err != nil {
		return fmt.Errorf("open table %s: %w", name, err)
	}
	defer f.Close()
	if err := tabular.DecodeTSV(f, out); err != nil {
		return fmt.Errorf("decode table %s: %w", name, err)
	}
	return nil
}
