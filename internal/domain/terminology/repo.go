package terminology

import "context"

// TableSource supplies the raw rows a Table is built from. Implementations
// are read once at start-up.
type TableSource interface {
	LoadLabels(ctx context.Context, domain Domain) ([]LabelRow, error)
	LoadTerms(ctx context.Context, domain Domain) ([]TermRow, error)
}

// LoadTable reads one domain from src and builds its Table.
func LoadTable(ctx context.Context, src TableSource, domain Domain) (*Table, error) {
	labels, err := src.LoadLabels(ctx, domain)
	if err != nil {
		return nil, err
	}
	terms, err := src.LoadTerms(ctx, domain)
	if err != nil {
		return nil, err
	}
	return NewTable(domain, labels, terms)
}
