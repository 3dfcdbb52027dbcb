package terminology

import (
	"fmt"
	"sort"
)

// Table is an immutable raw-label to Term mapping for one domain. It is built
// once and exposes read-only accessors only.
type Table struct {
	domain Domain
	terms  map[string]Term
}

// NewTable joins label rows with term rows. Every label referenced by a label
// row must have a term row, and a raw value may not map to two labels.
func NewTable(domain Domain, labels []LabelRow, terms []TermRow) (*Table, error) {
	ids := make(map[string]string, len(terms))
	for _, tr := range terms {
		if tr.Label == "" || tr.ID == "" {
			return nil, fmt.Errorf("%w: %s term row has empty label or id", ErrInvalidArgument, domain)
		}
		if prev, ok := ids[tr.Label]; ok && prev != tr.ID {
			return nil, fmt.Errorf("%w: %s label %q has ids %s and %s", ErrInvalidArgument, domain, tr.Label, prev, tr.ID)
		}
		ids[tr.Label] = tr.ID
	}

	t := &Table{domain: domain, terms: make(map[string]Term, len(labels))}
	for _, lr := range labels {
		id, ok := ids[lr.Label]
		if !ok {
			return nil, fmt.Errorf("%w: %s label %q has no ontology id", ErrInvalidArgument, domain, lr.Label)
		}
		term := Term{ID: id, Label: lr.Label}
		if prev, ok := t.terms[lr.Raw]; ok && prev != term {
			return nil, fmt.Errorf("%w: %s value %q maps to %q and %q", ErrInvalidArgument, domain, lr.Raw, prev.Label, term.Label)
		}
		t.terms[lr.Raw] = term
	}
	return t, nil
}

// Domain returns the domain the table serves.
func (t *Table) Domain() Domain { return t.domain }

// Lookup is an exact, case-sensitive match on the raw value.
func (t *Table) Lookup(raw string) (Term, bool) {
	term, ok := t.terms[raw]
	return term, ok
}

func (t *Table) Len() int { return len(t.terms) }

// Keys returns the raw values in sorted order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.terms))
	for k := range t.terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
