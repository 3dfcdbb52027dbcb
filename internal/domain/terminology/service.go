package terminology

import (
	"context"
	"fmt"
)

// Normalizer maps raw categorical values to ontology terms. Its tables are
// loaded once by NewNormalizer and never modified, so a Normalizer is safe
// for concurrent use.
type Normalizer struct {
	tables map[Domain]*Table
}

// NewNormalizer loads the table of every domain from src.
func NewNormalizer(ctx context.Context, src TableSource) (*Normalizer, error) {
	n := &Normalizer{tables: make(map[Domain]*Table, len(Domains))}
	for _, d := range Domains {
		t, err := LoadTable(ctx, src, d)
		if err != nil {
			return nil, fmt.Errorf("load %s table: %w", d, err)
		}
		n.tables[d] = t
	}
	return n, nil
}

// NewNormalizerFromTables builds a Normalizer from prebuilt tables. A domain
// without a table behaves as an empty table.
func NewNormalizerFromTables(tables ...*Table) *Normalizer {
	n := &Normalizer{tables: make(map[Domain]*Table, len(tables))}
	for _, t := range tables {
		n.tables[t.Domain()] = t
	}
	return n
}

// Table returns the lookup table for domain.
func (n *Normalizer) Table(domain Domain) (*Table, error) {
	t, ok := n.tables[domain]
	if !ok {
		return nil, fmt.Errorf("%w: no table for domain %q", ErrInvalidArgument, domain)
	}
	return t, nil
}

func (n *Normalizer) lookup(domain Domain, raw string) (Term, bool) {
	t, ok := n.tables[domain]
	if !ok {
		return Term{}, false
	}
	return t.Lookup(raw)
}

// Normalize maps raw to a term under the policy of its domain:
//   - stage: unmatched values yield StageUnknown
//   - anatomical site: unmatched values fail with a *LookupError
//   - vital status: only "Alive" and "Dead" match, anything else is Unknown
//   - cause of death: unmatched values yield Unknown
func (n *Normalizer) Normalize(domain Domain, raw string) (Term, error) {
	switch domain {
	case DomainStage:
		return n.Stage(raw), nil
	case DomainAnatomicalSite:
		return n.AnatomicalSite(raw)
	case DomainVitalStatus:
		_, term := n.VitalStatus(raw)
		return term, nil
	case DomainCauseOfDeath:
		return n.CauseOfDeath(raw), nil
	default:
		return Term{}, fmt.Errorf("%w: unsupported domain %q", ErrInvalidArgument, domain)
	}
}

// Stage maps a free-text disease stage. Stage data is noisy, so misses
// degrade to StageUnknown.
func (n *Normalizer) Stage(raw string) Term {
	if term, ok := n.lookup(DomainStage, raw); ok {
		return term
	}
	return StageUnknown
}

// AnatomicalSite maps a primary site to an UBERON term. A miss is an
// upstream data-quality problem and is reported, never masked.
func (n *Normalizer) AnatomicalSite(raw string) (Term, error) {
	if term, ok := n.lookup(DomainAnatomicalSite, raw); ok {
		return term, nil
	}
	return Term{}, &LookupError{Domain: DomainAnatomicalSite, Value: raw}
}

// VitalStatus returns the status and its term. Values outside the closed
// set report StatusUnknown with the Unknown term.
func (n *Normalizer) VitalStatus(raw string) (VitalStatus, Term) {
	status := VitalStatusOf(raw)
	if status == StatusUnknown {
		return StatusUnknown, Unknown
	}
	if term, ok := n.lookup(DomainVitalStatus, raw); ok {
		return status, term
	}
	return status, Unknown
}

// CauseOfDeath maps a cause-of-death string; misses yield Unknown.
func (n *Normalizer) CauseOfDeath(raw string) Term {
	if term, ok := n.lookup(DomainCauseOfDeath, raw); ok {
		return term
	}
	return Unknown
}

// NormalizeResponse describes one normalization, as served by the
// terminology endpoint and the normalize command.
type NormalizeResponse struct {
	Domain      Domain       `json:"domain"`
	Value       string       `json:"value"`
	Term        Term         `json:"term"`
	Unknown     bool         `json:"unknown"`
	VitalStatus *VitalStatus `json:"vital_status,omitempty"`
}

// Resolve normalizes raw and reports whether the result is the domain's
// unknown sentinel. Vital-status lookups also carry the status tag.
func (n *Normalizer) Resolve(domain Domain, raw string) (NormalizeResponse, error) {
	term, err := n.Normalize(domain, raw)
	if err != nil {
		return NormalizeResponse{}, err
	}
	resp := NormalizeResponse{Domain: domain, Value: raw, Term: term, Unknown: term.IsUnknown()}
	if domain == DomainVitalStatus {
		status := VitalStatusOf(raw)
		resp.VitalStatus = &status
	}
	return resp, nil
}
