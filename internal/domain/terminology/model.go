package terminology

import (
	"errors"
	"fmt"
)

// Domain identifies which controlled vocabulary a raw value belongs to.
type Domain string

const (
	DomainStage          Domain = "stage"
	DomainAnatomicalSite Domain = "anatomical_site"
	DomainVitalStatus    Domain = "vital_status"
	DomainCauseOfDeath   Domain = "cause_of_death"
)

// Domains lists every supported domain in a fixed order.
var Domains = []Domain{DomainStage, DomainAnatomicalSite, DomainVitalStatus, DomainCauseOfDeath}

// ParseDomain maps a domain name to its tag.
func ParseDomain(s string) (Domain, error) {
	for _, d := range Domains {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported domain %q", ErrInvalidArgument, s)
}

// Term is a normalized ontology term: a CURIE plus its label.
type Term struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Ontology prefixes used by the lookup tables.
const (
	PrefixNCIT   = "NCIT"
	PrefixUBERON = "UBERON"
)

// Fixed terms substituted when a noisy domain has no match.
var (
	StageUnknown = Term{ID: "NCIT:C92207", Label: "Stage Unknown"}
	Unknown      = Term{ID: "NCIT:C17998", Label: "Unknown"}
)

// IsUnknown reports whether t is one of the unknown placeholder terms.
func (t Term) IsUnknown() bool {
	return t == StageUnknown || t == Unknown || t.ID == ""
}

// VitalStatus is the closed set of vital states an individual may have.
type VitalStatus string

const (
	StatusUnknown  VitalStatus = "UNKNOWN_STATUS"
	StatusAlive    VitalStatus = "ALIVE"
	StatusDeceased VitalStatus = "DECEASED"
)

// VitalStatusOf maps "Alive" and "Dead" to their status. Anything else,
// including the empty string, is StatusUnknown.
func VitalStatusOf(raw string) VitalStatus {
	switch raw {
	case "Alive":
		return StatusAlive
	case "Dead":
		return StatusDeceased
	default:
		return StatusUnknown
	}
}

var (
	// ErrInvalidArgument is returned for unsupported domains and malformed tables.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrLookupFailure is returned when a controlled-vocabulary domain has no
	// entry for a value.
	ErrLookupFailure = errors.New("lookup failure")
)

// LookupError carries the value that could not be mapped.
type LookupError struct {
	Domain Domain
	Value  string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("could not find %s term for %q", e.Domain, e.Value)
}

// Is makes errors.Is(err, ErrLookupFailure) match a *LookupError.
func (e *LookupError) Is(target error) bool {
	return target == ErrLookupFailure
}

// LabelRow maps a raw free-text value to a normalized label.
type LabelRow struct {
	Raw   string `csv:"raw" db:"raw_label" json:"raw"`
	Label string `csv:"label" db:"label" json:"label"`
}

// TermRow maps a normalized label to its ontology code.
type TermRow struct {
	Label string `csv:"label" db:"label" json:"label"`
	ID    string `csv:"id" db:"ontology_id" json:"id"`
}
