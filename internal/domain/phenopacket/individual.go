package phenopacket

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oncopacket/oncopacket/internal/domain/terminology"
	"github.com/oncopacket/oncopacket/internal/duration"
	"github.com/oncopacket/oncopacket/internal/platform/tabular"
)

// Subject table columns.
const (
	ColSubjectID         = "subject_id"
	ColSubjectIdentifier = "subject_identifier"
	ColSpecies           = "species"
	ColSex               = "sex"
	ColDaysToBirth       = "days_to_birth"
	ColVitalStatus       = "vital_status"
	ColDaysToDeath       = "days_to_death"
	ColCauseOfDeath      = "cause_of_death"
)

// ErrMissingField is returned when a row lacks a column the factory needs.
var ErrMissingField = errors.New("missing required field")

// HomoSapiens is the taxonomy assigned to human subjects.
var HomoSapiens = &OntologyClass{ID: "NCBITaxon:9606", Label: "Homo sapiens"}

// Factory turns table rows into phenopacket elements. It holds no mutable
// state and may be shared between goroutines.
type Factory struct {
	norm *terminology.Normalizer
}

// NewFactory creates a factory backed by norm.
func NewFactory(norm *terminology.Normalizer) *Factory {
	return &Factory{norm: norm}
}

// parseDays reads a day count exported as an integer or float, optionally
// negated (days_to_birth counts backwards from the index date).
func parseDays(raw string) (int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "-")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse day count %q: %w", raw, err)
	}
	return int(f), nil
}

// ageElement converts a day count column into an age. Missing or unparsable
// counts and zero-length ages ("P") yield nil.
func ageElement(row tabular.Row, column string) *TimeElement {
	raw, ok := row.Get(column)
	if !ok {
		return nil
	}
	days, err := parseDays(raw)
	if err != nil {
		return nil
	}
	iso := duration.FromDays(days)
	if iso == "P" {
		return nil
	}
	return AgeElement(iso)
}

// Individual builds the subject of a phenopacket from one subject row.
func (f *Factory) Individual(row tabular.Row) (*Individual, error) {
	id, ok := row.Get(ColSubjectID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, ColSubjectID)
	}
	ind := &Individual{ID: id, Sex: sexOf(row.Value(ColSex))}
	if alt, ok := row.Get(ColSubjectIdentifier); ok && alt != id {
		ind.AlternateIDs = []string{alt}
	}
	if isHuman(row.Value(ColSpecies)) {
		ind.Taxonomy = HomoSapiens
	}

	ind.TimeAtLastEncounter = ageElement(row, ColDaysToBirth)
	ind.VitalStatus = f.VitalStatus(row)
	return ind, nil
}

// VitalStatus returns the vital status recorded on a subject row, or nil when
// the row carries no recognised status.
func (f *Factory) VitalStatus(row tabular.Row) *VitalStatus {
	status, _ := f.norm.VitalStatus(row.Value(ColVitalStatus))
	if status == terminology.StatusUnknown {
		return nil
	}
	vs := &VitalStatus{Status: status}
	if raw, ok := row.Get(ColDaysToDeath); ok {
		if days, err := parseDays(raw); err == nil {
			vs.SurvivalTimeInDays = &days
		}
	}
	if raw, ok := row.Get(ColCauseOfDeath); ok {
		if term := f.norm.CauseOfDeath(raw); !term.IsUnknown() {
			vs.CauseOfDeath = FromTerm(term)
		}
	}
	return vs
}

func sexOf(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return SexMale
	case "female", "f":
		return SexFemale
	default:
		return SexUnknown
	}
}

func isHuman(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "human", "homo sapiens":
		return true
	}
	return false
}
