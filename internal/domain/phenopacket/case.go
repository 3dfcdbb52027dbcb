package phenopacket

import (
	"sort"

	"github.com/oncopacket/oncopacket/internal/platform/tabular"
)

// Case is everything known about one subject before conversion: the subject
// row plus its diagnosis and specimen rows.
type Case struct {
	Subject   tabular.Row   `json:"subject"`
	Diagnoses []tabular.Row `json:"diagnoses,omitempty"`
	Specimens []tabular.Row `json:"specimens,omitempty"`
}

// SubjectID returns the subject_id of the case.
func (c *Case) SubjectID() string {
	return c.Subject.Value(ColSubjectID)
}

// CasesFromTables joins diagnosis and specimen rows onto their subjects by
// subject_id. Cases are returned in subject table order; duplicate subject
// rows are collapsed into the first one.
func CasesFromTables(subjects, diagnoses, specimens []tabular.Row) []*Case {
	dx := tabular.GroupBy(diagnoses, ColSubjectID)
	sp := tabular.GroupBy(specimens, ColSubjectID)

	seen := make(map[string]bool, len(subjects))
	var cases []*Case
	for _, s := range subjects {
		id := s.Value(ColSubjectID)
		if id != "" && seen[id] {
			continue
		}
		seen[id] = true
		cases = append(cases, &Case{Subject: s, Diagnoses: dx[id], Specimens: sp[id]})
	}
	return cases
}

// OrphanSubjects lists subject ids referenced by diagnosis or specimen rows
// that have no subject row.
func OrphanSubjects(subjects, diagnoses, specimens []tabular.Row) []string {
	known := tabular.GroupBy(subjects, ColSubjectID)
	orphans := make(map[string]bool)
	for _, rows := range [][]tabular.Row{diagnoses, specimens} {
		for id := range tabular.GroupBy(rows, ColSubjectID) {
			if _, ok := known[id]; !ok {
				orphans[id] = true
			}
		}
	}
	out := make([]string, 0, len(orphans))
	for id := range orphans {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
