package terminology

import (
	"errors"
	"strings"
	"testing"
)

func TestParseDomain(t *testing.T) {
	for _, d := range Domains {
		got, err := ParseDomain(string(d))
		if err != nil || got != d {
			t.Errorf("ParseDomain(%q) = %q, %v", d, got, err)
		}
	}
	if _, err := ParseDomain("Stage"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for case mismatch, got %v", err)
	}
}

func TestLookupError_Message(t *testing.T) {
	err := &LookupError{Domain: DomainAnatomicalSite, Value: "Elbow"}
	if !strings.Contains(err.Error(), `"Elbow"`) {
		t.Errorf("expected message to quote the value, got %q", err.Error())
	}
	if !errors.Is(err, ErrLookupFailure) {
		t.Error("expected LookupError to match ErrLookupFailure")
	}
}

func TestTerm_IsUnknown(t *testing.T) {
	if !StageUnknown.IsUnknown() || !Unknown.IsUnknown() || !(Term{}).IsUnknown() {
		t.Error("expected placeholder terms to be unknown")
	}
	if (Term{ID: "UBERON:0002048", Label: "lung"}).IsUnknown() {
		t.Error("lung should not be unknown")
	}
}

// =========== Table ===========

func TestNewTable_Join(t *testing.T) {
	tbl, err := NewTable(DomainAnatomicalSite,
		[]LabelRow{{Raw: "Lung", Label: "lung"}, {Raw: "Lung, NOS", Label: "lung"}},
		[]TermRow{{Label: "lung", ID: "UBERON:0002048"}})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if tbl.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", tbl.Len())
	}
	if tbl.Domain() != DomainAnatomicalSite {
		t.Errorf("unexpected domain %s", tbl.Domain())
	}
	term, ok := tbl.Lookup("Lung, NOS")
	if !ok || term.ID != "UBERON:0002048" || term.Label != "lung" {
		t.Errorf("Lookup = %+v, %v", term, ok)
	}
	if _, ok := tbl.Lookup("lung"); ok {
		t.Error("expected case-sensitive miss")
	}
	keys := tbl.Keys()
	if len(keys) != 2 || keys[0] != "Lung" || keys[1] != "Lung, NOS" {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestNewTable_MissingTerm(t *testing.T) {
	_, err := NewTable(DomainStage,
		[]LabelRow{{Raw: "IA", Label: "Stage IA"}},
		nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNewTable_ConflictingRaw(t *testing.T) {
	_, err := NewTable(DomainStage,
		[]LabelRow{{Raw: "III", Label: "Stage III"}, {Raw: "III", Label: "Stage IIIA"}},
		[]TermRow{{Label: "Stage III", ID: "NCIT:C27970"}, {Label: "Stage IIIA", ID: "NCIT:C27977"}})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNewTable_ConflictingTermIDs(t *testing.T) {
	_, err := NewTable(DomainStage, nil,
		[]TermRow{{Label: "Stage III", ID: "NCIT:C27970"}, {Label: "Stage III", ID: "NCIT:C1"}})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNewTable_KeysIsCopy(t *testing.T) {
	tbl, err := NewTable(DomainVitalStatus,
		[]LabelRow{{Raw: "Alive", Label: "Alive"}},
		[]TermRow{{Label: "Alive", ID: "NCIT:C37987"}})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	keys := tbl.Keys()
	keys[0] = "Dead"
	if _, ok := tbl.Lookup("Alive"); !ok {
		t.Error("mutating Keys() result must not affect the table")
	}
}
