package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const subjectsCSV = `subject_id,species,sex,days_to_birth,vital_status
TCGA-01,human,male,-15987.0,Alive
TCGA-02,human,female,nan,Dead
TCGA-03,human,female,-20000.0,None
`

const subjectsTSV = "subject_id\tspecies\tsex\tdays_to_birth\n" +
	"TCGA-01\thuman\tmale\t-15987.0\n" +
	"TCGA-02\thuman\tfemale\t-12000.0\n"

func TestRead_CSV(t *testing.T) {
	rows, err := Read(strings.NewReader(subjectsCSV))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if v, ok := rows[0].Get("days_to_birth"); !ok || v != "-15987.0" {
		t.Errorf("days_to_birth = %q, %v", v, ok)
	}
	if _, ok := rows[1].Get("days_to_birth"); ok {
		t.Error("expected nan to be treated as missing")
	}
	if _, ok := rows[2].Get("vital_status"); ok {
		t.Error("expected None to be treated as missing")
	}
	if rows[1].Value("vital_status") != "Dead" {
		t.Errorf("unexpected vital_status %q", rows[1].Value("vital_status"))
	}
}

func TestRead_TSV(t *testing.T) {
	rows, err := Read(strings.NewReader(subjectsTSV))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Value("sex") != "female" {
		t.Errorf("unexpected row %v", rows[1])
	}
}

func TestRead_Empty(t *testing.T) {
	rows, err := Read(strings.NewReader("  \n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rows != nil {
		t.Errorf("expected no rows, got %v", rows)
	}
}

func TestRead_ShortRecordPadded(t *testing.T) {
	rows, err := Read(strings.NewReader("a,b,c\n1,2,3\n4,5\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, ok := rows[1].Get("c"); ok {
		t.Error("expected short record to pad missing column")
	}
}

func TestRead_LongRecord(t *testing.T) {
	_, err := Read(strings.NewReader("a,b\n1,2\n3,4,5\n"))
	if err == nil {
		t.Fatal("expected error for record wider than header")
	}
}

func TestRow_GetAbsentColumn(t *testing.T) {
	r := Row{"a": "1"}
	if _, ok := r.Get("b"); ok {
		t.Error("expected absent column to be missing")
	}
}

func TestGroupBy(t *testing.T) {
	rows := []Row{
		{"subject_id": "A", "stage": "IA"},
		{"subject_id": "B", "stage": "IV"},
		{"subject_id": "A", "stage": "IIB"},
		{"subject_id": "", "stage": "III"},
	}
	g := GroupBy(rows, "subject_id")
	if len(g) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(g))
	}
	if len(g["A"]) != 2 || g["A"][1].Value("stage") != "IIB" {
		t.Errorf("unexpected group A %v", g["A"])
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjects.csv")
	if err := os.WriteFile(path, []byte(subjectsCSV), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(rows))
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDetectDelimiter(t *testing.T) {
	if got := DetectDelimiter([]byte(subjectsTSV)); got != '\t' {
		t.Errorf("expected tab, got %q", got)
	}
	if got := DetectDelimiter([]byte(subjectsCSV)); got != ',' {
		t.Errorf("expected comma, got %q", got)
	}
}
