package fixtures

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindByKey_FirstMatchInOrder(t *testing.T) {
	table := []IllnessRecord{{Name: "a", Medicine: []string{"x"}}, {Name: "a", Medicine: []string{"y"}}}
	got, ok := FindByKey(table, func(r IllnessRecord) bool { return r.Name == "a" })
	if !ok || got.Medicine[0] != "x" {
		t.Fatalf("expected first match, got %+v ok=%v", got, ok)
	}
	if _, ok := FindByKey(table, func(r IllnessRecord) bool { return r.Name == "b" }); ok {
		t.Fatalf("expected no match")
	}
}

func TestDefault_ToolLookups(t *testing.T) {
	tables := Default()

	doc, ok := tables.Doctor("John Doe")
	if !ok || doc.FreeHours != "9:00 AM - 5:00 PM on Monday to Friday" {
		t.Fatalf("unexpected doctor: %+v ok=%v", doc, ok)
	}
	if _, ok := tables.Doctor("john doe"); ok {
		t.Fatalf("doctor lookup must be exact")
	}

	meds := tables.Medicine("chronic back pain")
	if len(meds) != 2 || meds[0] != "ibuprofen" || meds[1] != "naproxen" {
		t.Fatalf("unexpected medicine: %v", meds)
	}
	if tables.Medicine("flu") != nil {
		t.Fatalf("expected nil for unknown illness")
	}
}

func TestDefault_ReturnsFreshTables(t *testing.T) {
	a := Default()
	a.Customers["medical"][0].Name = "changed"
	if Default().Customers["medical"][0].Name != "Malay Tiwari" {
		t.Fatalf("default tables must not share state")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	doc := `
customers:
  medical:
    - id: "9"
      name: Test Patient
      phone: "+15550001111"
      doctorName: Jane Roe
  legal:
    - id: "10"
      name: Test Client
      phone: "+15550002222"
      tags: [estate, urgent]
doctors:
  - id: "2"
    name: Jane Roe
    freeHours: weekends
illnesses:
  - name: cough
    medicine: [syrup]
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tables, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := tables.Customers["legal"][0].Tags; len(got) != 2 || got[1] != "urgent" {
		t.Fatalf("unexpected tags: %v", got)
	}
	if _, ok := tables.Doctor("Jane Roe"); !ok {
		t.Fatalf("expected doctor from file")
	}
	if m := tables.Medicine("cough"); len(m) != 1 || m[0] != "syrup" {
		t.Fatalf("unexpected medicine: %v", m)
	}
}

func TestParse_RejectsDuplicatePhone(t *testing.T) {
	doc := `
customers:
  medical:
    - {id: "1", phone: "a"}
    - {id: "2", phone: "a"}
`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatalf("expected duplicate phone error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}
