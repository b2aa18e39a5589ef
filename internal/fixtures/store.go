package fixtures

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tables is the full reference data set. Customers are grouped by domain tag.
type Tables struct {
	Customers map[string][]CustomerRecord `yaml:"customers"`
	Doctors   []DoctorRecord              `yaml:"doctors"`
	Illnesses []IllnessRecord             `yaml:"illnesses"`
}

// FindByKey returns the first element matching pred in table order.
// Absence is reported through ok, never an error.
func FindByKey[T any](table []T, pred func(T) bool) (T, bool) {
	for _, v := range table {
		if pred(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Doctor looks a doctor up by exact name.
func (t Tables) Doctor(name string) (DoctorRecord, bool) {
	return FindByKey(t.Doctors, func(d DoctorRecord) bool { return d.Name == name })
}

// Medicine returns the medicine list for an illness name, or nil when unknown.
func (t Tables) Medicine(illness string) []string {
	rec, ok := FindByKey(t.Illnesses, func(r IllnessRecord) bool { return r.Name == illness })
	if !ok {
		return nil
	}
	return append([]string(nil), rec.Medicine...)
}

// Load decodes tables from a YAML file. Domains missing from the file are empty.
func Load(path string) (Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Tables{}, fmt.Errorf("decode fixtures: %w", err)
	}
	if t.Customers == nil {
		t.Customers = map[string][]CustomerRecord{}
	}
	for domain, recs := range t.Customers {
		seen := make(map[string]struct{}, len(recs))
		for _, r := range recs {
			if r.Phone == "" {
				return Tables{}, fmt.Errorf("decode fixtures: %s customer %q has no phone", domain, r.ID)
			}
			if _, dup := seen[r.Phone]; dup {
				return Tables{}, fmt.Errorf("decode fixtures: duplicate %s phone %q", domain, r.Phone)
			}
			seen[r.Phone] = struct{}{}
		}
	}
	return t, nil
}
