package catalog

import (
	"fmt"
	"strings"
)

// Catalog is a read-only, ordered list of diagnosis records.
// A *Catalog is safe for concurrent use because nothing mutates it after New.
type Catalog struct {
	records []DiagnosisRecord
}

// New validates records and returns a catalog holding private copies of them.
func New(records ...DiagnosisRecord) (*Catalog, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}
	c := &Catalog{records: make([]DiagnosisRecord, len(records))}
	for i, r := range records {
		c.records[i] = r.Clone()
	}
	return c, nil
}

// MustNew is New for tables known to be valid at compile time.
func MustNew(records ...DiagnosisRecord) *Catalog {
	c, err := New(records...)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks the catalog invariants.
func Validate(records []DiagnosisRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: no records", ErrInvalidCatalog)
	}
	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("%w: record %d has no name", ErrInvalidCatalog, i)
		}
		if r.Confidence < 0 || r.Confidence > 100 {
			return fmt.Errorf("%w: %q confidence %d outside 0..100", ErrInvalidCatalog, r.Name, r.Confidence)
		}
		if len(r.Treatments) == 0 {
			return fmt.Errorf("%w: %q has no treatment steps", ErrInvalidCatalog, r.Name)
		}
		switch r.Status {
		case StatusHealthy, StatusDiseased:
		default:
			return fmt.Errorf("%w: %q has unknown status %q", ErrInvalidCatalog, r.Name, r.Status)
		}
	}
	return nil
}

func (c *Catalog) Len() int {
	return len(c.records)
}

// At returns a copy of the record at index i. It panics when i is out of range.
func (c *Catalog) At(i int) DiagnosisRecord {
	return c.records[i].Clone()
}

// Records returns copies of all records in catalog order.
func (c *Catalog) Records() []DiagnosisRecord {
	out := make([]DiagnosisRecord, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// Lookup finds a record by name, ignoring case.
func (c *Catalog) Lookup(name string) (DiagnosisRecord, bool) {
	for _, r := range c.records {
		if strings.EqualFold(r.Name, name) {
			return r.Clone(), true
		}
	}
	return DiagnosisRecord{}, false
}
