package customers

import (
	"errors"
	"sync"
	"time"

	"voice-agent-console/internal/fixtures"
)

var (
	ErrNotFound      = errors.New("customers: record not found")
	ErrUnknownDomain = errors.New("customers: unknown domain")
)

// Patch carries the fields an update may set. Nil fields are left alone.
type Patch struct {
	Name          *string
	Email         *string
	Address       *string
	Notes         *string
	DoctorName    *string
	Status        *string
	Tags          []string
	LastContacted *string
}

// Repository is an in-memory customer store with one writer lock per domain table.
// Readers receive copies; writers to the same table are serialized.
type Repository struct {
	tables map[Domain]*table
	now    func() time.Time
}

type table struct {
	mu   sync.RWMutex
	rows []fixtures.CustomerRecord
}

func NewRepository(src fixtures.Tables) *Repository {
	r := &Repository{tables: make(map[Domain]*table, len(Domains)), now: time.Now}
	for _, d := range Domains {
		t := &table{}
		for _, rec := range src.Customers[string(d)] {
			t.rows = append(t.rows, rec.Clone())
		}
		r.tables[d] = t
	}
	return r
}

// Get returns a copy of the record for phone in domain.
func (r *Repository) Get(domain Domain, phone string) (fixtures.CustomerRecord, bool) {
	t, ok := r.tables[domain]
	if !ok {
		return fixtures.CustomerRecord{}, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := fixtures.FindByKey(t.rows, func(c fixtures.CustomerRecord) bool { return c.Phone == phone })
	if !ok {
		return fixtures.CustomerRecord{}, false
	}
	return rec.Clone(), true
}

// List returns copies of every record in domain in table order.
func (r *Repository) List(domain Domain) ([]fixtures.CustomerRecord, error) {
	t, ok := r.tables[domain]
	if !ok {
		return nil, ErrUnknownDomain
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]fixtures.CustomerRecord, 0, len(t.rows))
	for _, rec := range t.rows {
		out = append(out, rec.Clone())
	}
	return out, nil
}

// Update merges p into the record and stamps UpdatedAt.
func (r *Repository) Update(domain Domain, phone string, p Patch) (fixtures.CustomerRecord, error) {
	return r.Apply(domain, phone, func(rec *fixtures.CustomerRecord) {
		setIf(&rec.Name, p.Name)
		setIf(&rec.Email, p.Email)
		setIf(&rec.Address, p.Address)
		setIf(&rec.Notes, p.Notes)
		setIf(&rec.DoctorName, p.DoctorName)
		setIf(&rec.Status, p.Status)
		setIf(&rec.LastContacted, p.LastContacted)
		if p.Tags != nil {
			rec.Tags = append([]string(nil), p.Tags...)
		}
	})
}

// Apply runs fn against the stored record under the table's writer lock.
// fn must not retain the pointer.
func (r *Repository) Apply(domain Domain, phone string, fn func(*fixtures.CustomerRecord)) (fixtures.CustomerRecord, error) {
	t, ok := r.tables[domain]
	if !ok {
		return fixtures.CustomerRecord{}, ErrUnknownDomain
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].Phone != phone {
			continue
		}
		fn(&t.rows[i])
		t.rows[i].UpdatedAt = r.now().UTC()
		return t.rows[i].Clone(), nil
	}
	return fixtures.CustomerRecord{}, ErrNotFound
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
