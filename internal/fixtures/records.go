package fixtures

import "time"

// CustomerRecord is a caller profile keyed by phone within one domain table.
// Call-history fields are zero until the post-call pipeline records an outcome.
type CustomerRecord struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Phone   string `json:"phone" yaml:"phone"`
	Email   string `json:"email" yaml:"email"`
	Address string `json:"address" yaml:"address"`
	Notes   string `json:"notes" yaml:"notes"`

	// Medical only.
	DoctorName string `json:"doctorName,omitempty" yaml:"doctorName,omitempty"`

	// Legal and receptionist variants.
	Status        string   `json:"status,omitempty" yaml:"status,omitempty"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	LastContacted string   `json:"lastContacted,omitempty" yaml:"lastContacted,omitempty"`

	TotalCalls       int       `json:"totalCalls,omitempty" yaml:"totalCalls,omitempty"`
	SuccessfulCalls  int       `json:"successfulCalls,omitempty" yaml:"successfulCalls,omitempty"`
	LastCallDate     string    `json:"lastCallDate,omitempty" yaml:"lastCallDate,omitempty"`
	LastCallDuration int64     `json:"lastCallDuration,omitempty" yaml:"lastCallDuration,omitempty"`
	LastCallSuccess  *bool     `json:"lastCallSuccess,omitempty" yaml:"lastCallSuccess,omitempty"`
	LastCallReason   string    `json:"lastCallReason,omitempty" yaml:"lastCallReason,omitempty"`
	LastCallSummary  string    `json:"lastCallSummary,omitempty" yaml:"lastCallSummary,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt,omitempty" yaml:"-"`
}

// Clone returns a copy that shares no slices with r.
func (r CustomerRecord) Clone() CustomerRecord {
	out := r
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	if r.LastCallSuccess != nil {
		v := *r.LastCallSuccess
		out.LastCallSuccess = &v
	}
	return out
}

type DoctorRecord struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email" yaml:"email"`
	Phone     string `json:"phone" yaml:"phone"`
	FreeHours string `json:"freeHours" yaml:"freeHours"`
	Address   string `json:"address" yaml:"address"`
	Notes     string `json:"notes" yaml:"notes"`
}

type IllnessRecord struct {
	Name     string   `json:"name" yaml:"name"`
	Medicine []string `json:"medicine" yaml:"medicine"`
}
