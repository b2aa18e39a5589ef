package customers

import (
	"fmt"
	"sort"
	"strings"

	"voice-agent-console/internal/fixtures"
)

type Domain string

const (
	DomainMedical      Domain = "medical"
	DomainLegal        Domain = "legal"
	DomainReceptionist Domain = "receptionist"
)

// Domains is the enumerated set of customer tables.
var Domains = []Domain{DomainMedical, DomainLegal, DomainReceptionist}

func ParseDomain(s string) (Domain, bool) {
	for _, d := range Domains {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// ValidateTables rejects customer tables keyed by anything but a known domain.
// Keys are case sensitive, so "Medical" is reported rather than dropped.
func ValidateTables(src fixtures.Tables) error {
	var unknown []string
	for key := range src.Customers {
		if _, ok := ParseDomain(key); !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: %s", ErrUnknownDomain, strings.Join(unknown, ", "))
}

// Classifier maps a bot identity to a domain.
// Both the pre-call resolver and the post-call history update use the same instance.
type Classifier interface {
	Classify(identifier, name string) Domain
}

// KeywordClassifier tests the display name first, then the identifier, for each
// domain keyword in Order. Fallback is returned when nothing matches.
type KeywordClassifier struct {
	Order    []Domain
	Fallback Domain
}

// DefaultClassifier matches "medical" then "legal" and falls back to legal.
func DefaultClassifier() KeywordClassifier {
	return KeywordClassifier{
		Order:    []Domain{DomainMedical, DomainLegal},
		Fallback: DomainLegal,
	}
}

func (k KeywordClassifier) Classify(identifier, name string) Domain {
	for _, field := range []string{name, identifier} {
		field = strings.ToLower(field)
		if field == "" {
			continue
		}
		for _, d := range k.Order {
			if strings.Contains(field, string(d)) {
				return d
			}
		}
	}
	return k.Fallback
}
