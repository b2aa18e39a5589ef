package customers

import (
	"fmt"
	"time"

	"voice-agent-console/internal/fixtures"
	"voice-agent-console/pkg/logger"
)

// CallOutcome is the slice of an end-of-call report stored on the caller's record.
type CallOutcome struct {
	EndedAt    time.Time
	DurationMs int64
	Successful bool
	Reason     string
	Summary    string
}

type Service struct {
	repo       *Repository
	classifier Classifier
}

func NewService(repo *Repository, classifier Classifier) *Service {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &Service{repo: repo, classifier: classifier}
}

func (s *Service) Classify(identifier, name string) Domain {
	return s.classifier.Classify(identifier, name)
}

func (s *Service) GetUserData(phone string, domain Domain) (fixtures.CustomerRecord, bool) {
	return s.repo.Get(domain, phone)
}

func (s *Service) UpdateUserData(phone string, domain Domain, p Patch) (fixtures.CustomerRecord, error) {
	rec, err := s.repo.Update(domain, phone, p)
	if err != nil {
		return fixtures.CustomerRecord{}, fmt.Errorf("update %s/%s: %w", domain, logger.MaskPhone(phone), err)
	}
	return rec, nil
}

// RecordCallOutcome bumps call counters atomically for the caller.
func (s *Service) RecordCallOutcome(phone string, domain Domain, o CallOutcome) (fixtures.CustomerRecord, error) {
	rec, err := s.repo.Apply(domain, phone, func(r *fixtures.CustomerRecord) {
		r.TotalCalls++
		if o.Successful {
			r.SuccessfulCalls++
		}
		if !o.EndedAt.IsZero() {
			r.LastCallDate = o.EndedAt.UTC().Format(time.RFC3339)
		}
		r.LastCallDuration = o.DurationMs
		ok := o.Successful
		r.LastCallSuccess = &ok
		r.LastCallReason = o.Reason
		r.LastCallSummary = o.Summary
	})
	if err != nil {
		return fixtures.CustomerRecord{}, fmt.Errorf("record call %s/%s: %w", domain, logger.MaskPhone(phone), err)
	}
	return rec, nil
}
