package reporting

import (
	"context"
	"errors"
	"time"

	"voice-agent-console/internal/calls"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository is the read side of the call-log store.
type Repository interface {
	List(ctx context.Context, from, to time.Time) ([]calls.LogEntry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Entries returns the stored call logs in range, oldest first.
func (s *Service) Entries(ctx context.Context, r TimeRange) ([]calls.LogEntry, error) {
	if !r.Valid() {
		return nil, ErrInvalidRequest
	}
	if s.repo == nil {
		return nil, errors.New("reporting: repository not configured")
	}
	return s.repo.List(ctx, r.From, r.To)
}

func (s *Service) CallsSummary(ctx context.Context, r TimeRange) (CallsSummary, error) {
	rows, err := s.Entries(ctx, r)
	if err != nil {
		return CallsSummary{}, err
	}
	return Summarize(r, rows), nil
}

// Summarize folds entries into a CallsSummary.
func Summarize(r TimeRange, rows []calls.LogEntry) CallsSummary {
	out := CallsSummary{
		Range:        r,
		ByQuality:    map[string]int{},
		BySentiment:  map[string]int{},
		ByEngagement: map[string]int{},
		ByTopic:      map[string]int{},
	}
	scoreSum := 0
	for _, e := range rows {
		a := e.Analysis
		out.TotalCalls++
		out.TotalDurationMs += e.Processed.DurationMs
		scoreSum += a.SuccessMetrics.SuccessScore

		if e.Event.IsSuccessful {
			out.SuccessfulCalls++
		}
		if a.Fallback {
			out.FallbackCalls++
		}
		if a.Insights.FollowUpRequired {
			out.FollowUpCalls++
		}
		if e.Processed.DurationMalformed {
			out.MalformedDurationCalls++
		}

		out.ByQuality[string(e.Processed.CallQuality)]++
		out.BySentiment[string(a.Insights.Sentiment)]++
		out.ByEngagement[string(a.SuccessMetrics.EngagementLevel)]++
		for _, topic := range a.Insights.KeyTopics {
			out.ByTopic[topic]++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationMs = out.TotalDurationMs / int64(out.TotalCalls)
		out.AverageSuccessScore = float64(scoreSum) / float64(out.TotalCalls)
		out.SuccessRate = float64(out.SuccessfulCalls) / float64(out.TotalCalls)
	}
	return out
}
