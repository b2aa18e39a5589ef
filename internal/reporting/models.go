package reporting

import "time"

// TimeRange is half-open: From <= t < To.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r TimeRange) Valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && r.To.After(r.From)
}

// CallsSummary aggregates stored post-call analyses.
type CallsSummary struct {
	Range TimeRange `json:"range"`

	TotalCalls      int `json:"total_calls"`
	SuccessfulCalls int `json:"successful_calls"`
	FallbackCalls   int `json:"fallback_calls"`
	FollowUpCalls   int `json:"follow_up_calls"`

	ByQuality    map[string]int `json:"by_quality"`
	BySentiment  map[string]int `json:"by_sentiment"`
	ByEngagement map[string]int `json:"by_engagement"`
	ByTopic      map[string]int `json:"by_topic"`

	TotalDurationMs        int64   `json:"total_duration_ms"`
	AverageDurationMs      int64   `json:"average_duration_ms"`
	AverageSuccessScore    float64 `json:"average_success_score"`
	SuccessRate            float64 `json:"success_rate"`
	MalformedDurationCalls int     `json:"malformed_duration_calls"`
}
