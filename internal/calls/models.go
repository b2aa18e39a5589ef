package calls

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventTypeEndOfCallReport is the only post-call webhook type that is processed.
const EventTypeEndOfCallReport = "end-of-call-report"

// Event is the end-of-call report delivered by the voice platform.
//
// Timestamps stay as strings so a malformed value degrades the derived duration
// instead of rejecting the whole delivery.
type Event struct {
	Type                string         `json:"type"`
	SessionID           string         `json:"sessionId"`
	ToPhoneNumber       string         `json:"toPhoneNumber"`
	FromPhoneNumber     string         `json:"fromPhoneNumber"`
	CallType            string         `json:"callType"`
	DisconnectionReason string         `json:"disconnectionReason"`
	Direction           string         `json:"direction"`
	CreatedAt           string         `json:"createdAt"`
	EndedAt             string         `json:"endedAt"`
	Transcript          []Utterance    `json:"transcript"`
	Summary             *string        `json:"summary"`
	IsSuccessful        bool           `json:"isSuccessful"`
	DynamicVariables    map[string]any `json:"dynamicVariables,omitempty"`
}

// TranscriptLength is the number of (speaker, utterance) pairs.
func (e Event) TranscriptLength() int { return len(e.Transcript) }

// SummaryText returns the summary or "" when the report carried none.
func (e Event) SummaryText() string {
	if e.Summary == nil {
		return ""
	}
	return *e.Summary
}

// CallerPhone is the customer side of the call.
func (e Event) CallerPhone() string {
	if strings.EqualFold(e.Direction, "outbound") && e.ToPhoneNumber != "" {
		return e.ToPhoneNumber
	}
	return e.FromPhoneNumber
}

// TranscriptText joins every utterance, lower-cased, separated by spaces.
func (e Event) TranscriptText() string {
	parts := make([]string, 0, len(e.Transcript))
	for _, u := range e.Transcript {
		parts = append(parts, strings.ToLower(u.Text))
	}
	return strings.Join(parts, " ")
}

// Utterance is one transcript entry. On the wire it is a two element array.
type Utterance struct {
	Speaker string
	Text    string
}

func (u Utterance) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{u.Speaker, u.Text})
}

// UnmarshalJSON never fails. Missing elements stay empty, extra elements are
// dropped and non-string values are stringified, so one odd entry does not
// cost the whole report.
func (u *Utterance) UnmarshalJSON(b []byte) error {
	*u = Utterance{}
	var pair []any
	if err := json.Unmarshal(b, &pair); err != nil {
		var text any
		if json.Unmarshal(b, &text) == nil {
			u.Text = utteranceText(text)
		}
		return nil
	}
	if len(pair) > 0 {
		u.Speaker = utteranceText(pair[0])
	}
	if len(pair) > 1 {
		u.Text = utteranceText(pair[1])
	}
	return nil
}

func utteranceText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64, bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

type Quality string

const (
	QualityFailed    Quality = "failed"
	QualityPoor      Quality = "poor"
	QualityGood      Quality = "good"
	QualityExcellent Quality = "excellent"
)

type Engagement string

const (
	EngagementHigh   Engagement = "high"
	EngagementMedium Engagement = "medium"
	EngagementLow    Engagement = "low"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ProcessedCallData is derived from one Event.
type ProcessedCallData struct {
	DurationMs        int64     `json:"duration"`
	DurationFormatted string    `json:"durationFormatted"`
	TranscriptLength  int       `json:"transcriptLength"`
	HasTranscript     bool      `json:"hasTranscript"`
	CallQuality       Quality   `json:"callQuality"`
	Timestamp         time.Time `json:"timestamp"`

	// DurationMalformed is set when timestamps were missing, unparseable or reversed.
	DurationMalformed bool `json:"durationMalformed,omitempty"`
}

type SuccessMetrics struct {
	IsSuccessful    bool       `json:"isSuccessful"`
	SuccessScore    int        `json:"successScore"`
	CallQuality     Quality    `json:"callQuality"`
	EngagementLevel Engagement `json:"engagementLevel"`
}

type Insights struct {
	KeyTopics        []string  `json:"keyTopics"`
	Sentiment        Sentiment `json:"sentiment"`
	ActionItems      []string  `json:"actionItems"`
	FollowUpRequired bool      `json:"followUpRequired"`
}

type CallAnalysis struct {
	SuccessMetrics  SuccessMetrics `json:"successMetrics"`
	Insights        Insights       `json:"insights"`
	Recommendations []string       `json:"recommendations"`

	// Fallback marks the fixed default analysis used when scoring failed.
	Fallback bool `json:"fallback,omitempty"`
}

// LogEntry is the stored, append-only record of one processed call.
type LogEntry struct {
	ID        string            `json:"id" db:"id"`
	SessionID string            `json:"sessionId" db:"session_id"`
	Event     Event             `json:"event" db:"event"`
	Processed ProcessedCallData `json:"processed" db:"processed"`
	Analysis  CallAnalysis      `json:"analysis" db:"analysis"`
	StoredAt  time.Time         `json:"storedAt" db:"stored_at"`
}
