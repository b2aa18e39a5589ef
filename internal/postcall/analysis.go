package postcall

import (
	"errors"
	"fmt"
	"strings"

	"voice-agent-console/internal/calls"
)

var ErrMissingSummary = errors.New("postcall: report has no summary")

const maxScore = 10

// CalculateSuccessScore is additive and capped at 10.
func CalculateSuccessScore(ev calls.Event) int {
	ms, _ := CallDuration(ev)
	n := ev.TranscriptLength()

	score := 0
	if ev.IsSuccessful {
		score += 5
	}
	if ms > briefCallMs {
		score += 2
	}
	if ms > longCallMs {
		score++
	}
	if n > briefTranscript {
		score++
	}
	if n > longTranscript {
		score++
	}
	if len(ev.SummaryText()) > 50 {
		score++
	}
	if score > maxScore {
		score = maxScore
	}
	return score
}

// CalculateEngagementLevel requires both conditions of a tier.
func CalculateEngagementLevel(ev calls.Event) calls.Engagement {
	ms, _ := CallDuration(ev)
	n := ev.TranscriptLength()
	switch {
	case n > 8 && ms > engagedCallMs:
		return calls.EngagementHigh
	case n > 4 && ms > mediumTalkMs:
		return calls.EngagementMedium
	default:
		return calls.EngagementLow
	}
}

type keywordGroup struct {
	tag      string
	keywords []string
}

var topicGroups = []keywordGroup{
	{tag: "appointment_booking", keywords: []string{"appointment", "book", "schedule"}},
	{tag: "call_transfer", keywords: []string{"transfer", "connect", "forward"}},
	{tag: "customer_support", keywords: []string{"help", "support", "issue", "problem"}},
	{tag: "product_inquiry", keywords: []string{"product", "service", "price", "information"}},
}

// ExtractKeyTopics tags the summary with every matching topic group.
// The transcript is accepted for future rules and is not inspected yet.
func ExtractKeyTopics(summary string, _ []calls.Utterance) []string {
	s := strings.ToLower(summary)
	out := make([]string, 0)
	for _, g := range topicGroups {
		if containsAny(s, g.keywords) {
			out = append(out, g.tag)
		}
	}
	return out
}

var (
	positiveWords = []string{"good", "great", "excellent", "happy", "satisfied", "thank", "helpful", "pleased", "wonderful"}
	negativeWords = []string{"bad", "terrible", "awful", "angry", "frustrated", "disappointed", "unhappy", "poor", "upset"}
)

// AnalyzeSentiment counts list words found as substrings of the summary.
// The strictly larger count wins; ties are neutral.
func AnalyzeSentiment(summary string) calls.Sentiment {
	s := strings.ToLower(summary)
	pos, neg := countAny(s, positiveWords), countAny(s, negativeWords)
	switch {
	case pos > neg:
		return calls.SentimentPositive
	case neg > pos:
		return calls.SentimentNegative
	default:
		return calls.SentimentNeutral
	}
}

var actionRules = []struct {
	phrase string
	action string
}{
	{phrase: "follow up", action: "schedule_follow_up"},
	{phrase: "callback", action: "schedule_callback"},
	{phrase: "appointment", action: "book_appointment"},
}

func ExtractActionItems(summary string) []string {
	s := strings.ToLower(summary)
	out := make([]string, 0)
	for _, r := range actionRules {
		if strings.Contains(s, r.phrase) {
			out = append(out, r.action)
		}
	}
	return out
}

var followUpPhrases = []string{
	"follow up", "callback", "appointment", "schedule", "book",
	"reserve", "contact again", "call back", "next steps",
}

func DetermineFollowUpRequired(ev calls.Event) bool {
	return containsAny(strings.ToLower(ev.SummaryText()), followUpPhrases) ||
		containsAny(ev.TranscriptText(), followUpPhrases)
}

const (
	RecommendReviewScript    = "Review the agent prompt and call script; this call scored below target."
	RecommendEngagement      = "Use open questions and shorter turns to keep the caller engaged."
	RecommendEarlyHangup     = "The caller hung up before the goal was met; check the greeting and first message."
	RecommendConnectionIssue = "No transcript was captured; check the audio connection and call setup."
	RecommendManualReview    = "Automatic analysis was unavailable; review this call manually."
)

// GenerateRecommendations checks each rule in order and keeps every match.
func GenerateRecommendations(ev calls.Event, successScore int, engagement calls.Engagement) []string {
	out := make([]string, 0)
	if successScore < 5 {
		out = append(out, RecommendReviewScript)
	}
	if engagement == calls.EngagementLow {
		out = append(out, RecommendEngagement)
	}
	if ev.DisconnectionReason == "user_ended_call" && !ev.IsSuccessful {
		out = append(out, RecommendEarlyHangup)
	}
	if ev.TranscriptLength() == 0 {
		out = append(out, RecommendConnectionIssue)
	}
	return out
}

// StageResult carries a stage value together with the failure that produced it, if any.
// When Err is set, Value holds the stage's fallback.
type StageResult[T any] struct {
	Value T
	Err   error
}

func (r StageResult[T]) Failed() bool { return r.Err != nil }

// FallbackAnalysis is used whenever scoring cannot run.
func FallbackAnalysis(ev calls.Event) calls.CallAnalysis {
	score := 3
	if ev.IsSuccessful {
		score = 7
	}
	return calls.CallAnalysis{
		SuccessMetrics: calls.SuccessMetrics{
			IsSuccessful:    ev.IsSuccessful,
			SuccessScore:    score,
			CallQuality:     calls.QualityPoor,
			EngagementLevel: calls.EngagementLow,
		},
		Insights: calls.Insights{
			KeyTopics:        []string{},
			Sentiment:        calls.SentimentNeutral,
			ActionItems:      []string{},
			FollowUpRequired: false,
		},
		Recommendations: []string{RecommendManualReview},
		Fallback:        true,
	}
}

// AnalyzeCallSuccess never panics. A missing summary or any internal fault yields
// the fallback analysis with Err describing the cause.
func AnalyzeCallSuccess(ev calls.Event) (res StageResult[calls.CallAnalysis]) {
	defer func() {
		if r := recover(); r != nil {
			res = StageResult[calls.CallAnalysis]{
				Value: FallbackAnalysis(ev),
				Err:   fmt.Errorf("postcall: analysis panicked: %v", r),
			}
		}
	}()

	if ev.Summary == nil {
		return StageResult[calls.CallAnalysis]{Value: FallbackAnalysis(ev), Err: ErrMissingSummary}
	}
	summary := *ev.Summary

	ms, _ := CallDuration(ev)
	score := CalculateSuccessScore(ev)
	engagement := CalculateEngagementLevel(ev)

	return StageResult[calls.CallAnalysis]{Value: calls.CallAnalysis{
		SuccessMetrics: calls.SuccessMetrics{
			IsSuccessful:    ev.IsSuccessful,
			SuccessScore:    score,
			CallQuality:     DetermineCallQuality(ev, ms, ev.TranscriptLength()),
			EngagementLevel: engagement,
		},
		Insights: calls.Insights{
			KeyTopics:        ExtractKeyTopics(summary, ev.Transcript),
			Sentiment:        AnalyzeSentiment(summary),
			ActionItems:      ExtractActionItems(summary),
			FollowUpRequired: DetermineFollowUpRequired(ev),
		},
		Recommendations: GenerateRecommendations(ev, score, engagement),
	}}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func countAny(s string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(s, w) {
			n++
		}
	}
	return n
}
