package postcall

import (
	"strings"
	"testing"
	"time"

	"voice-agent-console/internal/calls"
)

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func strptr(s string) *string { return &s }

func transcriptOf(n int) []calls.Utterance {
	out := make([]calls.Utterance, n)
	for i := range out {
		out[i] = calls.Utterance{Speaker: "agent", Text: "ok"}
	}
	return out
}

func event(successful bool, d time.Duration, utterances int, summary string) calls.Event {
	return calls.Event{
		Type:         calls.EventTypeEndOfCallReport,
		SessionID:    "s",
		CreatedAt:    base.Format(time.RFC3339),
		EndedAt:      base.Add(d).Format(time.RFC3339),
		Transcript:   transcriptOf(utterances),
		Summary:      strptr(summary),
		IsSuccessful: successful,
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int64]string{125000: "2m 5s", 45000: "45s", 0: "0s", 60000: "1m 0s", -5: "0s"}
	for ms, want := range cases {
		if got := FormatDuration(ms); got != want {
			t.Fatalf("FormatDuration(%d) = %q, want %q", ms, got, want)
		}
	}
}

func TestCallDuration_Malformed(t *testing.T) {
	ev := event(true, time.Minute, 1, "")
	ev.EndedAt = "yesterday"
	if ms, ok := CallDuration(ev); ok || ms != 0 {
		t.Fatalf("expected malformed, got %d %v", ms, ok)
	}

	ev = event(true, -time.Minute, 1, "")
	if ms, ok := CallDuration(ev); ok || ms != 0 {
		t.Fatalf("negative span must clamp to 0 and flag, got %d %v", ms, ok)
	}

	p := ProcessCallData(ev, base)
	if !p.DurationMalformed || p.DurationMs != 0 || p.DurationFormatted != "0s" {
		t.Fatalf("unexpected processed data: %+v", p)
	}
}

func TestDetermineCallQuality_Precedence(t *testing.T) {
	cases := []struct {
		name       string
		successful bool
		ms         int64
		n          int
		want       calls.Quality
	}{
		{"unsuccessful long call", false, 900_000, 40, calls.QualityFailed},
		{"empty transcript", true, 900_000, 0, calls.QualityFailed},
		{"under 30s", true, 29_999, 20, calls.QualityPoor},
		{"brief and sparse", true, 119_999, 4, calls.QualityPoor},
		{"brief but chatty", true, 119_999, 5, calls.QualityGood},
		{"long and rich", true, 300_001, 11, calls.QualityExcellent},
		{"exactly five minutes", true, 300_000, 11, calls.QualityGood},
		{"long but sparse", true, 400_000, 10, calls.QualityGood},
	}
	for _, tc := range cases {
		ev := calls.Event{IsSuccessful: tc.successful}
		if got := DetermineCallQuality(ev, tc.ms, tc.n); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestDetermineCallQuality_FailedRegardlessOfDuration(t *testing.T) {
	for _, ms := range []int64{0, 10_000, 200_000, 10_000_000} {
		for _, n := range []int{0, 3, 50} {
			if got := DetermineCallQuality(calls.Event{IsSuccessful: false}, ms, n); got != calls.QualityFailed {
				t.Fatalf("unsuccessful call must be failed, got %s (ms=%d n=%d)", got, ms, n)
			}
		}
		if got := DetermineCallQuality(calls.Event{IsSuccessful: true}, ms, 0); got != calls.QualityFailed {
			t.Fatalf("empty transcript must be failed, got %s", got)
		}
	}
}

func TestCalculateSuccessScore(t *testing.T) {
	long := strings.Repeat("x", 51)
	cases := []struct {
		name string
		ev   calls.Event
		want int
	}{
		{"nothing", event(false, 10*time.Second, 0, ""), 0},
		{"successful only", event(true, 10*time.Second, 0, ""), 5},
		{"over two minutes", event(true, 121*time.Second, 0, ""), 7},
		{"over five minutes", event(true, 301*time.Second, 0, ""), 8},
		{"six utterances", event(false, 0, 6, ""), 1},
		{"eleven utterances", event(false, 0, 11, ""), 2},
		{"long summary", event(false, 0, 0, long), 1},
		{"everything capped", event(true, 10*time.Minute, 20, long), 10},
	}
	for _, tc := range cases {
		if got := CalculateSuccessScore(tc.ev); got != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestCalculateSuccessScore_Monotonic(t *testing.T) {
	durations := []time.Duration{0, 30 * time.Second, 121 * time.Second, 301 * time.Second, time.Hour}
	lengths := []int{0, 5, 6, 10, 11, 30}
	summaries := []string{"", strings.Repeat("a", 50), strings.Repeat("a", 51)}

	for _, s := range summaries {
		for _, n := range lengths {
			prev := -1
			for _, d := range durations {
				lo := CalculateSuccessScore(event(false, d, n, s))
				hi := CalculateSuccessScore(event(true, d, n, s))
				if hi < lo {
					t.Fatalf("score decreased when call became successful")
				}
				if lo < prev {
					t.Fatalf("score decreased with duration")
				}
				if lo < 0 || hi > 10 {
					t.Fatalf("score out of range: %d %d", lo, hi)
				}
				prev = lo
			}
		}
	}
	prev := -1
	for _, n := range lengths {
		got := CalculateSuccessScore(event(true, time.Minute, n, ""))
		if got < prev {
			t.Fatalf("score decreased with transcript length")
		}
		prev = got
	}
}

func TestCalculateEngagementLevel(t *testing.T) {
	cases := []struct {
		d    time.Duration
		n    int
		want calls.Engagement
	}{
		{181 * time.Second, 9, calls.EngagementHigh},
		{181 * time.Second, 8, calls.EngagementMedium},
		{180 * time.Second, 9, calls.EngagementMedium},
		{61 * time.Second, 5, calls.EngagementMedium},
		{60 * time.Second, 5, calls.EngagementLow},
		{10 * time.Minute, 4, calls.EngagementLow},
	}
	for _, tc := range cases {
		if got := CalculateEngagementLevel(event(true, tc.d, tc.n, "")); got != tc.want {
			t.Fatalf("d=%s n=%d: got %s, want %s", tc.d, tc.n, got, tc.want)
		}
	}
}

func TestExtractKeyTopics(t *testing.T) {
	got := ExtractKeyTopics("Caller wanted to BOOK a slot and asked about the Price.", nil)
	if len(got) != 2 || got[0] != "appointment_booking" || got[1] != "product_inquiry" {
		t.Fatalf("unexpected topics: %v", got)
	}
	if got := ExtractKeyTopics("", transcriptOf(3)); len(got) != 0 {
		t.Fatalf("expected no topics, got %v", got)
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	cases := map[string]calls.Sentiment{
		"I am very happy and satisfied": calls.SentimentPositive,
		"This was terrible and awful":   calls.SentimentNegative,
		"":                              calls.SentimentNeutral,
		"good but bad":                  calls.SentimentNeutral,
		"The caller was unhappy":        calls.SentimentNeutral, // "happy" is embedded in "unhappy"
	}
	for in, want := range cases {
		if got := AnalyzeSentiment(in); got != want {
			t.Fatalf("AnalyzeSentiment(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestExtractActionItems(t *testing.T) {
	got := ExtractActionItems("Agreed to Follow Up next week, callback requested, appointment pending")
	want := []string{"schedule_follow_up", "schedule_callback", "book_appointment"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected actions: %v", got)
	}
	if got := ExtractActionItems("no actions"); len(got) != 0 {
		t.Fatalf("expected none, got %v", got)
	}
}

func TestDetermineFollowUpRequired(t *testing.T) {
	ev := event(true, time.Minute, 0, "Routine call.")
	if DetermineFollowUpRequired(ev) {
		t.Fatalf("expected no follow-up")
	}
	ev.Transcript = []calls.Utterance{{Speaker: "customer", Text: "Please CALL BACK tomorrow"}}
	if !DetermineFollowUpRequired(ev) {
		t.Fatalf("expected follow-up from transcript")
	}
	ev = event(true, time.Minute, 0, "Discussed next steps.")
	if !DetermineFollowUpRequired(ev) {
		t.Fatalf("expected follow-up from summary")
	}
}

func TestGenerateRecommendations_AllRulesInOrder(t *testing.T) {
	ev := calls.Event{DisconnectionReason: "user_ended_call", IsSuccessful: false}
	got := GenerateRecommendations(ev, 2, calls.EngagementLow)
	want := []string{RecommendReviewScript, RecommendEngagement, RecommendEarlyHangup, RecommendConnectionIssue}
	if len(got) != len(want) {
		t.Fatalf("expected %d recommendations, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("recommendation %d: got %q, want %q", i, got[i], want[i])
		}
	}

	healthy := event(true, 10*time.Minute, 20, "fine")
	if got := GenerateRecommendations(healthy, 9, calls.EngagementHigh); len(got) != 0 {
		t.Fatalf("expected no recommendations, got %v", got)
	}
}

func TestAnalyzeCallSuccess(t *testing.T) {
	ev := event(true, 6*time.Minute, 12, "The customer was happy to book an appointment and thanked the agent for the help.")
	res := AnalyzeCallSuccess(ev)
	if res.Failed() || res.Value.Fallback {
		t.Fatalf("unexpected fallback: %v", res.Err)
	}
	a := res.Value
	if a.SuccessMetrics.SuccessScore != 10 || a.SuccessMetrics.CallQuality != calls.QualityExcellent {
		t.Fatalf("unexpected metrics: %+v", a.SuccessMetrics)
	}
	if a.SuccessMetrics.EngagementLevel != calls.EngagementHigh || a.Insights.Sentiment != calls.SentimentPositive {
		t.Fatalf("unexpected engagement/sentiment: %+v %+v", a.SuccessMetrics, a.Insights)
	}
	if !a.Insights.FollowUpRequired || len(a.Insights.ActionItems) != 1 {
		t.Fatalf("unexpected insights: %+v", a.Insights)
	}
	if len(a.Recommendations) != 0 {
		t.Fatalf("unexpected recommendations: %v", a.Recommendations)
	}
}

func TestAnalyzeCallSuccess_MissingSummaryFallsBack(t *testing.T) {
	for _, successful := range []bool{true, false} {
		ev := event(successful, 6*time.Minute, 12, "")
		ev.Summary = nil

		res := AnalyzeCallSuccess(ev)
		if res.Err != ErrMissingSummary {
			t.Fatalf("expected ErrMissingSummary, got %v", res.Err)
		}
		a := res.Value
		wantScore := 3
		if successful {
			wantScore = 7
		}
		if !a.Fallback || a.SuccessMetrics.SuccessScore != wantScore {
			t.Fatalf("unexpected fallback: %+v", a)
		}
		if a.SuccessMetrics.CallQuality != calls.QualityPoor || a.SuccessMetrics.EngagementLevel != calls.EngagementLow {
			t.Fatalf("unexpected fallback metrics: %+v", a.SuccessMetrics)
		}
		if a.Insights.Sentiment != calls.SentimentNeutral || a.Insights.FollowUpRequired ||
			len(a.Insights.KeyTopics) != 0 || len(a.Insights.ActionItems) != 0 {
			t.Fatalf("unexpected fallback insights: %+v", a.Insights)
		}
		if len(a.Recommendations) != 1 {
			t.Fatalf("expected one generic recommendation, got %v", a.Recommendations)
		}
	}
}
