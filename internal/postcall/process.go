package postcall

import (
	"fmt"
	"time"

	"voice-agent-console/internal/calls"
)

// Fixed thresholds, in milliseconds and utterance counts.
const (
	shortCallMs   = 30_000
	briefCallMs   = 120_000
	longCallMs    = 300_000
	mediumTalkMs  = 60_000
	engagedCallMs = 180_000

	briefTranscript = 5
	longTranscript  = 10
)

// CallDuration is endedAt minus createdAt in milliseconds.
// ok is false when either timestamp is missing or unparseable, or the span is negative;
// the returned duration is then 0.
func CallDuration(ev calls.Event) (ms int64, ok bool) {
	start, err := time.Parse(time.RFC3339, ev.CreatedAt)
	if err != nil {
		return 0, false
	}
	end, err := time.Parse(time.RFC3339, ev.EndedAt)
	if err != nil {
		return 0, false
	}
	d := end.Sub(start).Milliseconds()
	if d < 0 {
		return 0, false
	}
	return d, true
}

// FormatDuration renders "{m}m {s}s", or "{s}s" under a minute.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	minutes, seconds := total/60, total%60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// DetermineCallQuality applies the rules in order; the first match wins.
func DetermineCallQuality(ev calls.Event, durationMs int64, transcriptLength int) calls.Quality {
	switch {
	case !ev.IsSuccessful || transcriptLength == 0:
		return calls.QualityFailed
	case durationMs < shortCallMs:
		return calls.QualityPoor
	case durationMs < briefCallMs && transcriptLength < briefTranscript:
		return calls.QualityPoor
	case durationMs > longCallMs && transcriptLength > longTranscript:
		return calls.QualityExcellent
	default:
		return calls.QualityGood
	}
}

// ProcessCallData derives duration, transcript stats and quality from one report.
func ProcessCallData(ev calls.Event, now time.Time) calls.ProcessedCallData {
	ms, ok := CallDuration(ev)
	n := ev.TranscriptLength()
	return calls.ProcessedCallData{
		DurationMs:        ms,
		DurationFormatted: FormatDuration(ms),
		TranscriptLength:  n,
		HasTranscript:     n > 0,
		CallQuality:       DetermineCallQuality(ev, ms, n),
		Timestamp:         now.UTC(),
		DurationMalformed: !ok,
	}
}
