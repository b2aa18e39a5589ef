package postcall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"voice-agent-console/internal/calls"
	"voice-agent-console/internal/customers"
	"voice-agent-console/internal/fixtures"
	"voice-agent-console/pkg/logger"

	"github.com/google/uuid"
)

// ErrMissingSessionID rejects a report no call log could be stored under.
var ErrMissingSessionID = errors.New("postcall: report has no session id")

// HistoryRecorder is the customer-side dependency of the pipeline.
type HistoryRecorder interface {
	Classify(identifier, name string) customers.Domain
	RecordCallOutcome(phone string, domain customers.Domain, o customers.CallOutcome) (fixtures.CustomerRecord, error)
}

// Result is everything the pipeline derived for one report.
type Result struct {
	Processed calls.ProcessedCallData
	Analysis  StageResult[calls.CallAnalysis]
	Entry     calls.LogEntry

	// HistoryUpdated is false when no customer record matched the caller.
	HistoryUpdated bool
	// Duplicate is set when the store already held an entry for the session.
	Duplicate bool
}

// Pipeline runs process, update-history, analyze and store in that order.
type Pipeline struct {
	history HistoryRecorder
	store   calls.Repository

	Now   func() time.Time
	NewID func() string
}

func NewPipeline(history HistoryRecorder, store calls.Repository) *Pipeline {
	return &Pipeline{
		history: history,
		store:   store,
		Now:     time.Now,
		NewID:   uuid.NewString,
	}
}

// Handle processes one end-of-call report. A report without a session id is
// rejected before anything changes. Otherwise only a failed store write is
// returned as an error; history misses and analysis faults are logged and absorbed.
func (p *Pipeline) Handle(ctx context.Context, ev calls.Event) (Result, error) {
	if strings.TrimSpace(ev.SessionID) == "" {
		return Result{}, ErrMissingSessionID
	}
	log := logger.From(ctx).With("session_id", ev.SessionID)
	now := p.Now().UTC()

	var res Result
	res.Processed = ProcessCallData(ev, now)
	if res.Processed.DurationMalformed {
		log.Warn("call timestamps malformed, duration set to 0",
			"created_at", ev.CreatedAt,
			"ended_at", ev.EndedAt,
		)
	}

	res.HistoryUpdated = p.updateHistory(log, ev, res.Processed)

	res.Analysis = AnalyzeCallSuccess(ev)
	if res.Analysis.Failed() {
		log.Error("call analysis fell back to defaults", "err", res.Analysis.Err)
	}

	res.Entry = calls.LogEntry{
		ID:        p.NewID(),
		SessionID: ev.SessionID,
		Event:     ev,
		Processed: res.Processed,
		Analysis:  res.Analysis.Value,
		StoredAt:  now,
	}
	if err := p.store.Append(ctx, res.Entry); err != nil {
		if errors.Is(err, calls.ErrDuplicate) {
			log.Info("call log already stored")
			res.Duplicate = true
			return res, nil
		}
		return res, fmt.Errorf("store call log: %w", err)
	}

	log.Info("call log stored",
		"duration_ms", res.Processed.DurationMs,
		"transcript_length", res.Processed.TranscriptLength,
		"quality", res.Processed.CallQuality,
		"success_score", res.Analysis.Value.SuccessMetrics.SuccessScore,
		"is_successful", ev.IsSuccessful,
	)
	return res, nil
}

func (p *Pipeline) updateHistory(log *slog.Logger, ev calls.Event, processed calls.ProcessedCallData) bool {
	if p.history == nil {
		return false
	}
	phone := ev.CallerPhone()
	domain := p.history.Classify(ev.SessionID, "")

	var endedAt time.Time
	if t, err := time.Parse(time.RFC3339, ev.EndedAt); err == nil {
		endedAt = t
	}

	_, err := p.history.RecordCallOutcome(phone, domain, customers.CallOutcome{
		EndedAt:    endedAt,
		DurationMs: processed.DurationMs,
		Successful: ev.IsSuccessful,
		Reason:     ev.DisconnectionReason,
		Summary:    ev.SummaryText(),
	})
	switch {
	case err == nil:
		return true
	case errors.Is(err, customers.ErrNotFound):
		log.Info("no customer record for caller", "phone", logger.MaskPhone(phone), "domain", domain)
	default:
		log.Warn("update call history failed", "phone", logger.MaskPhone(phone), "domain", domain, "err", err)
	}
	return false
}
