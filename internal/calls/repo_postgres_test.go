package calls

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func sampleEntry() LogEntry {
	summary := "Customer booked an appointment."
	return LogEntry{
		ID:        "0b9f4b8e-8f0e-4c55-9a43-1d2b1d1f0c11",
		SessionID: "sess-1",
		Event: Event{
			Type:         EventTypeEndOfCallReport,
			SessionID:    "sess-1",
			Transcript:   []Utterance{{Speaker: "agent", Text: "hi"}},
			Summary:      &summary,
			IsSuccessful: true,
		},
		Processed: ProcessedCallData{DurationMs: 1000, CallQuality: QualityPoor},
		Analysis: CallAnalysis{
			SuccessMetrics: SuccessMetrics{IsSuccessful: true, SuccessScore: 5, CallQuality: QualityPoor},
		},
		StoredAt: time.Unix(1700000000, 0).UTC(),
	}
}

func TestPostgresRepo_Append(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		entry     LogEntry
		setupMock func(pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name:  "inserted",
			entry: sampleEntry(),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO call_logs`).
					WithArgs(
						"0b9f4b8e-8f0e-4c55-9a43-1d2b1d1f0c11",
						"sess-1",
						true,
						"poor",
						5,
						pgxmock.AnyArg(),
						pgxmock.AnyArg(),
						pgxmock.AnyArg(),
						pgxmock.AnyArg(),
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name:  "duplicate session",
			entry: sampleEntry(),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO call_logs`).
					WithArgs(
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 0))
			},
			wantErr: ErrDuplicate,
		},
		{
			name:    "missing session id",
			entry:   LogEntry{ID: "x"},
			wantErr: ErrInvalid,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create pgx mock: %v", err)
			}
			defer mock.Close()

			if tc.setupMock != nil {
				tc.setupMock(mock)
			}

			err = NewPostgresRepo(mock, nil).Append(context.Background(), tc.entry)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestPostgresRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	e := sampleEntry()
	event, _ := json.Marshal(e.Event)
	processed, _ := json.Marshal(e.Processed)
	analysis, _ := json.Marshal(e.Analysis)

	mock.ExpectQuery(`SELECT id, session_id, event, processed, analysis, stored_at FROM call_logs WHERE session_id = \$1`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "event", "processed", "analysis", "stored_at"}).
			AddRow(e.ID, e.SessionID, event, processed, analysis, e.StoredAt))

	got, err := NewPostgresRepo(mock, nil).Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Event.SummaryText() != "Customer booked an appointment." || got.Analysis.SuccessMetrics.SuccessScore != 5 {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if len(got.Event.Transcript) != 1 || got.Event.Transcript[0].Text != "hi" {
		t.Fatalf("unexpected transcript: %+v", got.Event.Transcript)
	}
}

func TestPostgresRepo_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM call_logs WHERE session_id`).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "event", "processed", "analysis", "stored_at"}))

	if _, err := NewPostgresRepo(mock, nil).Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	e := sampleEntry()
	event, _ := json.Marshal(e.Event)
	processed, _ := json.Marshal(e.Processed)
	analysis, _ := json.Marshal(e.Analysis)
	from := e.StoredAt.Add(-time.Hour)
	to := e.StoredAt.Add(time.Hour)

	mock.ExpectQuery(`FROM call_logs\s+WHERE stored_at >= \$1 AND stored_at < \$2`).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "event", "processed", "analysis", "stored_at"}).
			AddRow(e.ID, e.SessionID, event, processed, analysis, e.StoredAt))

	out, err := NewPostgresRepo(mock, nil).List(context.Background(), from, to)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 || out[0].SessionID != "sess-1" {
		t.Fatalf("unexpected entries: %+v", out)
	}
}

func TestPostgresRepo_EnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS call_logs`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	if err := NewPostgresRepo(mock, nil).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
}
