package calls

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by PostgresRepo.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepo stores entries in call_logs. Rows are inserted once and never updated.
type PostgresRepo struct {
	db  DB
	log *slog.Logger
}

func NewPostgresRepo(db DB, log *slog.Logger) *PostgresRepo {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresRepo{db: db, log: log}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS call_logs (
    id            UUID PRIMARY KEY,
    session_id    TEXT NOT NULL UNIQUE,
    is_successful BOOLEAN NOT NULL,
    call_quality  TEXT NOT NULL,
    success_score INT NOT NULL,
    event         JSONB NOT NULL,
    processed     JSONB NOT NULL,
    analysis      JSONB NOT NULL,
    stored_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS call_logs_stored_at_idx ON call_logs (stored_at);
`

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure call_logs schema: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Append(ctx context.Context, e LogEntry) error {
	if e.SessionID == "" || e.ID == "" {
		return ErrInvalid
	}
	event, processed, analysis, err := encodeEntry(e)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
        INSERT INTO call_logs (
            id, session_id, is_successful, call_quality, success_score,
            event, processed, analysis, stored_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (session_id) DO NOTHING
    `,
		e.ID,
		e.SessionID,
		e.Event.IsSuccessful,
		string(e.Processed.CallQuality),
		e.Analysis.SuccessMetrics.SuccessScore,
		event,
		processed,
		analysis,
		e.StoredAt,
	)
	if err != nil {
		return fmt.Errorf("insert call log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.log.Info("call log already exists", "session_id", e.SessionID)
		return ErrDuplicate
	}
	return nil
}

const selectColumns = `id, session_id, event, processed, analysis, stored_at`

func (r *PostgresRepo) Get(ctx context.Context, sessionID string) (LogEntry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM call_logs WHERE session_id = $1`, sessionID)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return LogEntry{}, ErrNotFound
	}
	if err != nil {
		return LogEntry{}, fmt.Errorf("get call log: %w", err)
	}
	return e, nil
}

func (r *PostgresRepo) List(ctx context.Context, from, to time.Time) ([]LogEntry, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+selectColumns+`
        FROM call_logs
        WHERE stored_at >= $1 AND stored_at < $2
        ORDER BY stored_at ASC
    `, from, to)
	if err != nil {
		return nil, fmt.Errorf("list call logs: %w", err)
	}
	defer rows.Close()

	out := make([]LogEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call log: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call logs: %w", err)
	}
	return out, nil
}

func encodeEntry(e LogEntry) (event, processed, analysis []byte, err error) {
	if event, err = json.Marshal(e.Event); err != nil {
		return nil, nil, nil, fmt.Errorf("encode event: %w", err)
	}
	if processed, err = json.Marshal(e.Processed); err != nil {
		return nil, nil, nil, fmt.Errorf("encode processed: %w", err)
	}
	if analysis, err = json.Marshal(e.Analysis); err != nil {
		return nil, nil, nil, fmt.Errorf("encode analysis: %w", err)
	}
	return event, processed, analysis, nil
}

func scanEntry(row pgx.Row) (LogEntry, error) {
	var (
		e                          LogEntry
		event, processed, analysis []byte
	)
	if err := row.Scan(&e.ID, &e.SessionID, &event, &processed, &analysis, &e.StoredAt); err != nil {
		return LogEntry{}, err
	}
	if err := json.Unmarshal(event, &e.Event); err != nil {
		return LogEntry{}, fmt.Errorf("decode event: %w", err)
	}
	if err := json.Unmarshal(processed, &e.Processed); err != nil {
		return LogEntry{}, fmt.Errorf("decode processed: %w", err)
	}
	if err := json.Unmarshal(analysis, &e.Analysis); err != nil {
		return LogEntry{}, fmt.Errorf("decode analysis: %w", err)
	}
	return e, nil
}
