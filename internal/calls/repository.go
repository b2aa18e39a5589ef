package calls

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicate = errors.New("calls: log entry already stored for session")
	ErrNotFound  = errors.New("calls: log entry not found")
	ErrInvalid   = errors.New("calls: invalid log entry")
)

// Repository stores processed calls. It is append-only; entries are keyed by session id.
type Repository interface {
	Append(ctx context.Context, e LogEntry) error
	Get(ctx context.Context, sessionID string) (LogEntry, error)
	// List returns entries with StoredAt in [from, to), oldest first.
	List(ctx context.Context, from, to time.Time) ([]LogEntry, error)
}
