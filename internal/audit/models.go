package audit

import "time"

// Event is an immutable, append-only audit log record for operator actions
// taken through the dashboard API.
//
// Invariants:
// - Events are never updated or deleted.
// - actor and ip capture are best-effort; do not block agent changes on audit failures.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`
	IPAddress   string `json:"ip_address,omitempty" db:"ip_address"`

	// AgentUID is the remote bot the action targeted.
	AgentUID string `json:"agent_uid,omitempty" db:"agent_uid"`

	Message  string `json:"message,omitempty" db:"message"`
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeAgentCreated EventType = "agent_created"
	EventTypeAgentUpdated EventType = "agent_updated"
	EventTypeAgentDeleted EventType = "agent_deleted"
)
