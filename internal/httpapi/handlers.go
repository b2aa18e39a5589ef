package httpapi

import (
	"context"
	"net/http"

	"voice-agent-console/internal/audit"
	"voice-agent-console/internal/auth"
	"voice-agent-console/internal/calls"
	"voice-agent-console/internal/fixtures"
	"voice-agent-console/internal/openmic"
	"voice-agent-console/internal/postcall"
	"voice-agent-console/internal/precall"
	"voice-agent-console/internal/reporting"

	"github.com/gin-gonic/gin"
)

// AgentAPI is the remote agent/log client used by the dashboard.
type AgentAPI interface {
	CreateAgent(ctx context.Context, in openmic.AgentInput) (openmic.Agent, error)
	GetAgent(ctx context.Context, uid string) (openmic.Agent, error)
	ListAgents(ctx context.Context) ([]openmic.Agent, error)
	UpdateAgent(ctx context.Context, uid string, in openmic.AgentInput) (openmic.Agent, error)
	DeleteAgent(ctx context.Context, uid string) error
	ListCalls(ctx context.Context, botID string) ([]openmic.CallLog, error)
	GetCall(ctx context.Context, id string) (openmic.CallLog, error)
}

// PostCallProcessor runs the end-of-call pipeline.
type PostCallProcessor interface {
	Handle(ctx context.Context, ev calls.Event) (postcall.Result, error)
}

// Deduper claims a session id on first delivery. Release drops a claim whose
// report could not be processed.
type Deduper interface {
	FirstDelivery(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string) error
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth     *auth.Manager
	Agents   AgentAPI
	PreCall  *precall.Resolver
	PostCall PostCallProcessor
	Dedupe   Deduper
	Fixtures fixtures.Tables
	CallLogs calls.Repository
	Reports  *reporting.Service
	Audit    *audit.Service
}

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Me echoes the caller identity taken from the access token.
func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "role": role})
}
