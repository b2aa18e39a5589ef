package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voice-agent-console/internal/audit"
	"voice-agent-console/internal/auth"
	"voice-agent-console/internal/calls"

	"github.com/gin-gonic/gin"
)

func dashboardRouter(h Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/v1", func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), "user-1", "operator")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	v1.GET("/agents", h.ListAgents)
	v1.POST("/agents", h.CreateAgent)
	v1.GET("/agents/:uid", h.GetAgent)
	v1.PATCH("/agents/:uid", h.UpdateAgent)
	v1.DELETE("/agents/:uid", h.DeleteAgent)
	v1.GET("/agents/:uid/calls", h.ListAgentCalls)
	v1.GET("/calls/:id", h.GetCall)
	v1.GET("/call-logs/:session_id", h.GetCallLog)
	v1.GET("/reports/calls", h.CallsReport)
	v1.GET("/reports/calls.xlsx", h.CallsReportXLSX)
	v1.GET("/admin/audit", h.RecentAudit)
	return r
}

func do(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListAgents_UpstreamFailureIs502(t *testing.T) {
	env := newTestEnv()
	env.agents.err = errors.New("401 from upstream")
	r := dashboardRouter(env.h)

	w := do(r, http.MethodGet, "/v1/agents", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if out := decode(t, w); out["error"] != msgFetchAgents {
		t.Fatalf("unexpected body: %v", out)
	}
}

func TestCreateAgent_ValidatesAndAudits(t *testing.T) {
	env := newTestEnv()
	r := dashboardRouter(env.h)

	w := do(r, http.MethodPost, "/v1/agents", []byte(`{"name":"Clinic"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg, _ := decode(t, w)["error"].(string); !strings.Contains(msg, "knowledge_base_id") {
		t.Fatalf("expected missing field list, got %q", msg)
	}

	body := []byte(`{"name":"Clinic","prompt":"Be kind","first_message":"Hi","knowledge_base_id":"kb-1"}`)
	w = do(r, http.MethodPost, "/v1/agents", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	events, err := env.h.Audit.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 1 || events[0].Type != audit.EventTypeAgentCreated || events[0].ActorUserID != "user-1" {
		t.Fatalf("expected one agent_created event by user-1, got %+v", events)
	}
}

func TestGetAgent_IncludesLogs(t *testing.T) {
	env := newTestEnv()
	r := dashboardRouter(env.h)

	w := do(r, http.MethodGet, "/v1/agents/bot-med", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	out := decode(t, w)
	logs, _ := out["logs"].([]any)
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %v", out["logs"])
	}
}

func TestGetAgent_LogsFailureTolerated(t *testing.T) {
	env := newTestEnv()
	env.agents.logsErr = errors.New("timeout")
	r := dashboardRouter(env.h)

	w := do(r, http.MethodGet, "/v1/agents/bot-med", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	logs, ok := decode(t, w)["logs"].([]any)
	if !ok || len(logs) != 0 {
		t.Fatalf("expected empty logs list")
	}
}

func TestGetAgent_NotFound(t *testing.T) {
	env := newTestEnv()
	r := dashboardRouter(env.h)

	w := do(r, http.MethodGet, "/v1/agents/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if out := decode(t, w); out["error"] != msgAgentMissing {
		t.Fatalf("unexpected body: %v", out)
	}
}

func TestUpdateAndDeleteAgent(t *testing.T) {
	env := newTestEnv()
	r := dashboardRouter(env.h)

	w := do(r, http.MethodPatch, "/v1/agents/bot-med", []byte(`{}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty patch, got %d", w.Code)
	}

	w = do(r, http.MethodPatch, "/v1/agents/bot-med", []byte(`{"name":"Clinic Line"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if env.agents.agents["bot-med"].Name != "Clinic Line" {
		t.Fatalf("expected rename to reach the client")
	}

	w = do(r, http.MethodDelete, "/v1/agents/bot-med", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(env.agents.deleted) != 1 {
		t.Fatalf("expected delete to reach the client")
	}

	events, _ := env.h.Audit.Recent(context.Background(), 10)
	if len(events) != 2 || events[0].Type != audit.EventTypeAgentDeleted || events[1].Type != audit.EventTypeAgentUpdated {
		t.Fatalf("unexpected audit trail: %+v", events)
	}
}

func TestGetCall_NotFoundAndUpstreamError(t *testing.T) {
	env := newTestEnv()
	r := dashboardRouter(env.h)

	if w := do(r, http.MethodGet, "/v1/calls/call-1", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/v1/calls/nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	env.agents.err = errors.New("boom")
	w := do(r, http.MethodGet, "/v1/calls/call-1", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if out := decode(t, w); out["error"] != msgFetchLogs {
		t.Fatalf("unexpected body: %v", out)
	}
}

func TestGetCallLog(t *testing.T) {
	env := newTestEnv()
	r := dashboardRouter(env.h)

	if err := env.store.Append(context.Background(), calls.LogEntry{ID: "id-1", SessionID: "sess-9", StoredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if w := do(r, http.MethodGet, "/v1/call-logs/sess-9", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/v1/call-logs/other", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCallsReport(t *testing.T) {
	env := newTestEnv()
	r := dashboardRouter(env.h)

	_ = post(webhookRouter(env.h, ""), "/webhooks/post-call", endOfCallReport("sess-r"), nil)

	w := do(r, http.MethodGet, "/v1/reports/calls", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if out := decode(t, w); out["total_calls"] != float64(1) {
		t.Fatalf("expected 1 call in default window, got %v", out["total_calls"])
	}

	if w := do(r, http.MethodGet, "/v1/reports/calls?from=yesterday", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad from, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/v1/reports/calls?from=2025-02-01T00:00:00Z&to=2025-01-01T00:00:00Z", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", w.Code)
	}

	w = do(r, http.MethodGet, "/v1/reports/calls.xlsx", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	// xlsx is a zip container
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected zip payload")
	}
}

func TestRecentAudit_Limit(t *testing.T) {
	env := newTestEnv()
	r := dashboardRouter(env.h)

	if w := do(r, http.MethodGet, "/v1/admin/audit?limit=0", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	w := do(r, http.MethodGet, "/v1/admin/audit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out struct {
		Events []json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.Events == nil {
		t.Fatalf("expected events array, got %q", w.Body.String())
	}
}
