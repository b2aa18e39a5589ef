package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"voice-agent-console/internal/audit"
	"voice-agent-console/internal/auth"
	"voice-agent-console/internal/calls"
	"voice-agent-console/internal/openmic"
	"voice-agent-console/internal/reporting"
	"voice-agent-console/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	msgFetchAgents  = "Failed to fetch agents. Please check your API key and try again."
	msgCreateAgent  = "Failed to create agent. Please check your API key and try again."
	msgFetchAgent   = "Failed to fetch agent data. Please check your API key and try again."
	msgUpdateAgent  = "Failed to update agent. Please check your API key and try again."
	msgDeleteAgent  = "Failed to delete agent. Please check your API key and try again."
	msgFetchLogs    = "Failed to fetch log data. Please check your API key and try again."
	msgAgentMissing = "Agent not found"

	defaultReportWindow = 7 * 24 * time.Hour
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (h Handlers) ListAgents(c *gin.Context) {
	agents, err := h.Agents.ListAgents(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("list agents failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": msgFetchAgents})
		return
	}
	if agents == nil {
		agents = []openmic.Agent{}
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

func (h Handlers) CreateAgent(c *gin.Context) {
	var in openmic.AgentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if missing := missingAgentFields(in); len(missing) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing required fields: " + strings.Join(missing, ", ")})
		return
	}

	agent, err := h.Agents.CreateAgent(c.Request.Context(), in)
	if err != nil {
		logger.FromGin(c).Error("create agent failed", "name", in.Name, "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": msgCreateAgent})
		return
	}

	h.recordAgentAction(c, audit.EventTypeAgentCreated, agent.UID, "created agent "+agent.Name)
	c.JSON(http.StatusCreated, gin.H{"agent": agent})
}

func missingAgentFields(in openmic.AgentInput) []string {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Prompt) == "" {
		missing = append(missing, "prompt")
	}
	if strings.TrimSpace(in.FirstMessage) == "" {
		missing = append(missing, "first_message")
	}
	if strings.TrimSpace(in.KnowledgeBaseID) == "" {
		missing = append(missing, "knowledge_base_id")
	}
	return missing
}

// GetAgent returns the agent together with its remote call logs.
// A failed log listing leaves the agent view usable with an empty list.
func (h Handlers) GetAgent(c *gin.Context) {
	uid := c.Param("uid")
	log := logger.FromGin(c)

	var (
		agent openmic.Agent
		logs  []openmic.CallLog
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		a, err := h.Agents.GetAgent(ctx, uid)
		if err != nil {
			return err
		}
		agent = a
		return nil
	})
	g.Go(func() error {
		l, err := h.Agents.ListCalls(ctx, uid)
		if err != nil {
			log.Warn("list agent calls failed", "uid", uid, "err", err)
			return nil
		}
		logs = l
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, openmic.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": msgAgentMissing})
			return
		}
		log.Error("get agent failed", "uid", uid, "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": msgFetchAgent})
		return
	}
	if logs == nil {
		logs = []openmic.CallLog{}
	}
	c.JSON(http.StatusOK, gin.H{"agent": agent, "logs": logs})
}

func (h Handlers) UpdateAgent(c *gin.Context) {
	uid := c.Param("uid")
	var in openmic.AgentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if in == (openmic.AgentInput{}) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	agent, err := h.Agents.UpdateAgent(c.Request.Context(), uid, in)
	if err != nil {
		if errors.Is(err, openmic.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": msgAgentMissing})
			return
		}
		logger.FromGin(c).Error("update agent failed", "uid", uid, "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": msgUpdateAgent})
		return
	}

	h.recordAgentAction(c, audit.EventTypeAgentUpdated, uid, "updated agent "+agent.Name)
	c.JSON(http.StatusOK, gin.H{"agent": agent})
}

func (h Handlers) DeleteAgent(c *gin.Context) {
	uid := c.Param("uid")
	if err := h.Agents.DeleteAgent(c.Request.Context(), uid); err != nil {
		if errors.Is(err, openmic.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": msgAgentMissing})
			return
		}
		logger.FromGin(c).Error("delete agent failed", "uid", uid, "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": msgDeleteAgent})
		return
	}

	h.recordAgentAction(c, audit.EventTypeAgentDeleted, uid, "deleted agent")
	c.JSON(http.StatusOK, gin.H{"message": "Agent deleted successfully"})
}

// recordAgentAction is best-effort; the remote change already happened.
func (h Handlers) recordAgentAction(c *gin.Context, t audit.EventType, uid, message string) {
	if h.Audit == nil {
		return
	}
	ctx := c.Request.Context()
	actor, _ := auth.UserID(ctx)
	role, _ := auth.Role(ctx)
	if err := h.Audit.LogAgentAction(ctx, t, actor, role, c.ClientIP(), uid, message); err != nil {
		logger.FromGin(c).Warn("audit append failed", "type", t, "uid", uid, "err", err)
	}
}

func (h Handlers) ListAgentCalls(c *gin.Context) {
	uid := c.Param("uid")
	logs, err := h.Agents.ListCalls(c.Request.Context(), uid)
	if err != nil {
		logger.FromGin(c).Error("list agent calls failed", "uid", uid, "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": msgFetchLogs})
		return
	}
	if logs == nil {
		logs = []openmic.CallLog{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h Handlers) GetCall(c *gin.Context) {
	id := c.Param("id")
	call, err := h.Agents.GetCall(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, openmic.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Call not found"})
			return
		}
		logger.FromGin(c).Error("get call failed", "id", id, "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": msgFetchLogs})
		return
	}
	c.JSON(http.StatusOK, gin.H{"call": call})
}

// GetCallLog returns a stored, analysed post-call entry.
func (h Handlers) GetCallLog(c *gin.Context) {
	sessionID := c.Param("session_id")
	entry, err := h.CallLogs.Get(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, calls.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call log not found"})
			return
		}
		logger.FromGin(c).Error("get call log failed", "session_id", sessionID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h Handlers) CallsReport(c *gin.Context) {
	r, ok := parseTimeRange(c)
	if !ok {
		return
	}
	summary, err := h.Reports.CallsSummary(c.Request.Context(), r)
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid time range"})
			return
		}
		logger.FromGin(c).Error("calls report failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h Handlers) CallsReportXLSX(c *gin.Context) {
	r, ok := parseTimeRange(c)
	if !ok {
		return
	}
	entries, err := h.Reports.Entries(c.Request.Context(), r)
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid time range"})
			return
		}
		logger.FromGin(c).Error("calls export failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	body, err := reporting.ExportXLSX(entries)
	if err != nil {
		logger.FromGin(c).Error("calls export encode failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="calls.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, body)
}

// parseTimeRange reads from/to as RFC3339. Missing values default to the last seven days.
func parseTimeRange(c *gin.Context) (reporting.TimeRange, bool) {
	now := time.Now().UTC()
	r := reporting.TimeRange{From: now.Add(-defaultReportWindow), To: now}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return reporting.TimeRange{}, false
		}
		r.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return reporting.TimeRange{}, false
		}
		r.To = t
	}
	return r, true
}

func (h Handlers) RecentAudit(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}
	events, err := h.Audit.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.FromGin(c).Error("audit list failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
