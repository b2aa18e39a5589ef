package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"voice-agent-console/internal/calls"
	"voice-agent-console/internal/precall"
	"voice-agent-console/pkg/logger"

	"github.com/gin-gonic/gin"
)

func readBody(c *gin.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
}

// PreCallWebhook returns the caller's dynamic variables.
// A missing record fails the delivery unless it is the platform's final attempt.
func (h Handlers) PreCallWebhook(c *gin.Context) {
	log := logger.FromGin(c)

	raw, err := readBody(c)
	if err != nil {
		log.Error("pre-call body unreadable", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	req, err := precall.ParseRequest(raw)
	if err != nil {
		log.Error("pre-call body malformed", "attempt", int(req.Call.Attempt), "err", err)
		if res := precall.ParseFailure(req, err); res.Err == nil {
			c.JSON(http.StatusOK, gin.H{"call": gin.H{"dynamic_variables": res.Variables}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	log.Info("pre-call webhook received",
		"bot_id", req.Call.BotID,
		"direction", req.Call.Direction,
		"from_number", logger.MaskPhone(req.Call.FromNumber),
		"to_number", logger.MaskPhone(req.Call.ToNumber),
		"attempt", int(req.Call.Attempt),
	)

	res := h.PreCall.Resolve(c.Request.Context(), req)
	if res.Err != nil {
		if errors.Is(res.Err, precall.ErrCustomerNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Customer data not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if res.Degraded {
		log.Info("final attempt, returning empty variables", "bot_id", req.Call.BotID)
	}

	c.JSON(http.StatusOK, gin.H{
		"call": gin.H{"dynamic_variables": res.Variables},
	})
}

// PostCallWebhook ingests an end-of-call report. Apart from a wrong type it always answers 200
// so the platform does not redeliver reports whose processing cannot succeed.
func (h Handlers) PostCallWebhook(c *gin.Context) {
	log := logger.FromGin(c)

	raw, err := readBody(c)
	if err != nil {
		log.Error("post-call body unreadable", "err", err)
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		log.Error("post-call body malformed", "err", err)
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Internal server error"})
		return
	}
	if head.Type != calls.EventTypeEndOfCallReport {
		log.Error("invalid post-call webhook type", "type", head.Type)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook type"})
		return
	}

	var ev calls.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Error("post-call body malformed", "err", err)
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	log.Info("post-call webhook received",
		"session_id", ev.SessionID,
		"from_number", logger.MaskPhone(ev.FromPhoneNumber),
		"to_number", logger.MaskPhone(ev.ToPhoneNumber),
		"direction", ev.Direction,
		"is_successful", ev.IsSuccessful,
		"disconnection_reason", ev.DisconnectionReason,
	)

	ctx := c.Request.Context()
	claimed := false
	if h.Dedupe != nil && ev.SessionID != "" {
		first, err := h.Dedupe.FirstDelivery(ctx, ev.SessionID)
		switch {
		case err != nil:
			log.Warn("dedupe unavailable, processing anyway", "session_id", ev.SessionID, "err", err)
		case !first:
			log.Info("duplicate post-call delivery ignored", "session_id", ev.SessionID)
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Duplicate delivery ignored", "sessionId": ev.SessionID})
			return
		default:
			claimed = true
		}
	}

	if _, err := h.PostCall.Handle(ctx, ev); err != nil {
		log.Error("failed to process post-call webhook", "session_id", ev.SessionID, "err", err)
		// A redelivery must get another chance to store the report.
		if claimed {
			if rerr := h.Dedupe.Release(ctx, ev.SessionID); rerr != nil {
				log.Warn("dedupe release failed", "session_id", ev.SessionID, "err", rerr)
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Internal server error", "sessionId": ev.SessionID})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Call data processed successfully",
		"sessionId": ev.SessionID,
	})
}

type doctorLookupRequest struct {
	DoctorName string `json:"doctorName"`
}

// DoctorTool returns the doctor record or JSON null.
func (h Handlers) DoctorTool(c *gin.Context) {
	var req doctorLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	doc, ok := h.Fixtures.Doctor(req.DoctorName)
	logger.FromGin(c).Info("doctor lookup", "doctor_name", req.DoctorName, "found", ok)
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, doc)
}

type medicineLookupRequest struct {
	Illness string `json:"illness"`
}

// MedicineTool returns the medicine list for an illness or JSON null.
func (h Handlers) MedicineTool(c *gin.Context) {
	var req medicineLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	meds := h.Fixtures.Medicine(req.Illness)
	logger.FromGin(c).Info("medicine lookup", "illness", req.Illness, "found", meds != nil)
	if meds == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, meds)
}
