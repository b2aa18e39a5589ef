package main

import (
	"voice-agent-console/internal/httpapi"
	"voice-agent-console/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc, webhookSecret string) {
	// public
	r.GET("/healthz", h.Health)

	// Voice platform webhooks. Signed when a secret is configured.
	hooks := r.Group("/webhooks")
	hooks.Use(httpapi.RequireSignature(webhookSecret))
	{
		hooks.POST("/pre-call", h.PreCallWebhook)
		hooks.POST("/post-call", h.PostCallWebhook)
		hooks.POST("/tools/doctor", h.DoctorTool)
		hooks.POST("/tools/medicine", h.MedicineTool)
	}

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		v1.GET("/me", h.Me)

		readers := rbac.RequireAnyRole(rbac.RoleOperator, rbac.RoleViewer)
		writers := rbac.RequireAnyRole(rbac.RoleOperator)

		agents := v1.Group("/agents")
		{
			agents.GET("", readers, h.ListAgents)
			agents.POST("", writers, h.CreateAgent)
			agents.GET("/:uid", readers, h.GetAgent)
			agents.PATCH("/:uid", writers, h.UpdateAgent)
			agents.DELETE("/:uid", rbac.RequireAnyRole(rbac.RoleAdmin), h.DeleteAgent)
			agents.GET("/:uid/calls", readers, h.ListAgentCalls)
		}

		v1.GET("/calls/:id", readers, h.GetCall)
		v1.GET("/call-logs/:session_id", readers, h.GetCallLog)

		reports := v1.Group("/reports")
		reports.Use(readers)
		{
			reports.GET("/calls", h.CallsReport)
			reports.GET("/calls.xlsx", h.CallsReportXLSX)
		}

		// ADMIN routes
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			admin.GET("/audit", h.RecentAudit)
		}
	}
}
