package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-agent-console/internal/audit"
	"voice-agent-console/internal/auth"
	"voice-agent-console/internal/calls"
	"voice-agent-console/internal/config"
	"voice-agent-console/internal/customers"
	"voice-agent-console/internal/fixtures"
	"voice-agent-console/internal/httpapi"
	"voice-agent-console/internal/openmic"
	"voice-agent-console/internal/postcall"
	"voice-agent-console/internal/precall"
	"voice-agent-console/internal/reporting"
	"voice-agent-console/pkg/logger"
	"voice-agent-console/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	tables := fixtures.Default()
	if cfg.App.FixturesPath != "" {
		tables, err = fixtures.Load(cfg.App.FixturesPath)
		if err != nil {
			log.Error("fixtures load failed", "path", cfg.App.FixturesPath, "err", err)
			os.Exit(1)
		}
	}
	if err := customers.ValidateTables(tables); err != nil {
		log.Error("fixtures invalid", "path", cfg.App.FixturesPath, "err", err)
		os.Exit(1)
	}
	customerSvc := customers.NewService(customers.NewRepository(tables), customers.DefaultClassifier())

	agents := openmic.NewClientWithBaseURL(cfg.OpenMic.APIKey, cfg.OpenMic.BaseURL, cfg.OpenMic.Timeout)

	var store calls.Repository = calls.NewMemoryRepo()
	if cfg.UsePostgres() {
		db, err := utils.OpenPostgres(rootCtx, cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		pg := calls.NewPostgresRepo(db, log)
		if err := pg.EnsureSchema(rootCtx); err != nil {
			log.Error("call_logs schema init failed", "err", err)
			os.Exit(1)
		}
		store = pg
	} else {
		log.Info("DB_HOST not set, call logs kept in memory")
	}

	h := httpapi.Handlers{
		Auth:     authManager,
		Agents:   agents,
		PreCall:  precall.NewResolver(agents, customerSvc),
		PostCall: postcall.NewPipeline(customerSvc, store),
		Fixtures: tables,
		CallLogs: store,
		Reports:  reporting.NewService(store),
		Audit:    audit.NewService(audit.NewMemoryRepo()),
	}

	if cfg.UseRedis() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr(), Password: cfg.Redis.Password})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		h.Dedupe = calls.NewRedisDeduper(rdb, cfg.Webhooks.DedupeTTL)
	}

	if cfg.Webhooks.Secret == "" {
		log.Warn("WEBHOOK_SECRET not set, webhook signatures are not verified")
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	if len(cfg.App.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.App.CORSAllowedOrigins)))
	}

	registerRoutes(r, h, auth.RequireAccessToken(authManager), cfg.Webhooks.Secret)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

func corsConfig(origins []string) cors.Config {
	cc := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	cc.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	cc.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	return cc
}
