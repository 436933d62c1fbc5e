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

	"launch-line/internal/auth"
	"launch-line/internal/callflow"
	"launch-line/internal/calllog"
	"launch-line/internal/config"
	"launch-line/internal/notify"
	"launch-line/internal/roster"
	"launch-line/internal/schedule"
	"launch-line/pkg/logger"
	"launch-line/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional env file; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(auth.Config{
		JWTSecret:       cfg.Auth.JWTSecret,
		JWTIssuer:       cfg.Auth.JWTIssuer,
		AdminUser:       cfg.Auth.AdminUser,
		AdminPassword:   cfg.Auth.AdminPassword,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	sink, err := notify.NewSMTPSink(notify.SMTPConfig{
		Host:          cfg.Mail.Host,
		Port:          cfg.Mail.Port,
		Username:      cfg.Mail.Username,
		Password:      cfg.Mail.Password,
		From:          cfg.Mail.From,
		To:            cfg.Mail.To,
		SubjectPrefix: "Launch line:",
	})
	if err != nil {
		log.Error("mail init failed", "err", err)
		os.Exit(1)
	}

	windowStore := schedule.NewPostgresStore(db)
	humans := roster.NewService(roster.NewPostgresRepo(db))
	callLog := calllog.NewService(calllog.NewPostgresRepo(db), log)
	flow := callflow.New(schedule.NewResolver(windowStore), humans, callLog, sink, log)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, deps{
		cfg:         cfg,
		db:          db,
		rdb:         rdb,
		auth:        authManager,
		flow:        flow,
		windowStore: windowStore,
		wizard:      schedule.NewWizard(windowStore),
	})

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
