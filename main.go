package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"gymdesk/activity"
	"gymdesk/billing"
	"gymdesk/config"
	"gymdesk/controllers"
	"gymdesk/db"
	"gymdesk/logging"
	"gymdesk/members"
	"gymdesk/metrics"
	"gymdesk/reports"
	"gymdesk/router"
	"gymdesk/staff"
	"gymdesk/tools"
	"gymdesk/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// =====================
// ENV (sobrescrevem o config.json)
// =====================
//
// - API_PORT, API_TOKEN, LOG_PATH, LOG_LEVEL, TIMEZONE
// - DATABASE (sqlite3|postgres), DB_PATH, DB_HOST, DB_PORT, DB_USER, DB_NAME, DB_PASS
// - ULTRAMSG_TOKEN, ULTRAMSG_INSTANCE, ULTRAMSG_BASE_URL
// - BILLING_BATCH_SIZE
// - SUPERUSER_CPF, SUPERUSER_EMAIL, SUPERUSER_PASSWORD
//
// =====================

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON configuration")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("could not read .env: %v", err)
	}

	cfg := config.Get(*configPath)

	logFile := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogPath})
	defer logFile.Close()

	database, err := db.Connect(cfg)
	if err != nil {
		slog.Error("database", "err", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	staffService := &staff.Service{DB: database}
	if _, err := staffService.EnsureSuperuser(ctx, cfg.Superuser.CPF, cfg.Superuser.Email, cfg.Superuser.Password); err != nil {
		slog.Warn("superuser not created", "err", err)
	}

	loc := cfg.Location()
	m := metrics.Default()

	engine := activity.New(database, loc)
	engine.Metrics = m

	dispatcher := &billing.Dispatcher{
		DB: database,
		Gateway: tools.UltraMsgClient{
			Token:    cfg.UltraMsg.Token,
			Instance: cfg.UltraMsg.Instance,
			BaseURL:  cfg.UltraMsg.BaseURL,
			Timeout:  cfg.GatewayTimeout(),
		},
		CountryCode: cfg.UltraMsg.CountryCode,
		Location:    loc,
		Metrics:     m,
	}
	snapshotter := &reports.Snapshotter{DB: database, Location: loc, Metrics: m}

	runner := workers.New(workers.Config{
		ActivityInterval: config.Interval(cfg.Jobs.ActivityIntervalMinutes),
		BillingInterval:  config.Interval(cfg.Jobs.BillingIntervalMinutes),
		ReportInterval:   config.Interval(cfg.Jobs.ReportIntervalMinutes),
		BillingBatchSize: cfg.Jobs.BillingBatchSize,
	}, engine, dispatcher, snapshotter, m)

	if cfg.Jobs.Disabled {
		slog.Info("workers: disabled, jobs run only through POST /api/jobs/:name")
	} else {
		runner.Start(ctx)
	}

	services := &controllers.Services{
		Members: members.New(database, engine),
		Reports: snapshotter,
		Finance: &reports.Finance{DB: database, Location: loc},
		Jobs:    runner,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	router.Initialize(r, cfg, database, services)

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "err", err)
		}
	}()

	slog.Info("gymdesk listening", "port", cfg.ApiPort, "timezone", cfg.Timezone, "database", cfg.Database)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server", "err", err)
		os.Exit(1)
	}
}
