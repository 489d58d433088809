package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"snapfind/internal/app"
	"snapfind/internal/config"
	"snapfind/internal/database"
	apphttp "snapfind/internal/http"
	"snapfind/internal/http/handlers"
	"snapfind/internal/http/metrics"
	httpmw "snapfind/internal/http/middleware"
	"snapfind/internal/http/response"
	"snapfind/internal/observability"
	"snapfind/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()
	db := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	defer db.Close()

	jobRepo := postgres.NewJobRepository(db)
	stageRepo := postgres.NewStageRepository(db)
	templateRepo := postgres.NewTemplateRepository(db)
	enrollmentRepo := postgres.NewEnrollmentRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	activityRepo := postgres.NewActivityRepository(db)
	slaRepo := postgres.NewSLARepository(db)
	interviewRepo := postgres.NewInterviewRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	userRepo := postgres.NewUserRepository(db)

	transitionService := app.NewTransitionService(enrollmentRepo, stageRepo, enrollmentRepo)
	pipelineService := app.NewPipelineService(stageRepo, templateRepo, jobRepo, enrollmentRepo)
	jobService := app.NewJobService(jobRepo, pipelineService)
	autoRejectService := app.NewAutoRejectService(jobRepo, stageRepo, transitionService, logger)
	enrollmentService := app.NewEnrollmentService(enrollmentRepo, historyRepo, activityRepo, stageRepo, jobRepo, autoRejectService)
	bulkMoveService := app.NewBulkMoveService(jobRepo, stageRepo, enrollmentRepo, transitionService)
	slaService := app.NewSLAService(slaRepo, jobRepo, userRepo, notificationRepo, logger, cfg.SLADefaultDays, cfg.SLAAtRiskMarginDays)
	advanceService := app.NewAdvanceService(interviewRepo, enrollmentRepo, stageRepo, jobRepo, settingsRepo, transitionService, notificationRepo, logger)

	var limiter httpmw.Limiter
	if cfg.RedisAddr != "" {
		limiter = httpmw.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		limiter = httpmw.NewRateLimiter()
	}

	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		JobHandler:        handlers.NewJobHandler(jobService, slaService),
		PipelineHandler:   handlers.NewPipelineHandler(pipelineService),
		EnrollmentHandler: handlers.NewEnrollmentHandler(enrollmentService, transitionService, limiter),
		BulkMoveHandler:   handlers.NewBulkMoveHandler(bulkMoveService, limiter),
		SLAHandler:        handlers.NewSLAHandler(slaService),
		InterviewHandler:  handlers.NewInterviewHandler(interviewRepo, advanceService),
		MetricsHandler:    handlers.NewMetricsHandler(collector),
		Identity:          httpmw.NewIdentity(),
		Metrics:           collector,
		RequestTimeout:    cfg.RequestTimeout,
	})
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var sweeper *cron.Cron
	if cfg.SLASweepCron != "" {
		sweeper = cron.New()
		if _, err := sweeper.AddFunc(cfg.SLASweepCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			slaService.Sweep(ctx)
		}); err != nil {
			log.Fatalf("invalid SLA sweep schedule %q: %v", cfg.SLASweepCron, err)
		}
		sweeper.Start()
		logger.Info("SLA sweep scheduled: " + cfg.SLASweepCron)
	}

	go func() {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	if sweeper != nil {
		sweeper.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
