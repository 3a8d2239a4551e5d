package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tojiinoue/kanjikun/internal/api"
	"github.com/tojiinoue/kanjikun/internal/api/handler"
	custommw "github.com/tojiinoue/kanjikun/internal/api/middleware"
	"github.com/tojiinoue/kanjikun/internal/application"
	"github.com/tojiinoue/kanjikun/internal/config"
	"github.com/tojiinoue/kanjikun/internal/infrastructure/postgres"
	redisinfra "github.com/tojiinoue/kanjikun/internal/infrastructure/redis"
	"github.com/tojiinoue/kanjikun/internal/notification"
	"github.com/tojiinoue/kanjikun/internal/pkg/logger"
	"github.com/tojiinoue/kanjikun/internal/pkg/metrics"
)

func main() {
	// .env は存在すれば読み込む（本番は環境変数のみ）
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.App.Env))
	defer logger.Sync()

	m := metrics.Init()

	// PostgreSQL
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis（任意。未接続なら分散ロックとキャッシュなしで動作する）
	var (
		lockManager   *redisinfra.LockManager
		snapshotCache application.SnapshotCache
	)
	redisClient := redisinfra.NewClient(&cfg.Redis)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisinfra.Ping(ctx, redisClient)
		cancel()
		if err != nil {
			logger.Warn("Redis接続に失敗（ロックとキャッシュは無効）", zap.Error(err))
		} else {
			lockManager = redisinfra.NewLockManager(redisClient)
			snapshotCache = redisinfra.NewSnapshotCache(redisClient)
		}
	}

	// 通知（APIキー未設定ならログのみ）
	var mailer notification.Mailer = notification.NopMailer{}
	if cfg.Mail.Enabled() {
		mailer = notification.NewResendMailer(cfg.Mail)
	}
	dispatcher := notification.NewDispatcher(mailer, notification.DefaultQueueSize)
	go dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	// サービス
	txManager := postgres.NewTxManager(db)
	eventRepo := postgres.NewEventRepository(db)
	candidateRepo := postgres.NewCandidateRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	roundRepo := postgres.NewRoundRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	authorizer := application.NewAuthorizer()

	eventService := application.NewEventService(
		txManager, eventRepo, candidateRepo, voteRepo, roundRepo, attendanceRepo, paymentRepo,
		snapshotCache, authorizer)
	voteService := application.NewVoteService(
		txManager, eventRepo, candidateRepo, voteRepo, snapshotCache, dispatcher, cfg.App.BaseURL)
	scheduleService := application.NewScheduleService(
		txManager, eventRepo, candidateRepo, voteRepo, roundRepo, attendanceRepo, paymentRepo,
		snapshotCache, authorizer)
	roundService := application.NewRoundService(
		txManager, eventRepo, roundRepo, attendanceRepo, paymentRepo, snapshotCache, authorizer)
	attendanceService := application.NewAttendanceService(
		txManager, eventRepo, roundRepo, attendanceRepo, snapshotCache, authorizer)
	accountingService := application.NewAccountingService(
		txManager, eventRepo, roundRepo, attendanceRepo, paymentRepo, lockManager,
		snapshotCache, authorizer)
	paymentService := application.NewPaymentService(
		txManager, eventRepo, roundRepo, attendanceRepo, paymentRepo, snapshotCache,
		dispatcher, authorizer, cfg.App.BaseURL)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	registerRoutes(e,
		handler.NewHealthHandler(),
		handler.NewEventHandler(eventService),
		handler.NewVoteHandler(voteService),
		handler.NewScheduleHandler(scheduleService),
		handler.NewRoundHandler(roundService),
		handler.NewAttendanceHandler(attendanceService),
		handler.NewAccountingHandler(accountingService),
		handler.NewPaymentHandler(paymentService),
	)

	// サーバー起動
	go func() {
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}

func registerRoutes(
	e *echo.Echo,
	health *handler.HealthHandler,
	eventHandler *handler.EventHandler,
	voteHandler *handler.VoteHandler,
	scheduleHandler *handler.ScheduleHandler,
	roundHandler *handler.RoundHandler,
	attendanceHandler *handler.AttendanceHandler,
	accountingHandler *handler.AccountingHandler,
	paymentHandler *handler.PaymentHandler,
) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.GET("/health", health.Check)

	v1.GET("/my/events", eventHandler.ListMine)

	events := v1.Group("/events")
	events.POST("", eventHandler.Create)
	events.GET("/:id", eventHandler.Get)
	events.DELETE("/:id", eventHandler.Delete)
	events.PUT("/:id/candidates", eventHandler.UpdateCandidates)
	events.POST("/:id/lock", eventHandler.ToggleLock)

	events.POST("/:id/votes", voteHandler.Create)
	events.PATCH("/:id/votes/:voteId", voteHandler.Update)
	events.DELETE("/:id/votes/:voteId", voteHandler.Delete)

	events.POST("/:id/schedule", scheduleHandler.Confirm)
	events.DELETE("/:id/schedule", scheduleHandler.Unconfirm)

	events.POST("/:id/rounds", roundHandler.Add)
	events.DELETE("/:id/rounds/:roundId", roundHandler.Delete)

	events.POST("/:id/attendance", attendanceHandler.Update)

	events.POST("/:id/accounting", accountingHandler.Confirm)
	events.DELETE("/:id/accounting", accountingHandler.Reverse)

	events.POST("/:id/payments/apply", paymentHandler.Apply)
	events.POST("/:id/payments/cancel", paymentHandler.Cancel)
	events.POST("/:id/payments/:paymentId/approve", paymentHandler.Approve)
	events.POST("/:id/payments/:paymentId/reject", paymentHandler.Reject)
	events.POST("/:id/payments/:paymentId/unapprove", paymentHandler.Unapprove)
}
