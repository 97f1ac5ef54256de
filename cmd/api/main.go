package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/conectamentor/mentoria-api/config"
	"github.com/conectamentor/mentoria-api/internal/handlers"
	"github.com/conectamentor/mentoria-api/internal/jobs"
	"github.com/conectamentor/mentoria-api/internal/middleware"
	"github.com/conectamentor/mentoria-api/internal/repository"
	"github.com/conectamentor/mentoria-api/internal/services"
	"github.com/conectamentor/mentoria-api/pkg/db"
	"github.com/conectamentor/mentoria-api/pkg/httpclient"
	"github.com/conectamentor/mentoria-api/pkg/jwt"
	"github.com/conectamentor/mentoria-api/pkg/kvcache"
	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/mail"
	"github.com/conectamentor/mentoria-api/pkg/mailqueue"
	"github.com/conectamentor/mentoria-api/pkg/metrics"
	"github.com/conectamentor/mentoria-api/pkg/profiling"
	"github.com/conectamentor/mentoria-api/pkg/recaptcha"
	"github.com/conectamentor/mentoria-api/pkg/storage"
	"github.com/conectamentor/mentoria-api/pkg/tracing"
	"github.com/conectamentor/mentoria-api/pkg/zoom"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting ConectaMentor API",
		zap.String("environment", cfg.Server.AppEnv))

	tracerShutdown, err := tracing.Init(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	profilerStop, err := profiling.Init(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	metrics.Init()
	metrics.RecordInfrastructureMetrics()

	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	httpClient := httpclient.NewStandardClient()
	store := kvcache.NewMemoryStore(5 * time.Minute)

	zoomClient, err := zoom.NewClient(zoom.Config{
		ClientID:        cfg.Zoom.ClientID,
		ClientSecret:    cfg.Zoom.ClientSecret,
		AccountID:       cfg.Zoom.AccountID,
		APIBaseURL:      cfg.Zoom.APIBaseURL,
		DefaultTimezone: cfg.Zoom.DefaultTimezone,
	}, httpClient, store)
	if err != nil {
		logger.Fatal("Failed to initialize meeting provider client", zap.Error(err))
	}

	var documentStore *storage.DocumentStore
	if cfg.DocumentStorage.AccessKeyID != "" && cfg.DocumentStorage.SecretAccessKey != "" {
		documentStore, err = storage.NewDocumentStore(
			cfg.DocumentStorage.AccessKeyID,
			cfg.DocumentStorage.SecretAccessKey,
			cfg.DocumentStorage.BucketName,
			cfg.DocumentStorage.Endpoint,
			cfg.DocumentStorage.Region,
		)
		if err != nil {
			logger.Fatal("Failed to initialize document storage", zap.Error(err))
		}
	}

	// Mail delivery runs on its own worker lane; enqueue failures never
	// propagate to the request path
	sender := mail.NewBrevoSender(mail.Config{
		APIKey:      cfg.Mail.APIKey,
		APIBaseURL:  cfg.Mail.APIBaseURL,
		SenderEmail: cfg.Mail.SenderEmail,
		SenderName:  cfg.Mail.SenderName,
	}, httpClient)
	queue := mailqueue.New(cfg.Mail.QueueSize)

	// Repositories
	requestRepo := repository.NewRequestRepository(pool)
	mentorshipRepo := repository.NewMentorshipRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)

	// Services
	dispatcher := services.NewMailDispatch(mentorshipRepo, requestRepo, queue, sender, cfg.Server.BaseURL)
	queue.Start(cfg.Mail.Workers, dispatcher.Deliver)
	defer queue.Stop()
	guard := services.NewNotificationGuard(store, dispatcher, cfg.DedupTTL())
	captcha := recaptcha.NewVerifier(cfg.ReCAPTCHA.SecretKey, httpClient)
	tokenManager := jwt.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.JWTIssuer, cfg.Session.SessionTTLHours)

	requestService := services.NewRequestService(requestRepo, participantRepo, captcha, dispatcher, cfg)
	confirmationService := services.NewConfirmationService(requestRepo, mentorshipRepo, zoomClient, guard)
	mentorshipService := services.NewMentorshipService(mentorshipRepo, zoomClient)
	authService := services.NewAuthService(participantRepo, store, queue, tokenManager, cfg)
	var docStorage services.DocumentStorage
	if documentStore != nil {
		docStorage = documentStore
	} else {
		logger.Warn("Document storage credentials not set, uploads disabled")
	}
	documentService := services.NewDocumentService(documentRepo, docStorage)

	// Handlers
	healthHandler := handlers.NewHealthHandler(func(timeout time.Duration) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return pool.Ping(ctx)
	})
	requestHandler := handlers.NewRequestHandler(requestService)
	mentorRequestsHandler := handlers.NewMentorRequestsHandler(requestService, confirmationService)
	mentorshipHandler := handlers.NewMentorshipHandler(mentorshipService)
	documentsHandler := handlers.NewDocumentsHandler(documentService)
	authHandler := handlers.NewAuthHandler(authService, cfg.Session.CookieDomain, cfg.Session.CookieSecure)

	// Session reminder sweep
	runner := cron.New()
	if cfg.Reminders.Enabled {
		reminderJob := jobs.NewReminderJob(mentorshipRepo, dispatcher, cfg.Reminders.LeadMinutes)
		if _, err := reminderJob.Schedule(runner, cfg.Reminders.CronSchedule); err != nil {
			logger.Fatal("Failed to schedule reminder job", zap.Error(err))
		}
		runner.Start()
		defer runner.Stop()
	}

	// Router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.Observability())
	router.Use(middleware.SecurityHeaders())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true, // mentor session cookies
		MaxAge:           12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	intakeRateLimiter := middleware.NewRateLimiter(5, 10)     // public form, spam prevention
	authRateLimiter := middleware.NewRateLimiter(0.00667, 2)  // 2 req/5min, login abuse prevention
	uploadRateLimiter := middleware.NewRateLimiter(1, 3)      // document uploads
	defer generalRateLimiter.Stop()
	defer intakeRateLimiter.Stop()
	defer authRateLimiter.Stop()
	defer uploadRateLimiter.Stop()

	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	v1.POST("/requests", intakeRateLimiter.Middleware(), middleware.BodySizeLimit(100*1024), requestHandler.Submit)

	auth := v1.Group("/auth/mentor")
	auth.POST("/request-login", authRateLimiter.Middleware(), authHandler.RequestLogin)
	auth.POST("/verify", authHandler.VerifyLogin)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/session", middleware.MentorSession(tokenManager, cfg.Session.CookieDomain, cfg.Session.CookieSecure), authHandler.GetSession)

	mentor := v1.Group("/mentor")
	mentor.Use(generalRateLimiter.Middleware())
	mentor.Use(middleware.MentorSession(tokenManager, cfg.Session.CookieDomain, cfg.Session.CookieSecure))
	mentor.Use(middleware.BodySizeLimit(100 * 1024))

	mentor.GET("/requests", mentorRequestsHandler.GetRequests)
	mentor.GET("/requests/:id", mentorRequestsHandler.GetRequestByID)
	mentor.POST("/requests/:id/status", mentorRequestsHandler.UpdateStatus)
	mentor.POST("/requests/:id/confirm", mentorRequestsHandler.Confirm)

	mentor.GET("/mentorships/:id", mentorshipHandler.GetByID)
	mentor.POST("/mentorships/:id/cancel", mentorshipHandler.Cancel)
	mentor.POST("/mentorships/:id/reschedule", mentorshipHandler.Reschedule)

	mentor.GET("/documents", documentsHandler.List)
	mentor.POST("/documents", uploadRateLimiter.Middleware(), middleware.BodySizeLimit(11*1024*1024), documentsHandler.Upload)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
