// Package main is the entry point for the Ijwi citizen engagement server.
// It provides a REST API for citizen complaints routed through a
// location-based admin hierarchy, public discussions, community groups,
// service feedback, reports and real-time room notifications.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/config"
	"github.com/ijwi/citizen-server/internal/database"
	"github.com/ijwi/citizen-server/internal/handlers"
	"github.com/ijwi/citizen-server/internal/middleware"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/notifier"
	"github.com/ijwi/citizen-server/internal/services"
	"github.com/ijwi/citizen-server/internal/store"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	sugar.Infow("Starting Ijwi Citizen Server",
		"port", cfg.Port,
		"env", cfg.Environment,
	)

	// Initialize database connection pool
	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	if err := database.ApplyMigrations(migrateCtx, pool); err != nil {
		cancelMigrate()
		sugar.Fatalf("Failed to apply migrations: %v", err)
	}
	cancelMigrate()

	// Initialize Redis (login rate limiting and room pub/sub)
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalf("Invalid redis url: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	publisher := notifier.NewRedisPublisherWithClient(redisClient)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := publisher.Ping(pingCtx); err != nil {
		cancelPing()
		sugar.Fatalf("Failed to connect to redis: %v", err)
	}
	cancelPing()

	// Initialize storage and services
	db := store.NewPostgres(pool)
	loginLimiter := services.NewLoginLimiter(redisClient)

	userSvc := services.NewUserService(db, loginLimiter, cfg.JWTSecret, cfg.TokenTTL, sugar)
	complaintSvc := services.NewComplaintService(db, sugar)
	discussionSvc := services.NewDiscussionService(db, sugar)
	groupSvc := services.NewGroupService(db, sugar)
	feedbackSvc := services.NewFeedbackService(db, sugar)
	messageSvc := services.NewMessageService(db, sugar)
	reportSvc := services.NewReportService(db, sugar)

	// Start the outbox dispatcher (drains pending events to Redis rooms)
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	dispatcher := notifier.NewDispatcher(db, publisher, cfg.DispatchBatch, sugar)
	go dispatcher.Start(dispatcherCtx, cfg.DispatchInterval)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userSvc, sugar)
	complaintHandler := handlers.NewComplaintHandler(complaintSvc, sugar)
	discussionHandler := handlers.NewDiscussionHandler(discussionSvc, sugar)
	groupHandler := handlers.NewGroupHandler(groupSvc, sugar)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackSvc, sugar)
	messageHandler := handlers.NewMessageHandler(messageSvc, sugar)
	reportHandler := handlers.NewReportHandler(reportSvc, sugar)
	eventsHandler := handlers.NewEventsHandler(publisher, sugar)
	healthHandler := handlers.NewHealthHandler(db, publisher, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))

	protect := middleware.Protect(cfg.JWTSecret, userSvc)
	adminsOnly := middleware.RestrictTo(models.RoleSectorAdmin, models.RoleDistrictAdmin, models.RoleSuperAdmin)

	// API Routes. The request timeout is mounted here rather than globally:
	// the event stream holds its connection open past any deadline.
	r.Route("/api", func(r chi.Router) {
		r.With(protect).Get("/events/stream", eventsHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(30 * time.Second))

			// Health check
			r.Get("/health", healthHandler.Check)
			r.Get("/health/ready", healthHandler.Ready)

			// Auth (public)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)

			// Authenticated routes
			r.Group(func(r chi.Router) {
				r.Use(protect)

				r.Route("/users", func(r chi.Router) {
					r.Get("/me", authHandler.Me)
					r.With(middleware.RestrictTo(models.RoleDistrictAdmin, models.RoleSuperAdmin)).
						Patch("/{id}/role", authHandler.UpdateRole)
				})

				r.Route("/complaints", func(r chi.Router) {
					r.With(middleware.RestrictTo(models.RoleCitizen)).Post("/", complaintHandler.Submit)
					r.Get("/my", complaintHandler.Mine)
					r.With(middleware.RestrictTo(models.RoleSectorAdmin)).Get("/sector", complaintHandler.Sector)
					r.With(middleware.RestrictTo(models.RoleDistrictAdmin)).Get("/district", complaintHandler.District)
					r.With(middleware.RestrictTo(models.RoleSectorAdmin)).Put("/{id}/escalate", complaintHandler.Escalate)
					r.With(adminsOnly).Put("/{id}/resolve", complaintHandler.Resolve)
					r.With(middleware.RestrictTo(models.RoleSuperAdmin)).Get("/admin/dashboard", complaintHandler.Dashboard)
				})

				r.Route("/discussions", func(r chi.Router) {
					r.With(middleware.RestrictTo(models.RoleCitizen)).Post("/", discussionHandler.Create)
					r.Get("/", discussionHandler.List)
					r.Get("/{id}", discussionHandler.Get)
					r.Post("/{id}/comments", discussionHandler.AddComment)
					r.With(middleware.RestrictTo(models.RoleSectorAdmin, models.RoleDistrictAdmin)).
						Patch("/{id}/resolve", discussionHandler.Resolve)
				})

				r.Route("/groups", func(r chi.Router) {
					r.With(middleware.RestrictTo(models.RoleSectorAdmin, models.RoleDistrictAdmin)).
						Post("/", groupHandler.Create)
					r.Get("/", groupHandler.List)
					r.Get("/{id}", groupHandler.Get)
					r.Post("/{id}/join", groupHandler.Join)
					r.Post("/{id}/leave", groupHandler.Leave)
					r.Post("/{id}/announcements", groupHandler.PostAnnouncement)
					r.Get("/{id}/announcements", groupHandler.Announcements)
				})

				r.Route("/feedback", func(r chi.Router) {
					r.With(middleware.RestrictTo(models.RoleCitizen)).Post("/", feedbackHandler.Submit)
					r.With(adminsOnly).Get("/analytics", feedbackHandler.Analytics)
				})

				r.Route("/messages", func(r chi.Router) {
					r.Post("/", messageHandler.Send)
					r.Get("/{userID}", messageHandler.Conversation)
					r.Patch("/{id}/read", messageHandler.MarkRead)
				})

				r.Route("/reports", func(r chi.Router) {
					r.Use(adminsOnly)
					r.Get("/complaints", reportHandler.Complaints)
					r.Get("/feedback", reportHandler.Feedback)
					r.With(middleware.RestrictTo(models.RoleSuperAdmin)).Get("/performance", reportHandler.Performance)
					r.With(middleware.RestrictTo(models.RoleSuperAdmin)).Get("/engagement", reportHandler.Engagement)
					r.Get("/{id}", reportHandler.Get)
					r.Get("/{id}/csv", reportHandler.ExportCSV)
					r.Get("/{id}/pdf", reportHandler.ExportPDF)
				})
			})
		})
	})

	// Create HTTP server
	// WriteTimeout stays 0: the event stream holds its connection open.
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")

	stopDispatcher()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	// Flush any events committed before shutdown.
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelDrain()
	dispatcher.Drain(drainCtx)

	sugar.Info("Server stopped")
}
