// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/shivanand-hulikatti/eventcore/internal/config"
	"github.com/shivanand-hulikatti/eventcore/internal/database"
	"github.com/shivanand-hulikatti/eventcore/internal/handler"
	"github.com/shivanand-hulikatti/eventcore/internal/identity"
	"github.com/shivanand-hulikatti/eventcore/internal/repository"
	"github.com/shivanand-hulikatti/eventcore/internal/service"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	log := newLogger(cfg.Server.Environment)

	// ── 1. Connect to PostgreSQL and bootstrap the schema ─────────────────
	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Error("schema migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres", "database", cfg.Database.Name)

	// ── 2. Wire up layers ────────────────────────────────────────────────
	profileRepo := repository.NewProfileRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	assignRepo := repository.NewAssignmentRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)

	bridge := identity.NewBridge(profileRepo, log)
	profileSvc := service.NewProfileService(profileRepo)
	eventSvc := service.NewEventService(eventRepo, log)
	bookingSvc := service.NewBookingService(eventRepo, regRepo, assignRepo, log)
	taskSvc := service.NewTaskService(eventRepo, assignRepo, taskRepo, profileRepo, log)

	profileHandler := handler.NewProfileHandler(profileSvc, bridge, cfg.Auth.WebhookSecret)
	eventHandler := handler.NewEventHandler(eventSvc)
	regHandler := handler.NewRegistrationHandler(bookingSvc)
	volHandler := handler.NewVolunteerHandler(taskSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.Logger(log))
	r.Use(handler.CORS)

	r.Get("/health", handler.HealthCheck)

	// Identity-provider webhook, guarded by a shared secret rather than a
	// user token.
	r.Post("/webhooks/identity", profileHandler.IdentityWebhook)

	// Everything else requires an authenticated actor with a profile.
	r.Group(func(r chi.Router) {
		r.Use(handler.Authenticate(profileSvc, cfg.Auth.JWTSecret))

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/me", profileHandler.Me)
			r.Patch("/me", profileHandler.UpdateMe)
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.Create)
			r.Get("/", eventHandler.List)
			r.Get("/mine", eventHandler.ListMine)
			r.Get("/{id}", eventHandler.Get)
			r.Patch("/{id}", eventHandler.Update)
			r.Post("/{id}/status", eventHandler.UpdateStatus)
			r.Delete("/{id}", eventHandler.Delete)

			r.Post("/{id}/register", regHandler.Register)
			r.Get("/{id}/registrations", regHandler.ListForEvent)

			r.Post("/{id}/volunteers", volHandler.Assign)
			r.Get("/{id}/volunteers", volHandler.ListAssignments)
			r.Delete("/{id}/volunteers/{volunteerID}", volHandler.Unassign)

			r.Post("/{id}/tasks", volHandler.CreateTask)
			r.Get("/{id}/tasks", volHandler.ListTasks)
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Get("/", regHandler.ListMine)
			r.Get("/{id}", regHandler.Get)
			r.Post("/{id}/cancel", regHandler.Cancel)
			r.Post("/{id}/confirm", regHandler.Confirm)
			r.Post("/{id}/checkin", regHandler.CheckIn)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Patch("/{id}", volHandler.UpdateTask)
			r.Post("/{id}/status", volHandler.UpdateTaskStatus)
			r.Delete("/{id}", volHandler.DeleteTask)
		})
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// newLogger builds the process logger: JSON in production, text for local
// development.
func newLogger(environment string) *slog.Logger {
	var h slog.Handler
	if environment == "production" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	log := slog.New(h)
	slog.SetDefault(log)
	return log
}
