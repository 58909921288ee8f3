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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"petition-service/internal/auth"
	"petition-service/internal/config"
	"petition-service/internal/db"
	httphandler "petition-service/internal/http"
	"petition-service/internal/http/middleware"
	"petition-service/internal/logger"
	"petition-service/internal/metrics"
	"petition-service/internal/notification"
	"petition-service/internal/repository"
	"petition-service/internal/repository/memory"
	"petition-service/internal/service"
	"petition-service/internal/workflow"
)

type stores struct {
	petitions     service.PetitionStore
	users         service.UserStore
	sessions      service.SessionStore
	notifications notification.Store
	health        func(ctx context.Context) error
	close         func()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "petition-service: %v\n", err)
		os.Exit(1)
	}
}

// run owns every resource it opens so that deferred cleanup also happens on
// startup failures.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Environment)
	m := metrics.New()

	st, err := openStores(cfg, log)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer st.close()

	engine, err := workflow.NewEngine(log, m)
	if err != nil {
		return fmt.Errorf("build workflow engine: %w", err)
	}

	notifiers, closeNotifiers := buildNotifiers(cfg, log)
	defer closeNotifiers()

	dispatcher := notification.NewDispatcher(st.notifications, log, notifiers...)
	dispatcher.OnSent(m.ObserveNotification)
	queue := dispatcher.WithQueue(notification.QueueConfig{
		Workers:    cfg.Notify.Workers,
		MaxRetries: cfg.Notify.MaxRetries,
		RetryDelay: cfg.Notify.RetryDelay,
	})
	queue.Start(context.Background())
	defer queue.Stop()

	if _, err := service.SeedUsers(context.Background(), st.users, cfg.Auth.SeedDefaultPassword, log); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	tokens := auth.NewTokens(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL)
	authService := service.NewAuthService(st.users, st.sessions, tokens, log)
	validate := service.NewValidator()

	handler := httphandler.NewHandler(httphandler.Services{
		Auth:          authService,
		Petitions:     service.NewPetitionService(st.petitions, st.users, engine, validate, log),
		Assignments:   service.NewAssignmentService(st.petitions, st.users, engine, dispatcher, log),
		Reports:       service.NewReportService(st.petitions, st.users, engine, dispatcher, log),
		Decisions:     service.NewDecisionService(st.petitions, st.users, engine, dispatcher, log),
		Notifications: service.NewNotificationService(dispatcher),
		Officers:      service.NewOfficerService(st.users),
		Analytics:     service.NewAnalyticsService(st.petitions),
	}, log)
	router := httphandler.NewRouter(handler, middleware.Auth(authService), httphandler.RouterConfig{
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		Metrics:        m.Handler(),
		Observer:       m,
		Health:         st.health,
		Log:            log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("store", cfg.DB.Driver).Msg("starting petition service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case serveErr = <-serverErrCh:
		log.Error().Err(serveErr).Msg("server stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}
	return serveErr
}

func openStores(cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.DB.Driver == config.StoreDriverMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return &stores{
			petitions:     memory.NewPetitionStore(),
			users:         memory.NewUserStore(),
			sessions:      memory.NewSessionStore(),
			notifications: memory.NewNotificationStore(),
			close:         func() {},
		}, nil
	}

	database, err := db.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &stores{
		petitions:     repository.NewPetitionRepository(database),
		users:         repository.NewUserRepository(database),
		sessions:      repository.NewSessionRepository(database),
		notifications: repository.NewNotificationRepository(database),
		health: func(ctx context.Context) error {
			return db.HealthCheck(ctx, database)
		},
		close: func() { closeDatabase(database, log) },
	}, nil
}

func closeDatabase(database *gorm.DB, log zerolog.Logger) {
	if err := db.Close(database); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}

func buildNotifiers(cfg *config.Config, log zerolog.Logger) ([]notification.Notifier, func()) {
	var (
		notifiers []notification.Notifier
		closers   []func()
	)

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable; stream notifications disabled")
			_ = client.Close()
		} else {
			notifiers = append(notifiers, notification.NewStreamNotifier(client, cfg.Notify.Stream, 10000))
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	if cfg.Notify.WebhookURL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(notification.WebhookConfig{
			URL:        cfg.Notify.WebhookURL,
			Attempts:   cfg.Notify.WebhookAttempts,
			RetryDelay: cfg.Notify.RetryDelay,
		}))
	}

	return notifiers, func() {
		for _, c := range closers {
			c()
		}
	}
}
