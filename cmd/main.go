package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goaltracker/broker"
	"goaltracker/config"
	"goaltracker/database"
	"goaltracker/logger"
	"goaltracker/middleware"
	"goaltracker/routes"
	"goaltracker/scheduler"
	"goaltracker/services"
	"goaltracker/views"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.Setup(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Revocations go to Redis when configured, otherwise to the database.
	var sessions services.SessionStore = services.NewDBSessionStore(db)
	if cfg.RedisURL != "" {
		redisStore, err := services.NewRedisSessionStore(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable, storing session revocations in the database", "error", err)
		} else {
			defer redisStore.Close()
			sessions = redisStore
		}
	}

	var producer broker.Producer
	if cfg.NatsURL != "" {
		natsProducer, err := broker.NewNatsProducer(cfg.NatsURL)
		if err != nil {
			logger.Warn("NATS unavailable, change events will not be published", "error", err)
		} else {
			defer natsProducer.Close()
			producer = natsProducer
		}
	}

	checkOrigin := middleware.OriginChecker(cfg.AllowedOrigins)
	webSocketService := services.NewWebSocketService(func(r *http.Request) bool {
		return checkOrigin(r.Header.Get("Origin"), r.Host)
	})
	webSocketService.Start()
	defer webSocketService.Stop()

	eventHandlerService := services.NewEventHandlerService(db, producer, webSocketService, cfg.EventPollInterval)
	eventHandlerService.Start()
	defer eventHandlerService.Stop()

	jobs := scheduler.NewEventScheduler()
	housekeeping := &scheduler.Housekeeping{
		Sessions:       sessions,
		Events:         eventHandlerService,
		EventRetention: cfg.EventRetention,
	}
	if err := housekeeping.Register(jobs); err != nil {
		logger.Error("Failed to register housekeeping jobs", "error", err)
		os.Exit(1)
	}
	jobs.Start()
	defer jobs.Stop()

	templates, err := views.Load()
	if err != nil {
		logger.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authService := services.NewAuthService(cfg.SecretKey, cfg.SessionDuration(), services.NewUserService(), sessions)

	router := routes.SetupRouter(routes.Dependencies{
		DB:             db,
		Templates:      templates,
		AuthService:    authService,
		GoalService:    services.NewGoalService(),
		TaskService:    services.NewTaskService(),
		WebSocket:      webSocketService,
		AllowedOrigins: cfg.AllowedOrigins,
		Cookies:        routes.CookieSettings{Secure: cfg.CookieSecure},
	})

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server is running", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
}
