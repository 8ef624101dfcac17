package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akulbansal1/carelink/config"
	"github.com/akulbansal1/carelink/internal/gateway"
	"github.com/akulbansal1/carelink/internal/handler"
	appointmentHandler "github.com/akulbansal1/carelink/internal/handler/appointment"
	authHandler "github.com/akulbansal1/carelink/internal/handler/auth"
	contactHandler "github.com/akulbansal1/carelink/internal/handler/contact"
	doctorHandler "github.com/akulbansal1/carelink/internal/handler/doctor"
	medicineHandler "github.com/akulbansal1/carelink/internal/handler/medicine"
	patientHandler "github.com/akulbansal1/carelink/internal/handler/patient"
	"github.com/akulbansal1/carelink/internal/middleware"
	"github.com/akulbansal1/carelink/internal/notification"
	"github.com/akulbansal1/carelink/internal/query"
	"github.com/akulbansal1/carelink/internal/remote"
	"github.com/akulbansal1/carelink/internal/repository/postgres"
	"github.com/akulbansal1/carelink/internal/router"
	"github.com/akulbansal1/carelink/internal/session"
	"github.com/akulbansal1/carelink/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve timezone")
	}

	// Local persistence (emergency contacts only)
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	contactRepo := postgres.NewContactRepository(db)

	appLogger := logger.NewLogger(nil)

	// Sync adapter against the upstream backend
	remoteClient, err := remote.NewClient(remote.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	}, appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize upstream client")
	}

	// Session store
	sessionStore, err := session.NewRedisStore(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer sessionStore.Close()

	sessionSvc := session.NewService(session.Config{
		JWTSecret:         cfg.Session.JWTSecret,
		Expiry:            time.Duration(cfg.Session.ExpiryHours) * time.Hour,
		AdminEmail:        cfg.Session.AdminEmail,
		AdminPasswordHash: cfg.Session.AdminPasswordHash,
	}, sessionStore, remoteClient)

	engine := query.NewEngine(loc)
	gw := gateway.New(loc)
	notifier := notification.NewService(cfg.SMTP, loc)

	// Handlers
	h := handler.NewHandler()
	authH := authHandler.NewHandler(sessionSvc)
	patientH := patientHandler.NewHandler(remoteClient, loc)
	doctorH := doctorHandler.NewHandler(remoteClient)
	appointmentH := appointmentHandler.NewHandler(remoteClient, engine, gw, notifier, loc)
	defer appointmentH.Close()
	medicineH := medicineHandler.NewHandler(remoteClient, engine, gw, loc)
	contactH := contactHandler.NewHandler(contactRepo, gw)

	sessionMW := middleware.NewSessionMiddleware(sessionSvc)

	r := router.NewRouter(
		sessionMW,
		authH,
		patientH,
		doctorH,
		appointmentH,
		medicineH,
		contactH,
		h,
		router.Config{
			RateLimitRPS:  cfg.RateLimit.RPS,
			RateBurst:     cfg.RateLimit.Burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "carelink",
			CacheMaxAge:   15,
			Logger:        appLogger,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
