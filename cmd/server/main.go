package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cinema-ticket-booking/internal/booking"
	"github.com/iliyamo/cinema-ticket-booking/internal/config"
	"github.com/iliyamo/cinema-ticket-booking/internal/database"
	"github.com/iliyamo/cinema-ticket-booking/internal/handler"
	"github.com/iliyamo/cinema-ticket-booking/internal/logger"
	"github.com/iliyamo/cinema-ticket-booking/internal/media"
	"github.com/iliyamo/cinema-ticket-booking/internal/middleware"
	"github.com/iliyamo/cinema-ticket-booking/internal/queue"
	"github.com/iliyamo/cinema-ticket-booking/internal/repository"
	"github.com/iliyamo/cinema-ticket-booking/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional outside development
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Error("database unavailable", slog.Any("err", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Error("migration failed", slog.Any("err", err))
			os.Exit(1)
		}
	}

	cutoff, err := booking.ParseCutoffPolicy(cfg.CutoffPolicy)
	if err != nil {
		log.Error("invalid configuration", slog.Any("err", err))
		os.Exit(1)
	}

	// Redis is optional: without it rate limiting, idempotency and the
	// poster cache are disabled.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, running without rate limit, idempotency and cache")
	} else {
		defer rdb.Close()
	}

	publisher := queue.NewPublisher(cfg.RabbitURL, log)
	defer publisher.Close()

	go func() {
		audit := queue.NewAuditLog(cfg.AuditLogPath)
		if err := queue.StartAuditConsumer(ctx, cfg.RabbitURL, audit, log); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit consumer stopped", slog.Any("err", err))
		}
	}()

	store := repository.NewStore(db)
	svc := booking.NewService(booking.NewSQLStore(store), booking.Options{
		Cutoff:        cutoff,
		Events:        publisher,
		Logger:        log,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), log), cfg.JWTSecret)
	router.RegisterBooking(e, handler.NewBookingHandler(svc, log), cfg.JWTSecret, router.BookingMiddleware{
		RateLimit:   middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Idempotency: middleware.Idempotency(config.LoadIdempotencyConfig(), rdb, log),
	})
	router.RegisterMedia(e, handler.NewMediaHandler(media.NewLibrary(cfg.MediaDir)),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.Any("err", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("err", err))
	}
}
