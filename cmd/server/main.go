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

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/raffle-ticket-sales/internal/config"
	"github.com/iliyamo/raffle-ticket-sales/internal/database"
	"github.com/iliyamo/raffle-ticket-sales/internal/handler"
	"github.com/iliyamo/raffle-ticket-sales/internal/logger"
	"github.com/iliyamo/raffle-ticket-sales/internal/middleware"
	"github.com/iliyamo/raffle-ticket-sales/internal/queue"
	"github.com/iliyamo/raffle-ticket-sales/internal/repository"
	"github.com/iliyamo/raffle-ticket-sales/internal/router"
	"github.com/iliyamo/raffle-ticket-sales/internal/service"
	"github.com/iliyamo/raffle-ticket-sales/internal/utils"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Env); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	log := zap.L()

	if cfg.UsesDevSecret() {
		log.Warn("JWT_SECRET not set, using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	log.Info("database connected", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))

	if cfg.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable, caching and rate limiting disabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.RabbitMQURL)
		go queue.NewConsumer(cfg.RabbitMQURL, cfg.EventsLogDir).Run(ctx)
		log.Info("ledger events enabled", zap.String("queue", queue.LedgerQueueName))
	}

	tickets := repository.NewTicketRepo(db)
	buyers := repository.NewBuyerRepo(db)
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTTL)

	raffle := service.NewRaffleService(tickets, buyers, events)
	auth := service.NewAuthService(repository.NewUserRepo(db), repository.NewSessionRepo(db), tokens, cfg.BcryptCost)
	raffleCfg := service.NewConfigService(repository.NewRaffleConfigRepo(db))

	if err := raffle.Initialize(ctx); err != nil {
		return err
	}

	purger := middleware.NewCachePurger(cfg.Cache, rdb)
	var inv handler.CacheInvalidator
	if purger != nil {
		inv = purger
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(middleware.NewTokenBucket(cfg.RateLimit, rdb))

	router.Register(e, router.Deps{
		Tickets: handler.NewTicketHandler(raffle, inv),
		Buyers:  handler.NewBuyerHandler(raffle, inv),
		Auth:    handler.NewAuthHandler(auth),
		Admin:   handler.NewAdminHandler(raffle, inv),
		Config:  handler.NewConfigHandler(raffleCfg, inv),
		Tokens:  tokens,
		Cache:   middleware.NewRedisCache(cfg.Cache, rdb),
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
