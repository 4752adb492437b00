package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/shopcore/internal/config"
	"github.com/Skotchmaster/shopcore/internal/db"
	"github.com/Skotchmaster/shopcore/internal/es"
	"github.com/Skotchmaster/shopcore/internal/httpserver"
	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/shopcore/internal/middleware/logging"
	"github.com/Skotchmaster/shopcore/internal/mykafka"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/scheduler"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/socket"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	l := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(l)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		l.Error("db_init_failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		l.Error("db_migrate_failed", "error", err)
		os.Exit(1)
	}

	var events service.EventPublisher
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			l.Error("kafka_init_failed", "error", err)
			os.Exit(1)
		}
		events = producer
	} else {
		l.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var index service.SearchIndex
	if cfg.ESURL != "" {
		client, err := es.NewClient(es.Config{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword}, l)
		if err != nil {
			l.Warn("es_unavailable", "error", err)
		} else {
			index = es.NewProductIndex(client, cfg.ESIndex)
		}
	}

	r := repo.New(gdb)
	hub := socket.NewHub(l)

	notifications := &service.NotificationService{Repo: r, Hub: hub, Events: events}
	orders := &service.OrderService{
		Repo:         r,
		Notifier:     notifications,
		Events:       events,
		CancelWindow: cfg.CancelWindow,
		DeliverAfter: cfg.DeliveryAfter,
	}

	sweeper, err := scheduler.NewDeliverySweeper(orders, cfg.DeliverySweepSchedule, l)
	if err != nil {
		l.Error("scheduler_init_failed", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(l))
	e.Use(csrf.Middleware(csrf.Config{Secure: cfg.SecureCookies}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: len(cfg.CORSOrigins) > 0 && cfg.CORSOrigins[0] != "*",
	}))

	httpserver.Register(e, &httpserver.Deps{
		JWTSecret: cfg.JWTSecret,
		Health:    &httpserver.HealthHTTP{DB: gdb},
		Auth: &httpserver.AuthHTTP{
			Svc:          &service.AuthService{Repo: r, Secret: cfg.JWTSecret, TTL: cfg.JWTTTL, Events: events},
			SecureCookie: cfg.SecureCookies,
		},
		Products: &httpserver.ProductHTTP{
			Svc: &service.ProductService{Repo: r, Index: index, Events: events},
		},
		Cart: &httpserver.CartHTTP{
			Svc: &service.CartService{Repo: r, Notifier: notifications, Events: events},
		},
		Orders:        &httpserver.OrderHTTP{Svc: orders},
		Coupons:       &httpserver.CouponHTTP{Svc: &service.CouponService{Repo: r, TTL: cfg.CouponTTL}},
		Notifications: &httpserver.NotificationHTTP{Svc: notifications},
		VaccineStock:  &httpserver.VaccineStockHTTP{Svc: &service.VaccineStockService{Repo: r}},
		Socket:        &httpserver.SocketHTTP{Hub: hub},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sweeper.Start()
	go func() {
		l.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sweeper.Stop(ctx)
	hub.Close()

	if err := srv.Shutdown(ctx); err != nil {
		l.Error("server_shutdown_error", "error", err)
	}
	if err := producer.Close(); err != nil {
		l.Error("kafka_close_error", "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			l.Error("db_close_error", "error", err)
		}
	}

	l.Info("shutdown_complete")
}
