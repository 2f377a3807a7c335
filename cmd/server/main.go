package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kallydish/kallydish/internal/config"
	"github.com/kallydish/kallydish/internal/httpserver"
	"github.com/kallydish/kallydish/internal/logging"
	"github.com/kallydish/kallydish/internal/middleware"
	"github.com/kallydish/kallydish/internal/models"
	"github.com/kallydish/kallydish/internal/mykafka"
	"github.com/kallydish/kallydish/internal/repo"
	"github.com/kallydish/kallydish/internal/service"
	"github.com/kallydish/kallydish/internal/validate"
	"github.com/kallydish/kallydish/pkg/db"
	loggingmw "github.com/kallydish/kallydish/pkg/middleware/logging"
)

func main() {
	cfg := config.Load()
	cfg.MustValidate()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Validator = validate.New()
	e.Use(loggingmw.RequestLogger(logger))

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.Dish{},
		&models.Like{},
		&models.RevokedToken{},
	); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers, []string{"user_events", "dish_events"})
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
		defer producer.Close()
	}

	gormRepo := &repo.GormRepo{DB: gormDB}

	httpserver.Register(e, &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{
			Svc: &service.AuthService{
				Repo:          gormRepo,
				JWTSecret:     cfg.JWTSecret,
				RefreshSecret: cfg.RefreshSecret,
				AccessTTL:     cfg.AccessTTL,
				RefreshTTL:    cfg.RefreshTTL,
				Producer:      producer,
			},
		},
		Dish: &httpserver.DishHTTP{
			Svc: &service.DishService{
				Repo:     gormRepo,
				Producer: producer,
			},
		},
		TokenMW: middleware.NewTokenAuth(cfg.JWTSecret, cfg.RefreshSecret),
	})

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.ServerPort)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
