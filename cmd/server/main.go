package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/minhlq/vlxd-pos/internal/auth"
	"github.com/minhlq/vlxd-pos/internal/config"
	"github.com/minhlq/vlxd-pos/internal/db"
	"github.com/minhlq/vlxd-pos/internal/handlers"
	"github.com/minhlq/vlxd-pos/internal/metrics"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB migrations plus seed data and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	log.SetFormatter(&log.JSONFormatter{})
	if cfg.App.Dev {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		log.SetLevel(log.DebugLevel)
	}

	conn, err := connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}

	if cfg.App.Migrations || *migrateOnlyFlag || *seedOnlyFlag {
		if err := db.Migrate(conn); err != nil {
			log.WithError(err).Fatal("migrations failed")
		}
	}
	if cfg.App.Seed || *seedOnlyFlag {
		if err := db.Seed(conn); err != nil {
			log.WithError(err).Fatal("seeding failed")
		}
	}
	if *migrateOnlyFlag || *seedOnlyFlag {
		log.Info("database prepared; exiting as requested")
		return
	}

	router := handlers.NewRouter(conn, handlers.RouterConfig{
		Tokens:         auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Metrics:        metrics.New(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		StoreName:      cfg.App.StoreName,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
	log.Info("server stopped")
}

func connect(cfg *config.Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
}
