package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"ebookstore/internal/app"
	"ebookstore/internal/config"
	"ebookstore/internal/server"
	"ebookstore/internal/util"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := app.New(app.Config{
		DatabaseURL:    cfg.DatabaseURL,
		RedisAddr:      cfg.RedisAddr,
		RedisPassword:  cfg.RedisPassword,
		SessionTTL:     time.Duration(cfg.SessionTTLMinutes) * time.Minute,
		JWTSecret:      cfg.JWTSecret,
		FilesDir:       cfg.FilesDir,
		MinioEndpoint:  cfg.MinioEndpoint,
		MinioAccessKey: cfg.MinioAccessKey,
		MinioSecretKey: cfg.MinioSecretKey,
		MinioBucket:    cfg.MinioBucket,
		MinioUseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                       appCore,
		RedisAddr:                 cfg.RedisAddr,
		RedisPassword:             cfg.RedisPassword,
		LoginRateLimitPerMinute:   cfg.LoginRateLimitPerMinute,
		CaptureRateLimitPerMinute: cfg.CaptureRateLimitPerMinute,
		TrustedProxies:            cfg.TrustedProxies,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("bookstore server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
