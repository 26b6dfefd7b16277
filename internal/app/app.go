package app

import (
	"fmt"
	"strings"
	"time"

	"ebookstore/internal/storage"
	"ebookstore/internal/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	JWTSecret     string

	FilesDir       string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	Store    store.Store
	Sessions store.SessionStore
	Files    storage.FileSource
}

// App is the core application service wiring together storage, sessions
// and domain logic.
type App struct {
	store    store.Store
	sessions store.SessionStore
	files    storage.FileSource
}

// New constructs the application. Explicit Store/Sessions/Files values
// win; otherwise the session backend is chosen from the config: JWT when
// a secret is set, Redis when an address is set, in-memory as the last
// resort. Files default to a local directory source, MinIO when an
// endpoint is configured.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessions := cfg.Sessions
	if sessions == nil {
		switch {
		case strings.TrimSpace(cfg.JWTSecret) != "":
			var revoker store.TokenRevoker
			if strings.TrimSpace(cfg.RedisAddr) != "" {
				revoker = store.NewRedisTokenRevoker(cfg.RedisAddr, cfg.RedisPassword)
			} else {
				revoker = store.NewMemoryTokenRevoker()
			}
			jwtStore, err := store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL, revoker)
			if err != nil {
				return nil, fmt.Errorf("init jwt session store: %w", err)
			}
			sessions = jwtStore
		case strings.TrimSpace(cfg.RedisAddr) != "":
			sessions = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		default:
			sessions = store.NewMemorySessionStore(cfg.SessionTTL)
		}
	}

	files := cfg.Files
	if files == nil {
		var err error
		if strings.TrimSpace(cfg.MinioEndpoint) != "" {
			files, err = storage.NewMinioSource(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
			if err != nil {
				return nil, fmt.Errorf("init minio file source: %w", err)
			}
		} else {
			dir := cfg.FilesDir
			if dir == "" {
				dir = "data/books"
			}
			files, err = storage.NewLocalSource(dir)
			if err != nil {
				return nil, fmt.Errorf("init local file source: %w", err)
			}
		}
	}

	return &App{store: dataStore, sessions: sessions, files: files}, nil
}
