package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port        string `yaml:"port"`
	LogLevel    string `yaml:"logLevel"`
	DatabaseURL string `yaml:"databaseURL"`

	RedisAddr         string `yaml:"redisAddr"`
	RedisPassword     string `yaml:"redisPassword"`
	SessionTTLMinutes int    `yaml:"sessionTTLMinutes"`
	JWTSecret         string `yaml:"jwtSecret"`

	FilesDir       string `yaml:"filesDir"`
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	LoginRateLimitPerMinute   int      `yaml:"loginRateLimitPerMinute"`
	CaptureRateLimitPerMinute int      `yaml:"captureRateLimitPerMinute"`
	TrustedProxies            []string `yaml:"trustedProxies"`
}

// Load reads config from path (defaults to config.yaml) and applies
// environment variable overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SessionTTLMinutes = n
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("FILES_DIR"); v != "" {
		cfg.FilesDir = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v == "true" {
		cfg.MinioUseSSL = true
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.TrustedProxies = splitCSV(v)
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.RedisAddr == "" {
		return errors.New("config: redisAddr is required (set in config.yaml or REDIS_ADDR)")
	}
	if cfg.MinioEndpoint != "" {
		if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" || cfg.MinioBucket == "" {
			return errors.New("config: minio endpoint set without accessKey/secretKey/bucket")
		}
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
