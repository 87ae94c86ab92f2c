package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type MediaConfig struct {
	Bucket        string `json:"bucket"`
	Region        string `json:"region"`
	Endpoint      string `json:"endpoint"`
	AccessKey     string `json:"access_key"`
	SecretKey     string `json:"secret_key"`
	UsePathStyle  bool   `json:"use_path_style"`
	PublicBaseURL string `json:"public_base_url"`
	KeyPrefix     string `json:"key_prefix"`
	TimeoutSecs   int    `json:"timeout_seconds"`
	MaxUploadKB   int64  `json:"max_upload_kb"`
}

// Timeout bounds a single call to the media host.
func (m MediaConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSecs) * time.Second
}

func (m MediaConfig) MaxUploadBytes() int64 {
	return m.MaxUploadKB * 1024
}

type Config struct {
	Server struct {
		Host         string `json:"host"`
		Port         int    `json:"port"`
		Subpath      string `json:"subpath"`
		JWTSecret    string `json:"jwtSecret"`
		TokenTTLMins int    `json:"tokenTtlMinutes"`
		SecureCookie bool   `json:"secureCookie"`
	} `json:"server"`
	Postgres struct {
		DSN string `json:"dsn"`
	} `json:"postgres"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	Media MediaConfig `json:"media"`
	CORS  struct {
		AllowOrigins []string `json:"allow_origins"`
	} `json:"cors"`
	Log struct {
		Level  string `json:"level"`
		Format string `json:"format"`
	} `json:"log"`
	RateLimit struct {
		LoginAttempts int `json:"login_attempts"`
		WindowSecs    int `json:"window_seconds"`
	} `json:"rateLimit"`
}

// TokenTTL is the fixed lifetime of an issued token.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Server.TokenTTLMins) * time.Minute
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton), then applies
// environment overrides (.env is loaded first when present).
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		c, err := Parse(raw)
		if err != nil {
			cfgErr = err
			return
		}
		cfg = c
	})
	return cfg, cfgErr
}

// Parse decodes raw JSON, applies the environment overlay and defaults and
// validates the result.
func Parse(raw []byte) (*Config, error) {
	var c Config
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("invalid config format: %w", err)
	}
	_ = godotenv.Load()
	applyEnv(&c)
	applyDefaults(&c)
	if c.Server.JWTSecret == "" {
		return nil, errors.New("jwtSecret must be set in config")
	}
	return &c, nil
}

func applyEnv(c *Config) {
	setString(&c.Server.JWTSecret, "JWT_SECRET")
	setString(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "SERVER_PORT")
	setString(&c.Postgres.DSN, "DATABASE_DSN")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Media.Bucket, "S3_BUCKET")
	setString(&c.Media.Region, "S3_REGION")
	setString(&c.Media.Endpoint, "S3_ENDPOINT")
	setString(&c.Media.AccessKey, "S3_ACCESS_KEY")
	setString(&c.Media.SecretKey, "S3_SECRET_KEY")
	setString(&c.Media.PublicBaseURL, "S3_PUBLIC_BASE_URL")
	setString(&c.Log.Level, "LOG_LEVEL")
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.TokenTTLMins <= 0 {
		c.Server.TokenTTLMins = 60
	}
	if c.Media.Region == "" {
		c.Media.Region = "us-east-1"
	}
	if c.Media.KeyPrefix == "" {
		c.Media.KeyPrefix = "uploads"
	}
	if c.Media.TimeoutSecs <= 0 {
		c.Media.TimeoutSecs = 15
	}
	if c.Media.MaxUploadKB <= 0 {
		c.Media.MaxUploadKB = 2048
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.RateLimit.LoginAttempts <= 0 {
		c.RateLimit.LoginAttempts = 10
	}
	if c.RateLimit.WindowSecs <= 0 {
		c.RateLimit.WindowSecs = 60
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
