// Package config loads server and client settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultServerAddress  = ":5001"
	DefaultMaxUploadBytes = 5 << 20
	DefaultMaxBodyBytes   = 8 << 20
)

// Server holds the backend's environment-based settings.
type Server struct {
	Environment    string
	LogLevel       string
	ServerAddress  string
	SecretKey      string
	DatabaseURL    string
	MigrationsPath string
	UploadDir      string
	MaxUploadBytes int64
	MaxBodyBytes   int64

	AdminName     string
	AdminEmail    string
	AdminPassword string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL string
	MQTTClientID  string

	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesCDNURL    string
	SpacesAccessKey string
	SpacesSecretKey string
}

func (s Server) Development() bool { return s.Environment == "development" }

// LoadServer reads .env (when present) and the process environment.
func LoadServer() (*Server, error) {
	_ = godotenv.Load()

	cfg := &Server{
		Environment:    os.Getenv("APP_ENV"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		ServerAddress:  getenv("SERVER_ADDRESS", DefaultServerAddress),
		SecretKey:      os.Getenv("JWT_SECRET"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "./migrations"),
		UploadDir:      getenv("UPLOAD_DIR", "./uploads"),

		AdminName:     getenv("ADMIN_NAME", "Admin Pengurus"),
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@masjid.com"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:  getenv("MQTT_CLIENT_ID", "masjid-server"),

		UseSpaces:       os.Getenv("USE_SPACES") == "true",
		SpacesEndpoint:  os.Getenv("SPACES_ENDPOINT"),
		SpacesRegion:    os.Getenv("SPACES_REGION"),
		SpacesBucket:    os.Getenv("SPACES_BUCKET"),
		SpacesCDNURL:    os.Getenv("SPACES_CDN_URL"),
		SpacesAccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: os.Getenv("SPACES_SECRET_KEY"),
	}

	var err error
	if cfg.MaxUploadBytes, err = getbytes("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes); err != nil {
		return nil, err
	}
	if cfg.MaxBodyBytes, err = getbytes("MAX_BODY_BYTES", DefaultMaxBodyBytes); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.UseSpaces && (cfg.SpacesBucket == "" || cfg.SpacesEndpoint == "") {
		return nil, fmt.Errorf("USE_SPACES needs SPACES_ENDPOINT and SPACES_BUCKET")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getbytes(key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive byte count, got %q", key, raw)
	}
	return n, nil
}

// Client configures the board CLI and its synchronized store.
type Client struct {
	Environment     string        `envconfig:"ENVIRONMENT" default:"production"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"warn"`
	APIURL          string        `envconfig:"API_URL" default:"http://127.0.0.1:5001/api"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"5s"`
	NotifyDuration  time.Duration `envconfig:"NOTIFY_DURATION" default:"4s"`
	SessionFile     string        `envconfig:"SESSION_FILE"`
	SessionRedis    string        `envconfig:"SESSION_REDIS"`
	ValidateSession bool          `envconfig:"VALIDATE_SESSION" default:"true"`
	MaxImageBytes   int64         `envconfig:"MAX_IMAGE_BYTES" default:"5242880"`
	MQTTBrokerURL   string        `envconfig:"MQTT_BROKER_URL"`
}

// ClientPrefix namespaces the client's variables: MASJID_API_URL and so on.
const ClientPrefix = "MASJID"

func LoadClient() (*Client, error) {
	c := new(Client)
	if err := envconfig.Process(ClientPrefix, c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	if c.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		c.SessionFile = filepath.Join(dir, "masjid", "session.json")
	}
	if c.RefreshInterval <= 0 {
		return nil, fmt.Errorf("MASJID_REFRESH_INTERVAL must be positive")
	}
	return c, nil
}
