package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"TIMETRACK_ENV" env-default:"local"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Work     WorkConfig     `yaml:"work"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Client   ClientConfig   `yaml:"client"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"TIMETRACK_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"TIMETRACK_LOG_FORMAT" env-default:"json"`
}

type HTTPConfig struct {
	Address        string        `yaml:"address" env:"TIMETRACK_HTTP_ADDRESS" env-default:""`
	Port           int           `yaml:"port" env:"TIMETRACK_HTTP_PORT" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env-default:"15s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env-default:"15s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"TIMETRACK_ALLOWED_ORIGINS" env-separator:","`
}

type DatabaseConfig struct {
	// Driver is either "sqlite" or "postgres".
	Driver      string         `yaml:"driver" env:"TIMETRACK_DB_DRIVER" env-default:"sqlite"`
	StoragePath string         `yaml:"storage_path" env:"TIMETRACK_STORAGE_PATH" env-default:"timetrack.db"`
	Postgres    PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST"`
	Port     int    `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	DB       string `yaml:"db" env:"POSTGRES_DB"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	SSLMode  string `yaml:"ssl_mode" env:"POSTGRES_SSL_MODE" env-default:"disable"`
}

type AuthConfig struct {
	SessionTTL         time.Duration `yaml:"session_ttl" env:"TIMETRACK_SESSION_TTL" env-default:"24h"`
	CleanupInterval    time.Duration `yaml:"cleanup_interval" env-default:"1h"`
	// InsecureCookie drops the Secure flag; only for plain-http local setups.
	InsecureCookie     bool          `yaml:"insecure_cookie" env:"TIMETRACK_INSECURE_COOKIE" env-default:"false"`
	EnableUserCreation bool          `yaml:"enable_user_creation" env:"TIMETRACK_ENABLE_USER_CREATION" env-default:"false"`
	OIDC               OIDCConfig    `yaml:"oidc"`
}

// OIDCConfig points at an authentik-style provider. Endpoints are derived
// from ServerURL and Application unless IssuerURL is set explicitly.
type OIDCConfig struct {
	Enabled     bool   `yaml:"enabled" env:"TIMETRACK_OIDC_ENABLED" env-default:"false"`
	ServerURL   string `yaml:"server_url" env:"TIMETRACK_OIDC_SERVER_URL"`
	Application string `yaml:"application" env:"TIMETRACK_OIDC_APPLICATION" env-default:"timetrack"`
	ClientID    string `yaml:"client_id" env:"TIMETRACK_OIDC_CLIENT_ID"`
	IssuerURL   string `yaml:"issuer_url" env:"TIMETRACK_OIDC_ISSUER_URL"`
}

type WorkConfig struct {
	DailyHours float64 `yaml:"daily_hours" env:"TIMETRACK_DAILY_HOURS" env-default:"8"`
	TimeZone   string  `yaml:"time_zone" env:"TIMETRACK_TIME_ZONE" env-default:"Local"`
}

type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" env:"TIMETRACK_OTEL_ENABLED" env-default:"false"`
	Endpoint string `yaml:"endpoint" env:"TIMETRACK_OTEL_ENDPOINT"`
	Insecure bool   `yaml:"insecure" env:"TIMETRACK_OTEL_INSECURE" env-default:"false"`
}

type ClientConfig struct {
	BaseURL      string        `yaml:"base_url" env:"TIMETRACK_BASE_URL" env-default:"http://localhost:8080"`
	Timeout      time.Duration `yaml:"timeout" env:"TIMETRACK_CLIENT_TIMEOUT" env-default:"30s"`
	CallbackPort int           `yaml:"callback_port" env:"TIMETRACK_CALLBACK_PORT" env-default:"8765"`
	TokenFile    string        `yaml:"token_file" env:"TIMETRACK_TOKEN_FILE"`
}

// LoadConfig reads the YAML file at path and applies environment overrides.
// A missing file is not an error; defaults and the environment are used.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
			return &cfg, cfg.validate()
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from env: %w", err)
	}

	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.StoragePath == "" {
			return fmt.Errorf("database.storage_path must be set for sqlite")
		}
	case "postgres":
		pg := c.Database.Postgres
		if pg.Host == "" || pg.DB == "" || pg.User == "" || pg.Password == "" {
			return fmt.Errorf("postgres host, db, user and password must be set")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Work.DailyHours <= 0 || c.Work.DailyHours > 24 {
		return fmt.Errorf("work.daily_hours must be within (0, 24], got %v", c.Work.DailyHours)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive, got %v", c.Auth.SessionTTL)
	}
	if c.Auth.CleanupInterval <= 0 {
		return fmt.Errorf("auth.cleanup_interval must be positive, got %v", c.Auth.CleanupInterval)
	}

	if c.Auth.OIDC.Enabled && (c.Auth.OIDC.ServerURL == "" || c.Auth.OIDC.ClientID == "") {
		return fmt.Errorf("auth.oidc.server_url and auth.oidc.client_id must be set when oidc is enabled")
	}

	return nil
}

// Location resolves the configured work time zone.
func (w WorkConfig) Location() (*time.Location, error) {
	if w.TimeZone == "" || w.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(w.TimeZone)
}

// DailyWorkSeconds is the expected net work per day.
func (w WorkConfig) DailyWorkSeconds() int64 {
	return int64(w.DailyHours * 3600)
}

// Issuer returns the OIDC issuer URL.
func (o OIDCConfig) Issuer() string {
	if o.IssuerURL != "" {
		return o.IssuerURL
	}
	return o.ServerURL + "/application/o/" + o.Application + "/"
}

func (o OIDCConfig) AuthURL() string     { return o.ServerURL + "/application/o/authorize/" }
func (o OIDCConfig) TokenURL() string    { return o.ServerURL + "/application/o/token/" }
func (o OIDCConfig) UserInfoURL() string { return o.ServerURL + "/application/o/userinfo/" }
func (o OIDCConfig) EndSessionURL() string {
	return o.ServerURL + "/application/o/end-session/"
}
func (o OIDCConfig) JWKSURL() string {
	return o.ServerURL + "/application/o/" + o.Application + "/jwks/"
}
