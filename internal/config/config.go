package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	LogLevel  string          `mapstructure:"log_level"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Events    EventsConfig    `mapstructure:"events"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	// Grace period for in-flight ballots on SIGTERM. Keep it above
	// database.tx_timeout_seconds.
	ShutdownTimeout int `mapstructure:"shutdown_timeout_seconds"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time_seconds"`
	// Upper bound for a single vote transaction, including lock waits.
	TxTimeout int `mapstructure:"tx_timeout_seconds"`
}

type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLHours  int    `mapstructure:"refresh_ttl_hours"`
	SecureCookies    bool   `mapstructure:"secure_cookies"`
}

// EventsConfig picks the broker used for vote and election events.
// Driver is one of "none", "nats" or "kafka".
type EventsConfig struct {
	Driver string      `mapstructure:"driver"`
	NATS   NATSConfig  `mapstructure:"nats"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type UploadsConfig struct {
	Dir          string `mapstructure:"dir"`
	MaxPhotoSize int64  `mapstructure:"max_photo_bytes"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func (c AuthConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMinutes) * time.Minute
}

func (c AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLHours) * time.Hour
}

func (c ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

func (c DatabaseConfig) TxTimeoutDuration() time.Duration {
	return time.Duration(c.TxTimeout) * time.Second
}

func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs") // Kubernetes mount
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		fmt.Printf("No config file found (will use ENV variables): %v\n", err)
	}

	// ENV takes precedence over the file: database.host -> DATABASE_HOST.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if config.Env == "" {
		config.Env = env
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	switch c.Events.Driver {
	case "", "none", "nats", "kafka":
	default:
		return fmt.Errorf("unknown events driver %q", c.Events.Driver)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "elections")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.tx_timeout_seconds", 5)
	v.SetDefault("auth.access_ttl_minutes", 15)
	v.SetDefault("auth.refresh_ttl_hours", 7*24)
	v.SetDefault("events.driver", "none")
	v.SetDefault("events.nats.subject", "elections.events")
	v.SetDefault("events.kafka.topic", "election-events")
	v.SetDefault("uploads.dir", "./uploads")
	v.SetDefault("uploads.max_photo_bytes", 5<<20)
}
