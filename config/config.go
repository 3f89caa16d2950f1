package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address        string `yaml:"address"`
	SwaggerDir     string `yaml:"swagger_dir"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	if d.MaxConns > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", d.MaxConns)
	}
	return dsn
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type StorageConfig struct {
	Driver string `yaml:"driver"`

	// SeedFile lists resources loaded into the memory store at startup.
	SeedFile string `yaml:"seed_file"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Enabled                bool     `yaml:"enabled"`
	Brokers                []string `yaml:"brokers"`
	ReservationEventsTopic string   `yaml:"reservation_events_topic"`
	NotificationsTopic     string   `yaml:"notifications_topic"`
	GroupID                string   `yaml:"group_id"`
}

const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

type BookingConfig struct {
	SlotMinutes             int    `yaml:"slot_minutes"`
	CancellationCutoffHours int    `yaml:"cancellation_cutoff_hours"`
	MaxMonths               int    `yaml:"max_months"`
	ResourceCacheTTLSeconds int    `yaml:"resource_cache_ttl_seconds"`
	LockBackend             string `yaml:"lock_backend"`
	LockTTLSeconds          int    `yaml:"lock_ttl_seconds"`
	EventBuffer             int    `yaml:"event_buffer"`
	PublishTimeoutSeconds   int    `yaml:"publish_timeout_seconds"`
}

func (b BookingConfig) CancellationCutoff() time.Duration {
	return time.Duration(b.CancellationCutoffHours) * time.Hour
}

func (b BookingConfig) ResourceCacheTTL() time.Duration {
	return time.Duration(b.ResourceCacheTTLSeconds) * time.Second
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

func (b BookingConfig) PublishTimeout() time.Duration {
	return time.Duration(b.PublishTimeoutSeconds) * time.Second
}

type WorkerConfig struct {
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
}

type LogConfig struct {
	Debug bool   `yaml:"debug"`
	Path  string `yaml:"path"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used for keys the file leaves out.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			RequestTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Storage: StorageConfig{Driver: StorageDriverPostgres},
		Kafka: KafkaConfig{
			ReservationEventsTopic: "reservation-events",
			NotificationsTopic:     "reservation-notifications",
			GroupID:                "reservation-notifier",
		},
		Booking: BookingConfig{
			SlotMinutes:             30,
			CancellationCutoffHours: 24,
			MaxMonths:               12,
			ResourceCacheTTLSeconds: 60,
			LockBackend:             LockBackendLocal,
			LockTTLSeconds:          10,
			EventBuffer:             256,
			PublishTimeoutSeconds:   5,
		},
		Worker: WorkerConfig{SweepIntervalMinutes: 5},
		Log:    LogConfig{Path: "logs/"},
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Booking.LockBackend {
	case LockBackendLocal:
	case LockBackendRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("config: lock_backend redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("config: unknown lock backend %q", c.Booking.LockBackend)
	}
	if c.Booking.SlotMinutes <= 0 || 60%c.Booking.SlotMinutes != 0 {
		return fmt.Errorf("config: slot_minutes must divide an hour, got %d", c.Booking.SlotMinutes)
	}
	if c.Worker.SweepIntervalMinutes <= 0 {
		return fmt.Errorf("config: sweep_interval_minutes must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.enabled requires brokers")
	}
	return nil
}
