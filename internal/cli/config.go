package cli

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/venuehub/reservations/config"
)

// overrideKeys are the config keys that may be set from the environment.
var overrideKeys = []string{
	"http.address",
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.name",
	"storage.driver",
	"storage.seed_file",
	"redis.enabled",
	"redis.addr",
	"kafka.enabled",
	"kafka.brokers",
	"booking.lock_backend",
	"log.debug",
	"log.path",
}

// loadConfig reads the YAML file named by the config key and applies
// environment overrides on top. A missing file at the default path falls
// back to defaults.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	path := v.GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if path != defaultConfigPath || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = config.Default()
	}

	applyOverrides(v, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(v *viper.Viper, cfg *config.Config) {
	if v.IsSet("http.address") {
		cfg.HTTP.Address = v.GetString("http.address")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.name") {
		cfg.Database.Name = v.GetString("database.name")
	}
	if v.IsSet("storage.driver") {
		cfg.Storage.Driver = v.GetString("storage.driver")
	}
	if v.IsSet("storage.seed_file") {
		cfg.Storage.SeedFile = v.GetString("storage.seed_file")
	}
	if v.IsSet("redis.enabled") {
		cfg.Redis.Enabled = v.GetBool("redis.enabled")
	}
	if v.IsSet("redis.addr") {
		cfg.Redis.Addr = v.GetString("redis.addr")
	}
	if v.IsSet("kafka.enabled") {
		cfg.Kafka.Enabled = v.GetBool("kafka.enabled")
	}
	if v.IsSet("kafka.brokers") {
		cfg.Kafka.Brokers = splitList(v.GetString("kafka.brokers"))
	}
	if v.IsSet("booking.lock_backend") {
		cfg.Booking.LockBackend = v.GetString("booking.lock_backend")
	}
	if v.IsSet("log.debug") {
		cfg.Log.Debug = v.GetBool("log.debug")
	}
	if v.IsSet("log.path") {
		cfg.Log.Path = v.GetString("log.path")
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
