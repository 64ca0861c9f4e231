package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Address  string
		HTTPPort string
	}
	Database struct {
		Driver      string // mysql | postgres
		DSN         string
		MaxOpen     int
		MaxIdle     int
		MaxLifetime time.Duration
	}
	Logging struct {
		Level  string
		Format string
		File   string
	}
}

// Load читает конфиг из файла (path может быть пустым) поверх дефолтов;
// переменные окружения EQUIPD_* перекрывают и то и другое.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open", 10)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	v.SetEnvPrefix("EQUIPD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var c Config
	c.Server.Address = v.GetString("server.address")
	c.Server.HTTPPort = v.GetString("server.http_port")
	c.Database.Driver = v.GetString("database.driver")
	c.Database.DSN = v.GetString("database.dsn")
	c.Database.MaxOpen = v.GetInt("database.max_open")
	c.Database.MaxIdle = v.GetInt("database.max_idle")
	c.Database.MaxLifetime = v.GetDuration("database.max_lifetime")
	c.Logging.Level = v.GetString("logging.level")
	c.Logging.Format = v.GetString("logging.format")
	c.Logging.File = v.GetString("logging.file")
	return &c, nil
}
