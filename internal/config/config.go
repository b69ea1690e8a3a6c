package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode          string        `mapstructure:"mode"`
	Port          int           `mapstructure:"port"`
	StaticPath    string        `mapstructure:"static_path"`
	ReadLimit     int64         `mapstructure:"read_limit"`
	PingPeriod    time.Duration `mapstructure:"ping_period"`
	Secret        string        `mapstructure:"secret"`
	AdminPassword string        `mapstructure:"admin_password"`
	DefaultRooms  []string      `mapstructure:"default_rooms"`
	HistorySweep  time.Duration `mapstructure:"history_sweep"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 131072)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("default_rooms", []string{"lobby", "general"})
	v.SetDefault("history_sweep", "12h")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("loaded config: %s\n", fileName)
	}

	// The admin surface stays locked unless a password is set explicitly.
	if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
		v.Set("admin_password", pw)
	}
	if port := os.Getenv("PORT"); port != "" {
		v.Set("port", port)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
