package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings, loaded from environment variables.
type Config struct {
	Addr          string        `mapstructure:"ADDR"`
	DBDSN         string        `mapstructure:"DB_DSN"`
	LogFile       string        `mapstructure:"LOG_FILE"`
	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`
}

func Load() Config {
	viper.SetDefault("ADDR", ":8081")
	viper.SetDefault("DB_DSN", "foodlink.db") // sqlite file in project root
	viper.SetDefault("LOG_FILE", "./foodlink.log")
	viper.SetDefault("SWEEP_INTERVAL", time.Minute)
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("[config] unmarshal: %v", err)
	}
	log.Printf("[config] ADDR=%s DB_DSN=%s LOG_FILE=%s SWEEP_INTERVAL=%s",
		cfg.Addr, cfg.DBDSN, cfg.LogFile, cfg.SweepInterval)
	return cfg
}
