package config

import (
	"fmt"

	"github.com/spf13/viper"

	"minirel/internal/bufferpool"
)

// Config carries the engine settings loaded from a YAML file.
type Config struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		Workdir    string `mapstructure:"workdir"`
		PoolFrames int    `mapstructure:"pool_frames"`
		Strategy   string `mapstructure:"strategy"`
	} `mapstructure:"storage"`
}

// Load reads and unmarshals the config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app_name", "minirel")
	v.SetDefault("storage.workdir", "./data")
	v.SetDefault("storage.pool_frames", bufferpool.DefaultCapacity)
	v.SetDefault("storage.strategy", "lru")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ReplacementStrategy maps the configured strategy name onto the pool enum.
func (c *Config) ReplacementStrategy() (bufferpool.Strategy, error) {
	switch c.Storage.Strategy {
	case "fifo":
		return bufferpool.StrategyFIFO, nil
	case "lru", "":
		return bufferpool.StrategyLRU, nil
	case "clock":
		return bufferpool.StrategyClock, nil
	case "lru-k":
		return bufferpool.StrategyLRUK, nil
	default:
		return 0, fmt.Errorf("invalid replacement strategy: %s", c.Storage.Strategy)
	}
}
