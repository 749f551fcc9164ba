package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/agrichain/pricecast/internal/logger"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "PRICECAST"

// Config is the full pricecast configuration.
type Config struct {
	Log       logger.Config   `yaml:"log"`
	Data      DataConfig      `yaml:"data"`
	Selection SelectionConfig `yaml:"selection"`
	Store     StoreConfig     `yaml:"store"`
	Forecast  ForecastConfig  `yaml:"forecast"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DataConfig lists the farm exports to read and the crops to train.
type DataConfig struct {
	Sources     []string `yaml:"sources" validate:"dive,required"`
	Crops       []string `yaml:"crops" default:"[\"tomato\",\"corn\",\"lettuce\",\"wheat\"]" validate:"min=1,dive,required"`
	MinPoints   int      `yaml:"min_points" default:"12" validate:"min=1"`
	ModelSuffix string   `yaml:"model_suffix" default:"_price"`
}

// SelectionConfig bounds the automatic order search.
type SelectionConfig struct {
	MaxP           int    `yaml:"max_p" default:"2" validate:"min=0,max=5"`
	MaxQ           int    `yaml:"max_q" default:"2" validate:"min=0,max=5"`
	MaxSP          int    `yaml:"max_sp" default:"2" validate:"min=0,max=3"`
	MaxSQ          int    `yaml:"max_sq" default:"2" validate:"min=0,max=3"`
	MaxOrder       int    `yaml:"max_order" default:"5" validate:"min=0"`
	SeasonalPeriod int    `yaml:"seasonal_period" default:"12" validate:"min=2"`
	Criterion      string `yaml:"criterion" default:"bic" validate:"oneof=aic aicc bic"`
}

// StoreConfig selects where trained models are kept.
type StoreConfig struct {
	Backend string      `yaml:"backend" default:"file" validate:"oneof=file redis"`
	Dir     string      `yaml:"dir" default:"models" validate:"required_if=Backend file"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig is the connection to the Redis model store.
type RedisConfig struct {
	Addr     string `yaml:"addr" default:"localhost:6379" validate:"required"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0"`
	Prefix   string `yaml:"prefix" default:"pricecast"`
}

// ForecastConfig holds the forecast horizon and interval level defaults.
type ForecastConfig struct {
	Horizon    int     `yaml:"horizon" default:"6" validate:"min=1"`
	Confidence float64 `yaml:"confidence" default:"0.95" validate:"gt=0,lt=1"`
}

// MetricsConfig controls the Prometheus textfile written after a batch.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile" default:"pricecast.prom" validate:"required_if=Enabled true"`
}

// envOverrides are the settings that can be changed through the environment,
// e.g. PRICECAST_STORE_BACKEND=redis.
type envOverrides struct {
	LogLevel        string   `envconfig:"LOG_LEVEL"`
	LogFormat       string   `envconfig:"LOG_FORMAT"`
	Sources         []string `envconfig:"SOURCES"`
	Crops           []string `envconfig:"CROPS"`
	StoreBackend    string   `envconfig:"STORE_BACKEND"`
	StoreDir        string   `envconfig:"STORE_DIR"`
	RedisAddr       string   `envconfig:"REDIS_ADDR"`
	RedisPassword   string   `envconfig:"REDIS_PASSWORD"`
	RedisDB         *int     `envconfig:"REDIS_DB"`
	MetricsEnabled  *bool    `envconfig:"METRICS_ENABLED"`
	MetricsTextfile string   `envconfig:"METRICS_TEXTFILE"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. Keys absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides it with PRICECAST_*
// environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	c.applyEnv(env)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(env envOverrides) {
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		c.Log.Format = env.LogFormat
	}
	if len(env.Sources) > 0 {
		c.Data.Sources = env.Sources
	}
	if len(env.Crops) > 0 {
		c.Data.Crops = env.Crops
	}
	if env.StoreBackend != "" {
		c.Store.Backend = env.StoreBackend
	}
	if env.StoreDir != "" {
		c.Store.Dir = env.StoreDir
	}
	if env.RedisAddr != "" {
		c.Store.Redis.Addr = env.RedisAddr
	}
	if env.RedisPassword != "" {
		c.Store.Redis.Password = env.RedisPassword
	}
	if env.RedisDB != nil {
		c.Store.Redis.DB = *env.RedisDB
	}
	if env.MetricsEnabled != nil {
		c.Metrics.Enabled = *env.MetricsEnabled
	}
	if env.MetricsTextfile != "" {
		c.Metrics.Textfile = env.MetricsTextfile
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validate.Struct(c)
}
