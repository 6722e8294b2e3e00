package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zurihub/places-cli/internal/geo"
	"github.com/zurihub/places-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Region   RegionConfig   `yaml:"region" mapstructure:"region"`
	Grid     GridConfig     `yaml:"grid" mapstructure:"grid"`
	Provider ProviderConfig `yaml:"provider" mapstructure:"provider"`
	Catalog  CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// RegionConfig names the canvassed region and its bounding box.
type RegionConfig struct {
	Name         string     `yaml:"name" mapstructure:"name"`
	Bounds       geo.Bounds `yaml:"bounds" mapstructure:"bounds"`
	BoundaryFile string     `yaml:"boundary_file" mapstructure:"boundary_file"`
}

// GridConfig configures grid generation.
type GridConfig struct {
	StepKM float64 `yaml:"step_km" mapstructure:"step_km"`
}

// ProviderConfig configures the place lookup provider.
type ProviderConfig struct {
	APIKey        string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	Language      string  `yaml:"language" mapstructure:"language"`
	Region        string  `yaml:"region" mapstructure:"region"`
	RadiusMeters  int     `yaml:"radius_meters" mapstructure:"radius_meters"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Concurrency   int     `yaml:"concurrency" mapstructure:"concurrency"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PhotoMaxWidth int     `yaml:"photo_max_width" mapstructure:"photo_max_width"`
	PauseSecs     int     `yaml:"rate_limit_pause_secs" mapstructure:"rate_limit_pause_secs"`
}

// CatalogConfig points at the category catalog file. An empty path
// selects the built-in catalog.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig configures snapshot export.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLACES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults: canton of Zurich bounding box, 3km grid. Keys that default
	// to empty still need a SetDefault: viper's Unmarshal only visits known
	// keys, and AutomaticEnv alone does not register one.
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("region.boundary_file", "")
	v.SetDefault("catalog.path", "")
	v.SetDefault("store.pool.max_conns", 0)
	v.SetDefault("store.pool.min_conns", 0)
	v.SetDefault("region.name", "zuerich")
	v.SetDefault("region.bounds.sw_lat", 47.16)
	v.SetDefault("region.bounds.sw_lng", 8.36)
	v.SetDefault("region.bounds.ne_lat", 47.69)
	v.SetDefault("region.bounds.ne_lng", 8.98)
	v.SetDefault("grid.step_km", 3.0)
	v.SetDefault("provider.language", "de")
	v.SetDefault("provider.region", "CH")
	v.SetDefault("provider.radius_meters", 2500)
	v.SetDefault("provider.rate_limit", 10.0)
	v.SetDefault("provider.concurrency", 4)
	v.SetDefault("provider.timeout_secs", 30)
	v.SetDefault("provider.photo_max_width", 400)
	v.SetDefault("provider.rate_limit_pause_secs", 5)
	v.SetDefault("output.dir", "data")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "data/runs.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the parts of the configuration every command depends on.
func (c *Config) Validate() error {
	if err := c.Region.Bounds.Validate(); err != nil {
		return eris.Wrap(err, "config: region bounds")
	}
	if c.Grid.StepKM <= 0 {
		return eris.Errorf("config: grid step must be positive, got %g", c.Grid.StepKM)
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
