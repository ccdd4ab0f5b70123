package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/chartmotion/internal/server"
	"github.com/matzehuels/chartmotion/pkg/cache"
	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/pipeline"
	"github.com/matzehuels/chartmotion/pkg/session"
)

// Cache backends selectable in the config file.
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the CLI config file:
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[render]
//	formats = ["svg", "json"]
//	background = "#ffffff"
//
//	[serve]
//	addr = ":8080"
//	session_dir = "/var/lib/chartmotion/sessions"
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Render RenderConfig `toml:"render"`
	Serve  ServeConfig  `toml:"serve"`
}

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend string            `toml:"backend"`
	Dir     string            `toml:"dir"`
	Redis   cache.RedisConfig `toml:"redis"`
	Mongo   cache.MongoConfig `toml:"mongo"`
}

// RenderConfig holds defaults for the render and animate commands.
type RenderConfig struct {
	Formats    []string `toml:"formats"`
	Background string   `toml:"background"`
	FPS        int      `toml:"fps"`
}

// ServeConfig holds defaults for the serve command.
type ServeConfig struct {
	Addr string `toml:"addr"`
	// SessionDir persists sessions when set.
	SessionDir string         `toml:"session_dir"`
	SessionTTL chart.Duration `toml:"session_ttl"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Cache:  CacheConfig{Backend: BackendFile},
		Render: RenderConfig{Formats: []string{pipeline.FormatSVG}},
		Serve:  ServeConfig{Addr: server.DefaultAddr, SessionTTL: chart.Duration(session.DefaultTTL)},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults unless required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config values.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = BackendFile
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis.addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Cache.Mongo.URI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.mongo.uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (must be one of: file, none, redis, mongo)", c.Cache.Backend)
	}
	if c.Serve.SessionTTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "serve.session_ttl must not be negative")
	}
	if c.Render.FPS < 0 || c.Render.FPS > chart.MaxFPS {
		return errors.New(errors.ErrCodeInvalidInput, "render.fps must be within 0..%d", chart.MaxFPS)
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	return errors.ValidateColor(c.Render.Background)
}
