// Package config loads pipeline configuration from a TOML file and applies
// defaults for every unset field.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/PeterZhouSZ/string2shape/pkg/errors"
)

// Config is the full pipeline configuration.
type Config struct {
	Collision CollisionConfig `toml:"collision"`
	Variation VariationConfig `toml:"variation"`
	Repair    RepairConfig    `toml:"repair"`
	Cache     CacheConfig     `toml:"cache"`
	Dataset   DatasetConfig   `toml:"dataset"`
	Server    ServerConfig    `toml:"server"`
}

// CollisionConfig tunes collision-graph construction.
type CollisionConfig struct {
	// Epsilon is the contact tolerance of the string entry points.
	Epsilon float32 `toml:"epsilon"`
	// VariationEpsilon is the looser tolerance used when validating
	// generated or repaired geometry.
	VariationEpsilon float32 `toml:"variation_epsilon"`
	// Grid resolution of the broad phase, per axis.
	ResX int `toml:"res_x"`
	ResY int `toml:"res_y"`
	ResZ int `toml:"res_z"`
	// Workers caps narrow-phase parallelism. Zero means GOMAXPROCS.
	Workers int `toml:"workers"`
}

// VariationConfig tunes the variation generator.
type VariationConfig struct {
	Count                int  `toml:"count"`
	MaxAttempts          int  `toml:"max_attempts"`
	WriteVariationGraphs bool `toml:"write_variation_graphs"`
	WriteVariations      bool `toml:"write_variations"`
	FixVariation         bool `toml:"fix_variation"`
	// Seeds for the deterministic RNG. Both zero means seed from the
	// wall clock.
	Seed1 uint32 `toml:"seed1"`
	Seed2 uint32 `toml:"seed2"`
}

// RepairConfig tunes the iterative repair loop.
type RepairConfig struct {
	// MaxPasses caps the number of correction passes.
	MaxPasses int `toml:"max_passes"`
}

// CacheConfig selects and configures the result cache backend.
type CacheConfig struct {
	// Backend is one of "null", "file", or "redis".
	Backend string `toml:"backend"`
	// Dir is the file backend's directory.
	Dir string `toml:"dir"`
	// Redis connection settings.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// DatasetConfig selects and configures the dataset store backend.
type DatasetConfig struct {
	// Backend is one of "jsonl" or "mongo".
	Backend string `toml:"backend"`
	// Path is the jsonl backend's file.
	Path string `toml:"path"`
	// Mongo connection settings.
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Collision: CollisionConfig{
			Epsilon:          0.01,
			VariationEpsilon: 0.02,
			ResX:             24,
			ResY:             24,
			ResZ:             24,
		},
		Variation: VariationConfig{
			Count:           10,
			WriteVariations: true,
		},
		Repair: RepairConfig{
			MaxPasses: 128,
		},
		Cache: CacheConfig{
			Backend: "null",
			Dir:     ".string2shape-cache",
		},
		Dataset: DatasetConfig{
			Backend: "jsonl",
			Path:    "structures.jsonl",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a TOML configuration file on top of the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading config file %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing config file %s", path)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Collision.Epsilon < 0 || c.Collision.VariationEpsilon < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "epsilon must be non-negative")
	}
	if c.Collision.ResX < 1 || c.Collision.ResY < 1 || c.Collision.ResZ < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "grid resolution must be at least 1 per axis")
	}
	if c.Repair.MaxPasses < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "repair max_passes must be at least 1")
	}
	switch c.Cache.Backend {
	case "null", "file", "redis":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Dataset.Backend {
	case "jsonl", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown dataset backend %q", c.Dataset.Backend)
	}
	return nil
}
