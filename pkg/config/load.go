package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < environment.
// path may be empty, in which case ./lurkd.yaml is used when present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat("./lurkd.yaml"); err == nil {
			path = "./lurkd.yaml"
		}
	}

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the required file paths are set.
func (c *Config) Validate() error {
	if c.MapPath == "" {
		return fmt.Errorf("map path must be set (map_path or MAP_FILEPATH)")
	}
	if c.DescriptionPath == "" {
		return fmt.Errorf("description path must be set (description_path or DESC_FILEPATH)")
	}
	return nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnv overlays settings from the environment.
func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("LISTEN_ADDRESS"); ok {
		cfg.Listen = v
	}
	if v, ok := os.LookupEnv("MAP_FILEPATH"); ok {
		cfg.MapPath = v
	}
	if v, ok := os.LookupEnv("DESC_FILEPATH"); ok {
		cfg.DescriptionPath = v
	}
	if v, ok := os.LookupEnv("CMD_PREFIX"); ok {
		cfg.CmdPrefix = v
	}
	if v, ok := os.LookupEnv("STAT_LIMIT"); ok {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("parsing STAT_LIMIT: %w", err)
		}
		cfg.StatLimit = uint16(n)
	}
	if v, ok := os.LookupEnv("INITIAL_POINTS"); ok {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("parsing INITIAL_POINTS: %w", err)
		}
		cfg.InitialPoints = uint16(n)
	}
	if v, ok := os.LookupEnv("MAJOR_REV"); ok {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("parsing MAJOR_REV: %w", err)
		}
		cfg.MajorRev = uint8(n)
	}
	if v, ok := os.LookupEnv("MINOR_REV"); ok {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("parsing MINOR_REV: %w", err)
		}
		cfg.MinorRev = uint8(n)
	}
	return nil
}
