// Package config handles server configuration loading.
package config

// Config holds all server settings.
type Config struct {
	Listen          string        `yaml:"listen"`
	MapPath         string        `yaml:"map_path"`
	DescriptionPath string        `yaml:"description_path"`
	StatLimit       uint16        `yaml:"stat_limit"`
	InitialPoints   uint16        `yaml:"initial_points"`
	MajorRev        uint8         `yaml:"major_rev"`
	MinorRev        uint8         `yaml:"minor_rev"`
	CmdPrefix       string        `yaml:"cmd_prefix"`
	Logging         LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values. MapPath and
// DescriptionPath have no defaults; startup fails without them.
func Default() *Config {
	return &Config{
		Listen:        "0.0.0.0:5051",
		StatLimit:     65535,
		InitialPoints: 100,
		MajorRev:      2,
		MinorRev:      3,
		CmdPrefix:     "!",
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
