// Package config provides configuration management for liveserve using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// Configuration sources, highest priority first: command-line flags,
// LIVESERVE_-prefixed environment variables, and a .liveserve.yml file
// in the working directory. Validation rejects broken values before the
// server ever binds a port.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	serrors "github.com/liveserve/liveserve/internal/errors"
)

// DefaultPort is the port tried first when none is configured. Only
// this port participates in bind fallback scanning.
const DefaultPort = 3000

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port    int    `yaml:"port"`
	BaseDir string `yaml:"base_dir"`
	Diff    bool   `yaml:"diff"`
	NoOpen  bool   `yaml:"no_open"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load builds a Config from viper's merged sources and validates it.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, serrors.Config("unmarshaling configuration", err)
	}

	// Viper's Unmarshal matches field names, not yaml tags, and can
	// miss values set only through BindPFlag; read those keys directly.
	if viper.IsSet("server.port") {
		config.Server.Port = viper.GetInt("server.port")
	}
	if viper.IsSet("server.base_dir") {
		config.Server.BaseDir = viper.GetString("server.base_dir")
	}
	if viper.IsSet("server.diff") {
		config.Server.Diff = viper.GetBool("server.diff")
	}
	if viper.IsSet("server.no_open") {
		config.Server.NoOpen = viper.GetBool("server.no_open")
	}

	if config.Server.Port == 0 {
		config.Server.Port = DefaultPort
	}
	if config.Server.BaseDir == "" {
		config.Server.BaseDir = "./"
	}

	if viper.IsSet("log.level") {
		config.Log.Level = viper.GetString("log.level")
	}
	if viper.IsSet("log.format") {
		config.Log.Format = viper.GetString("log.format")
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(config *Config) error {
	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return serrors.Config(
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Server.Port), nil)
	}

	switch config.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return serrors.Config(
			fmt.Sprintf("unknown log level %q", config.Log.Level), nil)
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return serrors.Config(
			fmt.Sprintf("unknown log format %q", config.Log.Format), nil)
	}

	if strings.TrimSpace(config.Server.BaseDir) == "" {
		return serrors.Config("base directory is empty", nil)
	}

	return nil
}

// ResolveBaseDir turns the configured base directory into an absolute,
// symlink-resolved path and requires it to be an existing directory.
// Failure here is startup-fatal: the server must not begin serving with
// a broken root.
func ResolveBaseDir(baseDir string) (string, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", serrors.Config(fmt.Sprintf("resolving base directory %q", baseDir), err)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", serrors.Config(fmt.Sprintf("resolving base directory %q", baseDir), err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", serrors.Config(fmt.Sprintf("resolving base directory %q", baseDir), err)
	}
	if !info.IsDir() {
		return "", serrors.Config(fmt.Sprintf("base directory %q is not a directory", baseDir), nil)
	}

	return canonical, nil
}
