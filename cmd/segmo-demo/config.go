package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	segmo "github.com/gogpu/segmo"
)

// Config is the demo binary's YAML-loaded configuration, in the
// teacher pack's nested-struct/Load/setDefaults/applyEnvOverrides idiom
// (iluha78-FD/internal/config/config.go).
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Model      ModelConfig      `yaml:"model"`
	Background BackgroundConfig `yaml:"background"`
	Quality    QualityConfig    `yaml:"quality"`
	MinIO      MinIOConfig      `yaml:"minio"`
	NATS       NATSConfig       `yaml:"nats"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type ModelConfig struct {
	Path       string `yaml:"path"`
	InputName  string `yaml:"input_name"`
	OutputName string `yaml:"output_name"`
	Classes    int    `yaml:"classes"`
	UseWorker  bool   `yaml:"use_worker"`
}

type BackgroundConfig struct {
	// Kind is one of "none", "blur", "image", "color".
	Kind       string `yaml:"kind"`
	BlurRadius int    `yaml:"blur_radius"`
	ImageKey   string `yaml:"image_key"`
	Color      string `yaml:"color"` // "RRGGBB" hex
}

type QualityConfig struct {
	// Label is one of "low", "medium", "high", "ultra".
	Label    string `yaml:"label"`
	Adaptive bool   `yaml:"adaptive"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig reads path, applies SEGMO_*-prefixed environment overrides,
// and fills unset fields with defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Model.InputName == "" {
		cfg.Model.InputName = "input"
	}
	if cfg.Model.OutputName == "" {
		cfg.Model.OutputName = "output"
	}
	if cfg.Model.Classes == 0 {
		cfg.Model.Classes = 1
	}
	if cfg.Background.Kind == "" {
		cfg.Background.Kind = "blur"
	}
	if cfg.Background.Color == "" {
		cfg.Background.Color = "00FF00"
	}
	if cfg.Quality.Label == "" {
		cfg.Quality.Label = "high"
	}
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = "segmo.diagnostics"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEGMO_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SEGMO_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("SEGMO_MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	if v := os.Getenv("SEGMO_BACKGROUND_KIND"); v != "" {
		cfg.Background.Kind = v
	}
	if v := os.Getenv("SEGMO_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("SEGMO_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("SEGMO_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("SEGMO_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("SEGMO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// qualityLabel maps the YAML label string to segmo.QualityLabel.
func qualityLabel(s string) segmo.QualityLabel {
	switch s {
	case "ultra":
		return segmo.QualityUltra
	case "high":
		return segmo.QualityHigh
	case "medium":
		return segmo.QualityMedium
	case "low":
		return segmo.QualityLow
	default:
		return segmo.QualityHigh
	}
}

// backgroundColor parses a "RRGGBB" hex string into the 0xRRGGBB form
// BackgroundMode.Color expects.
func backgroundColor(hex string) uint32 {
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0x00FF00
	}
	return uint32(v)
}
