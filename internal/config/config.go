package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen        string  `yaml:"listen"`
	DBPath        string  `yaml:"db_path"`
	RetentionDays int     `yaml:"retention_days"`
	WatchPath     string  `yaml:"watch_path"`
	SyncMarker    string  `yaml:"sync_marker"`
	MsPerPixel    float64 `yaml:"ms_per_pixel"`
	MaxUploadMB   int64   `yaml:"max_upload_mb"`
	LogLevel      string  `yaml:"log_level"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		// Missing config file: run on defaults.
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./data/logview.db"
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	if cfg.SyncMarker == "" {
		cfg.SyncMarker = "/sync"
	}
	if cfg.MsPerPixel <= 0 {
		cfg.MsPerPixel = 10
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 64
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return &cfg, nil
}
