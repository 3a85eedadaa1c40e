// Package config loads daemon configuration from YAML with environment
// variable overrides.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Limits holds the default resource limits applied to a command invocation
// when the caller does not specify its own.
type Limits struct {
	WallMs  int64 `yaml:"wall_ms"`
	MemKB   int64 `yaml:"mem_kb"`
	FsizeKB int64 `yaml:"fsize_kb"`
	NoFile  int64 `yaml:"nofile"`
}

// GRPC holds the gRPC front-door listener configuration.
type GRPC struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Config is the daemon's full runtime configuration.
type Config struct {
	Listen                string `yaml:"listen"`
	APIKey                string `yaml:"api_key"`
	DBPath                string `yaml:"db_path"`
	WorkspaceRoot         string `yaml:"workspace_root"`
	SnapshotRoot          string `yaml:"snapshot_root"`
	SessionIdleTTLSeconds int    `yaml:"session_idle_ttl_seconds"`
	SweepIntervalSeconds  int    `yaml:"sweep_interval_seconds"`
	DestroyGraceMs        int64  `yaml:"destroy_grace_ms"`
	MaxUploadBytes        int64  `yaml:"max_upload_bytes"`
	MaxOutputBytes        int64  `yaml:"max_output_bytes"`
	MaxReadBytes          int64  `yaml:"max_read_bytes"`
	ExecInlineMaxBytes    int    `yaml:"exec_inline_max_bytes"`
	Defaults              Limits `yaml:"defaults"`
	GRPC                  GRPC   `yaml:"grpc"`
}

// Default returns the daemon's configuration before any YAML file or
// environment override is applied.
func Default() Config {
	return Config{
		Listen:                "127.0.0.1:8080",
		DBPath:                "./boxd.db",
		WorkspaceRoot:         "./data/workspaces",
		SnapshotRoot:          "./data/snapshots",
		SessionIdleTTLSeconds: 1800,
		SweepIntervalSeconds:  30,
		DestroyGraceMs:        5000,
		MaxUploadBytes:        10 << 20,
		MaxOutputBytes:        5 << 20,
		MaxReadBytes:          64 << 20,
		ExecInlineMaxBytes:    4096,
		Defaults: Limits{
			WallMs:  300000,
			MemKB:   2097152,
			FsizeKB: 1048576,
			NoFile:  256,
		},
		GRPC: GRPC{
			Enabled: true,
			Listen:  "127.0.0.1:8090",
		},
	}
}

// Load reads configuration from yamlPath (if it exists), applies defaults for
// anything unset, then lets BOXD_* environment variables override the
// result.
func Load(yamlPath string) (*Config, error) {
	def := Default()
	cfg := &def

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BOXD_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("BOXD_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("BOXD_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("BOXD_WORKSPACE_ROOT"); v != "" {
		cfg.WorkspaceRoot = v
	}
	if v := os.Getenv("BOXD_SNAPSHOT_ROOT"); v != "" {
		cfg.SnapshotRoot = v
	}
	if v := os.Getenv("BOXD_SESSION_IDLE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SessionIdleTTLSeconds = n
		}
	}
	if v := os.Getenv("BOXD_SWEEP_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SweepIntervalSeconds = n
		}
	}
	if v := os.Getenv("BOXD_DESTROY_GRACE_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.DestroyGraceMs = n
		}
	}
	if v := os.Getenv("BOXD_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("BOXD_MAX_READ_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxReadBytes = n
		}
	}
	if v := os.Getenv("BOXD_DEFAULT_WALL_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Defaults.WallMs = n
		}
	}
	if v := os.Getenv("BOXD_DEFAULT_MEM_KB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Defaults.MemKB = n
		}
	}
	if v := os.Getenv("BOXD_GRPC_LISTEN"); v != "" {
		cfg.GRPC.Listen = v
	}
	if v := os.Getenv("BOXD_GRPC_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.GRPC.Enabled = b
		}
	}
}
