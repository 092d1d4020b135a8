package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/andrewmd5/wasihost/internal/pathmap"
	"github.com/andrewmd5/wasihost/wasihost"
)

// fileConfig is the on-disk shape of a wasihost.Config: wasihost.Config
// itself carries io.Reader/io.Writer/*zap.Logger fields that have no
// sensible JSON encoding, so the CLI works against this JSON-friendly
// mirror and builds the real Config from it.
type fileConfig struct {
	HostRoot string `json:"host_root"`
	Preopens []struct {
		Guest  string `json:"guest"`
		Host   string `json:"host"`
		Access string `json:"access"` // "r", "w", or "rw"
	} `json:"preopens"`
	MaxOpenFiles      int   `json:"max_open_files"`
	AllowFileCreation *bool `json:"allow_file_creation"`
	AllowFileDeletion *bool `json:"allow_file_deletion"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func (c *fileConfig) toWasihostConfig() (wasihost.Config, error) {
	if c.HostRoot == "" {
		return wasihost.Config{}, fmt.Errorf("config has no host_root")
	}
	if len(c.Preopens) == 0 {
		return wasihost.Config{}, fmt.Errorf("config has no preopens")
	}
	cfg := wasihost.Config{
		HostRootDirectory: c.HostRoot,
		MaxOpenFiles:      c.MaxOpenFiles,
		AllowFileCreation: c.AllowFileCreation,
		AllowFileDeletion: c.AllowFileDeletion,
	}
	for _, p := range c.Preopens {
		access, err := parseAccess(p.Access)
		if err != nil {
			return wasihost.Config{}, fmt.Errorf("preopen %q: %w", p.Guest, err)
		}
		cfg.Preopens = append(cfg.Preopens, wasihost.Preopen{
			GuestPath: p.Guest,
			HostPath:  p.Host,
			Access:    access,
		})
	}
	return cfg, nil
}

// buildHost loads, converts, and constructs a Host from a config file path,
// the shared first step of every subcommand.
func buildHost(path string) (*wasihost.Host, error) {
	fc, err := loadFileConfig(path)
	if err != nil {
		return nil, err
	}
	cfg, err := fc.toWasihostConfig()
	if err != nil {
		return nil, err
	}
	return wasihost.New(cfg)
}

func parseAccess(s string) (pathmap.AccessMode, error) {
	switch s {
	case "", "rw":
		return pathmap.AccessReadWrite, nil
	case "r":
		return pathmap.AccessRead, nil
	case "w":
		return pathmap.AccessWrite, nil
	default:
		return 0, fmt.Errorf("unknown access mode %q, want one of r, w, rw", s)
	}
}
