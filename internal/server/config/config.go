// Package config handles configuration for the artifact server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/common"
)

// Config holds runtime settings for the artifact server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC Artifacts service.
//   - EndpointAddrHTTP: bind address for /barcodes.json, /healthz and /metrics.
//   - ArtifactPath: sealed container served to checkers; reloaded on change.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty disables analytics ingestion.
//   - ReloadDebounce: quiet period after a file event before the artifact is re-read.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrGRPC string
	EndpointAddrHTTP string
	ArtifactPath     string
	DatabaseDSN      string
	ReloadDebounce   time.Duration
	LogLevel         string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.ArtifactPath = common.DefaultArtifactName
	c.DatabaseDSN = ""
	c.ReloadDebounce = 500 * time.Millisecond
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
