package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophcheck/internal/flagx"
	"github.com/dmitrijs2005/gophcheck/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Keys that are
// absent leave the corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrGRPC *string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP *string         `json:"endpoint_addr_http"`
	ArtifactPath     *string         `json:"artifact_path"`
	DatabaseDSN      *string         `json:"database_dsn"`
	ReloadDebounce   *timex.Duration `json:"reload_debounce"`
	LogLevel         *string         `json:"log_level"`
}

// parseJson loads the JSON file named by -c or -config, if any, into config.
// It panics if the file cannot be read or contains invalid JSON.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrGRPC != nil {
		config.EndpointAddrGRPC = *c.EndpointAddrGRPC
	}
	if c.EndpointAddrHTTP != nil {
		config.EndpointAddrHTTP = *c.EndpointAddrHTTP
	}
	if c.ArtifactPath != nil {
		config.ArtifactPath = *c.ArtifactPath
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.ReloadDebounce != nil {
		config.ReloadDebounce = c.ReloadDebounce.Duration
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
}
