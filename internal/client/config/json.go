package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/flagx"
	"github.com/dmitrijs2005/gophcheck/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// tell an absent key from an empty value.
type JsonConfig struct {
	Source          *string         `json:"source"`
	Format          *string         `json:"format"`
	Key             *string         `json:"key"`
	Salt            *string         `json:"salt"`
	Prefixes        []string        `json:"prefixes"`
	DebounceWindow  *timex.Duration `json:"debounce_window"`
	ScannerPath     *string         `json:"scanner_path"`
	ScannerCooldown *timex.Duration `json:"scanner_cooldown"`
	JournalPath     *string         `json:"journal_path"`
	ServerAddr      *string         `json:"server_addr"`
	ForwardInterval *timex.Duration `json:"forward_interval"`
	Location        *string         `json:"location"`
	S3              *struct {
		Region       string `json:"region"`
		AccessKey    string `json:"access_key"`
		SecretKey    string `json:"secret_key"`
		BaseEndpoint string `json:"base_endpoint"`
	} `json:"s3"`
	HTTPTimeout *timex.Duration `json:"http_timeout"`
	LogLevel    *string         `json:"log_level"`
}

// parseJson overlays cfg with the JSON file named by -c/-config, if any.
// It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.Source, jc.Source)
	setString(&cfg.Format, jc.Format)
	setString(&cfg.Key, jc.Key)
	setString(&cfg.Salt, jc.Salt)
	if jc.Prefixes != nil {
		cfg.Prefixes = jc.Prefixes
	}
	setDuration(&cfg.DebounceWindow, jc.DebounceWindow)
	setString(&cfg.ScannerPath, jc.ScannerPath)
	setDuration(&cfg.ScannerCooldown, jc.ScannerCooldown)
	setString(&cfg.JournalPath, jc.JournalPath)
	setString(&cfg.ServerAddr, jc.ServerAddr)
	setDuration(&cfg.ForwardInterval, jc.ForwardInterval)
	setString(&cfg.Location, jc.Location)
	if jc.S3 != nil {
		cfg.S3Region = jc.S3.Region
		cfg.S3AccessKey = jc.S3.AccessKey
		cfg.S3SecretKey = jc.S3.SecretKey
		cfg.S3BaseEndpoint = jc.S3.BaseEndpoint
	}
	setDuration(&cfg.HTTPTimeout, jc.HTTPTimeout)
	setString(&cfg.LogLevel, jc.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
