package config

import (
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/common"
)

const (
	FormatEncrypted = "encrypted"
	FormatPlaintext = "plaintext"
)

// Config holds runtime settings for the gophcheck terminal client.
type Config struct {
	// Source is where the database artifact is fetched from: a path,
	// file://, http(s)://, s3://bucket/key or grpc://host:port.
	Source string
	// Format is FormatEncrypted or FormatPlaintext.
	Format string
	// Key is the pre-shared passphrase; empty means ask on the terminal.
	Key  string
	Salt string
	// Prefixes are "prefix=label" pairs.
	Prefixes       []string
	DebounceWindow time.Duration

	ScannerPath     string
	ScannerCooldown time.Duration

	JournalPath string
	// ServerAddr is the analytics gRPC endpoint; empty disables forwarding.
	ServerAddr      string
	ForwardInterval time.Duration
	Location        string

	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string

	HTTPTimeout time.Duration
	LogLevel    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Source = common.DefaultArtifactName
	c.Format = FormatEncrypted
	c.Key = common.DefaultCipherKey
	c.Salt = common.DefaultSalt
	c.Prefixes = []string{"7561097010000002=Type-2"}
	c.DebounceWindow = 300 * time.Millisecond
	c.ScannerCooldown = 2 * time.Second
	c.JournalPath = "gophcheck.db"
	c.ForwardInterval = 10 * time.Second
	c.HTTPTimeout = 30 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
