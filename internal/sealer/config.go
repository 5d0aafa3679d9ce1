package sealer

import (
	"flag"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophcheck/internal/common"
	"github.com/dmitrijs2005/gophcheck/internal/flagx"
)

// Config holds the sealer's settings.
type Config struct {
	In             string
	Out            string
	Key            string
	Salt           string
	Prefixes       []string
	S3URL          string
	PutURL         string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string
	LogLevel       string
}

func (c *Config) LoadDefaults() {
	c.In = "-"
	c.Out = common.DefaultArtifactName
	c.Key = common.DefaultCipherKey
	c.Salt = common.DefaultSalt
	c.Prefixes = []string{"7561097010000002=Type-2"}
	c.S3Region = "us-east-1"
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)
	return cfg
}

var knownFlags = []string{"-in", "-out", "-key", "-salt", "-p", "-s3", "-put",
	"-s3-region", "-s3-access-key", "-s3-secret-key", "-s3-endpoint", "-log"}

// parseFlags populates cfg from command-line flags. It panics on malformed
// values.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("sealer", flag.ContinueOnError)

	fs.StringVar(&cfg.In, "in", cfg.In, "raw code list, one per line (- for stdin)")
	fs.StringVar(&cfg.Out, "out", cfg.Out, "sealed artifact path")
	fs.StringVar(&cfg.Key, "key", cfg.Key, "database key")
	fs.StringVar(&cfg.Salt, "salt", cfg.Salt, "record salt")
	prefixes := fs.String("p", strings.Join(cfg.Prefixes, ","), "comma-separated prefix=label pairs used to vet codes")
	fs.StringVar(&cfg.S3URL, "s3", cfg.S3URL, "also upload to s3://bucket/key")
	fs.StringVar(&cfg.PutURL, "put", cfg.PutURL, "also PUT to this (presigned) URL")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3AccessKey, "s3-access-key", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "s3-secret-key", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "S3-compatible base endpoint")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Prefixes = nil
	for _, p := range strings.Split(*prefixes, ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.Prefixes = append(cfg.Prefixes, p)
		}
	}
}
