package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-h string   HTTP bind address (e.g., ":8080")
//	-f string   sealed artifact path
//	-d string   PostgreSQL DSN
//	-r int      reload debounce, milliseconds
//	-log string log level
//
// Only the flags above are parsed (see flagx.FilterArgs). It panics on
// malformed values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-h", "-f", "-d", "-r", "-log"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "h", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.ArtifactPath, "f", config.ArtifactPath, "sealed artifact path")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	reloadDebounce := fs.Int("r", int(config.ReloadDebounce.Milliseconds()), "reload debounce (in milliseconds)")
	fs.StringVar(&config.LogLevel, "log", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "r" {
			config.ReloadDebounce = time.Duration(*reloadDebounce) * time.Millisecond
		}
	})
}
