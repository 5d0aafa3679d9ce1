package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/flagx"
)

var knownFlags = []string{"-s", "-f", "-k", "-salt", "-p", "-d", "-scanner", "-j", "-a", "-i", "-l", "-log"}

// parseFlags populates Config fields from command-line flags. Only the flags
// listed in knownFlags are considered (see flagx.FilterArgs). Durations are
// taken from -d and -i only when given, so finer values from the JSON file
// survive. It panics on malformed values.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Source, "s", cfg.Source, "artifact source")
	fs.StringVar(&cfg.Format, "f", cfg.Format, "artifact format: encrypted or plaintext")
	fs.StringVar(&cfg.Key, "k", cfg.Key, "database key (empty: prompt)")
	fs.StringVar(&cfg.Salt, "salt", cfg.Salt, "record salt")
	prefixes := fs.String("p", strings.Join(cfg.Prefixes, ","), "comma-separated prefix=label pairs")
	debounce := fs.Int("d", int(cfg.DebounceWindow.Milliseconds()), "debounce window (in milliseconds)")
	fs.StringVar(&cfg.ScannerPath, "scanner", cfg.ScannerPath, "scanner device or pipe")
	fs.StringVar(&cfg.JournalPath, "j", cfg.JournalPath, "analytics journal path")
	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "analytics server address and port")
	interval := fs.Int("i", int(cfg.ForwardInterval.Seconds()), "forward interval (in seconds)")
	fs.StringVar(&cfg.Location, "l", cfg.Location, "location reported with events")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Prefixes = splitList(*prefixes)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			cfg.DebounceWindow = time.Duration(*debounce) * time.Millisecond
		case "i":
			cfg.ForwardInterval = time.Duration(*interval) * time.Second
		}
	})
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
