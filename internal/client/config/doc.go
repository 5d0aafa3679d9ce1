// Package config loads runtime configuration for the gophcheck terminal
// client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   artifact source (path, file://, http(s)://, s3://, grpc://)
//	-f string   artifact format: encrypted or plaintext
//	-k string   database key (empty: prompt on the terminal)
//	-salt string
//	-p string   comma-separated prefix=label pairs
//	-d int      debounce window (milliseconds)
//	-scanner string  scanner device or pipe
//	-j string   analytics journal path
//	-a string   analytics server host:port (empty: no forwarding)
//	-i int      forward interval (seconds)
//	-l string   location reported with analytics events
//	-log string log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "300ms" or
// integer nanoseconds. Absent keys keep their current value:
//
//	{
//	  "source": "https://cdn.example.com/barcodes.json",
//	  "format": "encrypted",
//	  "key": "MySecretAESKey123",
//	  "salt": "MyUniqueSalt123",
//	  "prefixes": ["7561097010000002=Type-2"],
//	  "debounce_window": "300ms",
//	  "scanner_path": "/dev/hidraw0",
//	  "scanner_cooldown": "2s",
//	  "journal_path": "gophcheck.db",
//	  "server_addr": "127.0.0.1:50051",
//	  "forward_interval": "10s",
//	  "location": "store-17",
//	  "s3": {"region": "eu-central-1", "access_key": "...", "secret_key": "...", "base_endpoint": "http://minio:9000"},
//	  "http_timeout": "30s",
//	  "log_level": "info"
//	}
package config
