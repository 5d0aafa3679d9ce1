// Package loader turns a fetched artifact into the in-memory set of genuine
// codes.
//
// Two strategies exist. EncryptedLoader reads the sealed container and
// decrypts every record locally; PlaintextLoader reads a newline-separated
// list. Both build a barcode.Database that is handed out only when loading
// finished: a failed load never exposes a partial database.
package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophcheck/internal/artifact"
	"github.com/dmitrijs2005/gophcheck/internal/barcode"
	"github.com/dmitrijs2005/gophcheck/internal/client/client"
	"github.com/dmitrijs2005/gophcheck/internal/common"
	"github.com/dmitrijs2005/gophcheck/internal/cryptox"
	"github.com/dmitrijs2005/gophcheck/internal/logging"
)

// Loader builds the genuine-code database.
type Loader interface {
	Load(ctx context.Context) (*barcode.Database, Stats, error)
}

// Stats describes one load. Valid counts accepted records, so duplicates are
// included; Database.Len is the number of distinct codes.
type Stats struct {
	Total     int
	Valid     int
	Invalid   int
	PerPrefix map[string]int
}

// decryptFn is a test seam.
var decryptFn = cryptox.Decrypt

// EncryptedLoader loads a sealed container.
type EncryptedLoader struct {
	fetcher client.Fetcher
	key     string
	salt    string
	log     logging.Logger
}

func NewEncryptedLoader(fetcher client.Fetcher, key, salt string, log logging.Logger) *EncryptedLoader {
	return &EncryptedLoader{fetcher: fetcher, key: key, salt: salt, log: log}
}

func (l *EncryptedLoader) Load(ctx context.Context) (*barcode.Database, Stats, error) {
	data, err := l.fetcher.Fetch(ctx)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: fetch: %v", common.ErrDatabaseUnavailable, err)
	}

	c, err := artifact.Parse(data)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %v", common.ErrDatabaseUnavailable, err)
	}

	if len(c.KeyCheck) > 0 && !cryptox.VerifyKeyCheck([]byte(l.key), c.KeyCheckSalt, c.KeyCheck) {
		l.log.Warn(ctx, "database key does not match the artifact key check")
	}

	b := barcode.NewBuilder(len(c.Records))
	stats := Stats{Total: len(c.Records)}

	for i, rec := range c.Records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, Stats{}, fmt.Errorf("%w: %v", common.ErrDatabaseUnavailable, err)
			}
		}

		plain, err := decryptFn(rec, l.key)
		if err != nil {
			stats.Invalid++
			l.log.Debug(ctx, "record skipped", "index", i, "error", err)
			continue
		}

		// Decrypted codes are taken as they are; only case is normalized.
		code, ok := strings.CutPrefix(plain, l.salt)
		if !ok || len(code) != barcode.CodeLength || !b.Add(code) {
			stats.Invalid++
			l.log.Debug(ctx, "record skipped", "index", i, "reason", "unexpected plaintext")
			continue
		}
		stats.Valid++
	}

	db := b.Build()
	stats.PerPrefix = db.PerPrefix()
	l.logStats(ctx, stats, db)

	return db, stats, nil
}

func (l *EncryptedLoader) logStats(ctx context.Context, s Stats, db *barcode.Database) {
	if s.Invalid > 0 {
		l.log.Warn(ctx, "some records could not be decrypted", "invalid", s.Invalid, "total", s.Total)
	}
	l.log.Info(ctx, "database loaded", "valid", s.Valid, "distinct", db.Len(), "invalid", s.Invalid)
}

// PlaintextLoader loads a newline-separated code list.
type PlaintextLoader struct {
	fetcher client.Fetcher
	log     logging.Logger
}

func NewPlaintextLoader(fetcher client.Fetcher, log logging.Logger) *PlaintextLoader {
	return &PlaintextLoader{fetcher: fetcher, log: log}
}

func (l *PlaintextLoader) Load(ctx context.Context) (*barcode.Database, Stats, error) {
	data, err := l.fetcher.Fetch(ctx)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: fetch: %v", common.ErrDatabaseUnavailable, err)
	}

	lines, err := artifact.ReadLines(strings.NewReader(string(data)))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %v", common.ErrDatabaseUnavailable, err)
	}

	b := barcode.NewBuilder(len(lines))
	stats := Stats{Total: len(lines)}
	for _, line := range lines {
		if b.Add(line) {
			stats.Valid++
		} else {
			stats.Invalid++
		}
	}

	db := b.Build()
	stats.PerPrefix = db.PerPrefix()
	l.log.Info(ctx, "database loaded", "valid", stats.Valid, "distinct", db.Len(), "invalid", stats.Invalid)

	return db, stats, nil
}
