// Package sealer builds the encrypted code container shipped to checkers.
//
// It reads raw codes, canonicalizes them, warns about codes that would never
// match a well-formed scan, seals the list and publishes the result to a
// file and optionally to S3 or a presigned URL.
package sealer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophcheck/internal/artifact"
	"github.com/dmitrijs2005/gophcheck/internal/barcode"
	"github.com/dmitrijs2005/gophcheck/internal/filex"
	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/dmitrijs2005/gophcheck/internal/netx"
)

// stdin is a seam for tests.
var stdin io.Reader = os.Stdin

// Report summarizes one run.
type Report struct {
	Codes     int
	Malformed int
	Bytes     int
}

// Run seals cfg.In into cfg.Out and performs the optional uploads.
func Run(ctx context.Context, cfg *Config, log logging.Logger) (Report, error) {
	var rep Report

	prefixes, err := barcode.ParsePrefixes(cfg.Prefixes)
	if err != nil {
		return rep, err
	}

	codes, err := readCodes(cfg.In)
	if err != nil {
		return rep, fmt.Errorf("read codes: %w", err)
	}

	for i, c := range codes {
		codes[i] = barcode.Canonicalize(c)
		if !prefixes.IsWellFormed(codes[i]) {
			rep.Malformed++
			log.Warn(ctx, "malformed code sealed anyway", "line", i+1, "prefix", barcode.PrefixOf(codes[i]))
		}
	}
	rep.Codes = len(codes)

	c, err := artifact.Seal(codes, artifact.SealOptions{Key: cfg.Key, Salt: cfg.Salt})
	if err != nil {
		return rep, fmt.Errorf("seal: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return rep, fmt.Errorf("marshal: %w", err)
	}
	rep.Bytes = len(data)

	if _, err := filex.EnsureParentDir(cfg.Out); err != nil {
		return rep, err
	}
	if err := filex.WriteFileAtomic(cfg.Out, data, 0o644); err != nil {
		return rep, fmt.Errorf("write %s: %w", cfg.Out, err)
	}
	log.Info(ctx, "artifact sealed", "out", cfg.Out, "codes", rep.Codes, "malformed", rep.Malformed, "bytes", rep.Bytes)

	if cfg.S3URL != "" {
		if err := uploadS3(ctx, cfg, data); err != nil {
			return rep, err
		}
		log.Info(ctx, "artifact uploaded", "target", cfg.S3URL)
	}

	if cfg.PutURL != "" {
		if err := netx.Upload(ctx, nil, cfg.PutURL, data); err != nil {
			return rep, err
		}
		log.Info(ctx, "artifact uploaded", "target", "presigned url")
	}

	return rep, nil
}

func readCodes(path string) ([]string, error) {
	if path == "-" {
		return artifact.ReadLines(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return artifact.ReadLines(f)
}
