package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gophcheck/internal/common"
)

// Fetcher retrieves the raw artifact bytes.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// S3Options carries the object storage settings used for s3:// sources.
type S3Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// Options configures NewFetcher.
type Options struct {
	HTTPClient *http.Client
	S3         S3Options
}

// NewFetcher builds a Fetcher for source:
//
//	/path/barcodes.json, file:///path/barcodes.json  local file
//	http://..., https://...                          HTTP GET
//	s3://bucket/key                                  S3 GetObject
//	grpc://host:port                                 gophcheck.v1.Artifacts/Get
//
// The returned closer releases connections and is never nil.
func NewFetcher(source string, opts Options) (Fetcher, func() error, error) {
	noop := func() error { return nil }

	if source == "" {
		return nil, noop, fmt.Errorf("%w: empty source", common.ErrUnsupportedSource)
	}
	if !strings.Contains(source, "://") {
		return &FileFetcher{Path: source}, noop, nil
	}

	u, err := url.Parse(source)
	if err != nil {
		return nil, noop, fmt.Errorf("%w: %v", common.ErrUnsupportedSource, err)
	}

	switch u.Scheme {
	case "file":
		return &FileFetcher{Path: u.Path}, noop, nil
	case "http", "https":
		return &HTTPFetcher{URL: source, Client: opts.HTTPClient}, noop, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, noop, fmt.Errorf("%w: s3 source needs bucket and key: %q", common.ErrUnsupportedSource, source)
		}
		return &S3Fetcher{Bucket: u.Host, Key: key, Options: opts.S3}, noop, nil
	case "grpc":
		c, err := NewGRPCClient(u.Host)
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: scheme %q", common.ErrUnsupportedSource, u.Scheme)
	}
}
