package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophcheck/internal/netx"
)

// HTTPFetcher downloads the artifact with a cache-bypassing GET.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	return netx.Download(ctx, f.Client, f.URL)
}
