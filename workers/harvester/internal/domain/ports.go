package domain

import (
	"context"
	"io"
)

// HTTPClient defines the interface for authenticated HTTP operations
type HTTPClient interface {
	// Fetch performs a GET and returns the body of a 2xx response.
	// Transport failures and other statuses are returned as errors.
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}
