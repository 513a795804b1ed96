// Package mocks provides testify mocks for the harvester ports.
package mocks

import (
	"context"
	"io"
	"strings"

	"github.com/stretchr/testify/mock"
)

// MockHTTPClient is a mock implementation of domain.HTTPClient
type MockHTTPClient struct {
	mock.Mock
}

// Fetch mocks the Fetch method. A string first return value is served as
// the response body.
func (m *MockHTTPClient) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	args := m.Called(ctx, url)

	var body io.ReadCloser
	switch v := args.Get(0).(type) {
	case io.ReadCloser:
		body = v
	case string:
		body = io.NopCloser(strings.NewReader(v))
	}

	return body, args.Error(1)
}
