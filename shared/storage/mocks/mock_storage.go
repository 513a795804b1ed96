// Package mocks provides testify mocks for the storage contracts.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/vesla0x1/codegrabber/shared/storage/types"
)

// MockObjectSink is a mock implementation of types.ObjectSink. Bodies passed
// to Put are read into Bodies keyed by object key.
type MockObjectSink struct {
	mock.Mock
	Bodies map[string]string
}

// Put mocks the Put method
func (m *MockObjectSink) Put(ctx context.Context, key string, reader io.Reader, metadata types.ObjectMetadata) error {
	data, _ := io.ReadAll(reader)
	if m.Bodies == nil {
		m.Bodies = make(map[string]string)
	}
	m.Bodies[key] = string(data)

	args := m.Called(ctx, key, metadata)
	return args.Error(0)
}
