package client_test

import (
	"context"
	"sync"
	"testing"

	. "github.com/fivetwenty-io/dsm/internal/client"
	"github.com/fivetwenty-io/dsm/internal/dsmtest"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/stretchr/testify/require"
)

// MockLogger records messages for assertions.
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *MockLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, msg)
}

func (l *MockLogger) Debug(msg string, _ map[string]interface{}) { l.record(msg) }
func (l *MockLogger) Info(msg string, _ map[string]interface{})  { l.record(msg) }
func (l *MockLogger) Warn(msg string, _ map[string]interface{})  { l.record(msg) }
func (l *MockLogger) Error(msg string, _ map[string]interface{}) { l.record(msg) }

// Has reports whether msg was logged.
func (l *MockLogger) Has(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, logged := range l.messages {
		if logged == msg {
			return true
		}
	}

	return false
}

// NewTestServer starts a fake server with the default directory.
func NewTestServer(t *testing.T) *dsmtest.Server {
	t.Helper()

	return dsmtest.NewServer(t, dsmtest.DefaultCapabilities())
}

// NewTestClient creates a client for server.
func NewTestClient(t *testing.T, server *dsmtest.Server, configure ...func(*dsm.Config)) *Client {
	t.Helper()

	config := &dsm.Config{Endpoint: server.URL}
	for _, fn := range configure {
		fn(config)
	}

	client, err := New(context.Background(), config)
	require.NoError(t, err)

	return client
}
