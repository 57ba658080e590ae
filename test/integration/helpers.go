//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/fivetwenty-io/dsm/pkg/api"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/fivetwenty-io/dsm/pkg/dsmclient"
	"github.com/fivetwenty-io/dsm/pkg/filestation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Endpoint      string
	Account       string
	Password      string
	Folder        string
	SkipTLSVerify bool
	Verbose       bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	folder := os.Getenv("DSM_TEST_FOLDER")
	if folder == "" {
		folder = "/home"
	}

	return &TestConfig{
		Endpoint:      os.Getenv("DSM_ENDPOINT"),
		Account:       os.Getenv("DSM_ACCOUNT"),
		Password:      os.Getenv("DSM_PASSWORD"),
		Folder:        folder,
		SkipTLSVerify: os.Getenv("DSM_SKIP_SSL_VALIDATION") == "true",
		Verbose:       os.Getenv("DSM_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Endpoint == "" {
		t.Skip("DSM_ENDPOINT not set, skipping integration test")
	}

	if config.Account == "" || config.Password == "" {
		t.Skip("DSM_ACCOUNT or DSM_PASSWORD not set, skipping integration test")
	}
}

// NewSession logs in and logs out again when the test ends.
func (config *TestConfig) NewSession(t *testing.T) dsm.Client {
	t.Helper()

	ctx := context.Background()

	client, err := dsmclient.New(ctx, &dsm.Config{
		Endpoint:      config.Endpoint,
		SkipTLSVerify: config.SkipTLSVerify,
		Debug:         config.Verbose,
		Logger:        testLogger{t: t},
	})
	require.NoError(t, err)

	_, err = api.Authenticate(ctx, client, api.LoginOptions{
		Account:  config.Account,
		Password: config.Password,
		Session:  filestation.SessionName,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := api.SignOut(context.Background(), client, filestation.SessionName); err != nil {
			t.Logf("Logout warning: %v", err)
		}
	})

	return client
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Debug(msg string, fields map[string]interface{}) {
	l.t.Logf("DEBUG %s %v", msg, fields)
}

func (l testLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO %s %v", msg, fields)
}

func (l testLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN %s %v", msg, fields)
}

func (l testLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR %s %v", msg, fields)
}
