// Package dsmclient provides the main entry point for creating DSM Web API clients
package dsmclient

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/dsm/internal/client"
	"github.com/fivetwenty-io/dsm/internal/constants"
	"github.com/fivetwenty-io/dsm/pkg/api"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
)

// New creates a new DSM client. The config is not modified.
func New(ctx context.Context, config *dsm.Config) (dsm.Client, error) {
	if config == nil {
		return nil, dsm.ErrConfigRequired
	}

	endpoint, err := Endpoint(config)
	if err != nil {
		return nil, err
	}

	if config.SkipTLSVerify && !isDevelopmentEnvironment() {
		return nil, fmt.Errorf("%w (set DSM_DEV_MODE=true)", dsm.ErrSkipTLSOnlyInDev)
	}

	normalized := *config
	normalized.Endpoint = endpoint

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// Endpoint returns the base URL config describes. A scheme-less Endpoint
// gets "https://"; with only Host set the default DSM port of the scheme is
// used unless Port is set.
func Endpoint(config *dsm.Config) (string, error) {
	if config.Endpoint != "" {
		endpoint := strings.TrimSuffix(config.Endpoint, "/")
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}

		return endpoint, nil
	}

	if config.Host == "" {
		return "", dsm.ErrEndpointRequired
	}

	scheme, port := "http", constants.DefaultHTTPPort
	if config.HTTPS {
		scheme, port = "https", constants.DefaultHTTPSPort
	}

	if config.Port > 0 {
		port = config.Port
	}

	return scheme + "://" + net.JoinHostPort(config.Host, strconv.Itoa(port)), nil
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("DSM_DEV_MODE")

	return devMode == "true" || devMode == "1"
}

// NewWithEndpoint creates a new client with just an endpoint (no session).
func NewWithEndpoint(ctx context.Context, endpoint string) (dsm.Client, error) {
	return New(ctx, &dsm.Config{
		Endpoint: endpoint,
	})
}

// NewWithSession creates a new client reusing an existing session id.
func NewWithSession(ctx context.Context, endpoint, sid string) (dsm.Client, error) {
	return New(ctx, &dsm.Config{
		Endpoint:  endpoint,
		SessionID: sid,
	})
}

// NewWithPassword creates a new client and logs in to session with
// account and password.
func NewWithPassword(ctx context.Context, endpoint, account, password, session string) (dsm.Client, error) {
	c, err := New(ctx, &dsm.Config{
		Endpoint: endpoint,
	})
	if err != nil {
		return nil, err
	}

	_, err = api.Authenticate(ctx, c, api.LoginOptions{
		Account:  account,
		Password: password,
		Session:  session,
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}
