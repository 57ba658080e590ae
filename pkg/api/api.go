// Package api holds the requests of the SYNO.API namespace: capability
// discovery and session management.
package api

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
)

// API names.
const (
	InfoAPI = "SYNO.API.Info"
	AuthAPI = "SYNO.API.Auth"
)

// QueryAll asks the discovery API for every API the server knows.
const QueryAll = "all"

// Format selects how the session id of a login is returned.
type Format string

// Formats.
const (
	// FormatCookie sets the session id as the "id" cookie.
	FormatCookie Format = "cookie"
	// FormatSID returns the session id in the response data only.
	FormatSID Format = "sid"
)

// WireValue implements dsm.Value.
func (f Format) WireValue(dsm.Version) (string, error) {
	return string(f), nil
}

// Query returns the discovery request. Without names the server decides
// what to return; QueryAll asks for every API.
func Query(names ...string) *dsm.Request[dsm.CapabilityMap] {
	return dsm.NewRequest[dsm.CapabilityMap](InfoAPI, dsm.Always("query"), dsm.Versions(1, 1), func(enc *dsm.Encoder) {
		if len(names) == 0 {
			return
		}

		query := dsm.NewSet[dsm.String]()
		for _, name := range names {
			query.Add(dsm.String(name))
		}

		enc.Set("query", query)
	})
}

// LoginOptions are the parameters of a login.
type LoginOptions struct {
	Account  string
	Password string
	// Session is the login session name, e.g. "FileStation".
	Session string
	// Format defaults to FormatSID. Servers below version 2 ignore it.
	Format Format
	// OTPCode is the 2-step verification code, sent from version 3.
	OTPCode string
}

// LoginData is the result of a login.
type LoginData struct {
	SessionID string `json:"sid"           yaml:"sid"`
	DeviceID  string `json:"did,omitempty" yaml:"did,omitempty"`
}

// Login returns the login request. The password is sent as is.
func Login(opts LoginOptions) *dsm.Request[LoginData] {
	format := opts.Format
	if format == "" {
		format = FormatSID
	}

	return dsm.NewRequest[LoginData](AuthAPI, dsm.Always("login"), dsm.Versions(1, 3), func(enc *dsm.Encoder) {
		enc.Set("account", dsm.String(opts.Account))
		enc.Set("passwd", dsm.Password(opts.Password))
		enc.Set("session", dsm.String(opts.Session))
		enc.SetSince("format", format, 2)

		if opts.OTPCode != "" {
			enc.SetSince("otp_code", dsm.String(opts.OTPCode), 3)
		}
	}, dsm.WithErrors(dsm.Auth))
}

// Logout returns the logout request for session.
func Logout(session string) *dsm.Request[struct{}] {
	return dsm.NewRequest[struct{}](AuthAPI, dsm.Always("logout"), dsm.Versions(1, 3), func(enc *dsm.Encoder) {
		enc.Set("session", dsm.String(session))
	}, dsm.WithErrors(dsm.Auth))
}

// Authenticate logs in and makes the returned session id the client's
// session.
func Authenticate(ctx context.Context, client dsm.Client, opts LoginOptions) (*LoginData, error) {
	data, err := dsm.Get(ctx, client, Login(opts))
	if err != nil {
		return nil, fmt.Errorf("logging in as %s: %w", opts.Account, err)
	}

	if data.SessionID == "" {
		return nil, fmt.Errorf("%w: login returned no session id", dsm.ErrInvalidResponse)
	}

	client.SetSessionID(data.SessionID)

	return data, nil
}

// SignOut logs out of session and clears the client's session id.
func SignOut(ctx context.Context, client dsm.Client, session string) error {
	_, err := dsm.Get(ctx, client, Logout(session))
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}

	client.SetSessionID("")

	return nil
}
