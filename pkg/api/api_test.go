package api_test

import (
	"context"
	"testing"

	"github.com/fivetwenty-io/dsm/internal/dsmtest"
	"github.com/fivetwenty-io/dsm/pkg/api"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/fivetwenty-io/dsm/pkg/dsmclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, d dsm.Descriptor, version dsm.Version) []dsm.Param {
	t.Helper()

	sink := dsm.NewQuerySink()
	enc := dsm.NewEncoder(version, sink)
	d.EncodeParams(enc)
	require.NoError(t, enc.Err())

	return sink.Params()
}

func TestQuery(t *testing.T) {
	t.Parallel()

	req := api.Query(api.QueryAll)
	assert.Equal(t, "SYNO.API.Info", req.API)
	assert.Equal(t, dsm.Versions(1, 1), req.Versions)
	assert.Equal(t, []dsm.Param{{Name: "query", Value: "all"}}, encode(t, req, 1))

	assert.Equal(t, []dsm.Param{{Name: "query", Value: "SYNO.API.Auth,SYNO.FileStation.List"}},
		encode(t, api.Query("SYNO.API.Auth", "SYNO.FileStation.List", "SYNO.API.Auth"), 1))

	assert.Empty(t, encode(t, api.Query(), 1))
}

func TestLogin(t *testing.T) {
	t.Parallel()

	opts := api.LoginOptions{Account: "admin", Password: `a,b\c`, Session: "FileStation", OTPCode: "000111"}

	tests := []struct {
		version dsm.Version
		want    []dsm.Param
	}{
		{1, []dsm.Param{{Name: "account", Value: "admin"}, {Name: "passwd", Value: `a,b\c`}, {Name: "session", Value: "FileStation"}}},
		{2, []dsm.Param{{Name: "account", Value: "admin"}, {Name: "passwd", Value: `a,b\c`}, {Name: "session", Value: "FileStation"}, {Name: "format", Value: "sid"}}},
		{3, []dsm.Param{{Name: "account", Value: "admin"}, {Name: "passwd", Value: `a,b\c`}, {Name: "session", Value: "FileStation"}, {Name: "format", Value: "sid"}, {Name: "otp_code", Value: "000111"}}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, encode(t, api.Login(opts), tt.version), "version %d", tt.version)
	}

	req := api.Login(api.LoginOptions{Account: "admin", Format: api.FormatCookie})
	assert.Same(t, dsm.Auth, req.ErrorTaxonomy())
	assert.Contains(t, encode(t, req, 3), dsm.Param{Name: "format", Value: "cookie"})
	assert.NotContains(t, encode(t, req, 3), dsm.Param{Name: "otp_code", Value: ""})
}

func TestAuthenticateAndSignOut(t *testing.T) {
	t.Parallel()

	server := dsmtest.NewServer(t, dsmtest.DefaultCapabilities())
	server.Handle(api.AuthAPI, "login", dsmtest.Static(dsmtest.Success(map[string]string{"sid": "abc"})))
	server.Handle(api.AuthAPI, "logout", dsmtest.Static(dsmtest.Success(nil)))

	client, err := dsmclient.New(context.Background(), &dsm.Config{Endpoint: server.URL})
	require.NoError(t, err)

	data, err := api.Authenticate(context.Background(), client, api.LoginOptions{Account: "admin", Password: "pw", Session: "FileStation"})
	require.NoError(t, err)
	assert.Equal(t, "abc", data.SessionID)
	assert.Equal(t, "abc", client.SessionID())

	require.NoError(t, api.SignOut(context.Background(), client, "FileStation"))
	assert.Empty(t, client.SessionID())

	logout := server.Last(api.AuthAPI)
	require.NotNil(t, logout)
	assert.Equal(t, "logout", logout.Method)
	assert.Equal(t, "abc", logout.SessionID)
	assert.Equal(t, "FileStation", logout.Params.Get("session"))
}

func TestAuthenticate_Failures(t *testing.T) {
	t.Parallel()

	server := dsmtest.NewServer(t, dsmtest.DefaultCapabilities())
	server.Handle(api.AuthAPI, "login", func(req *dsmtest.Request) []byte {
		if req.Params.Get("account") == "empty" {
			return dsmtest.Success(map[string]string{})
		}

		return dsmtest.Failure(403)
	})

	client, err := dsmclient.New(context.Background(), &dsm.Config{Endpoint: server.URL})
	require.NoError(t, err)

	_, err = api.Authenticate(context.Background(), client, api.LoginOptions{Account: "admin"})
	require.ErrorIs(t, err, dsm.Auth.Err(403))
	assert.Contains(t, err.Error(), "2-step verification code required")
	assert.Empty(t, client.SessionID())

	_, err = api.Authenticate(context.Background(), client, api.LoginOptions{Account: "empty"})
	require.ErrorIs(t, err, dsm.ErrInvalidResponse)
}
