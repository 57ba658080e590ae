package client_test

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fivetwenty-io/dsm/internal/auth"
	. "github.com/fivetwenty-io/dsm/internal/client"
	"github.com/fivetwenty-io/dsm/pkg/api"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/fivetwenty-io/dsm/pkg/filestation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T, capabilities dsm.CapabilityMap, sid string) (*Builder, *Directory, *atomic.Int32) {
	t.Helper()

	var fetches atomic.Int32

	directory := NewDirectory(func(context.Context) (dsm.CapabilityMap, error) {
		fetches.Add(1)

		return capabilities, nil
	})

	base, err := url.Parse("https://nas.local:5001")
	require.NoError(t, err)

	return NewBuilder(directory, base, auth.NewSessionManager(sid), ""), directory, &fetches
}

func queryNames(target *dsm.Target) []string {
	var names []string

	for _, pair := range strings.Split(target.URL.RawQuery, "&") {
		name, _, _ := strings.Cut(pair, "=")
		names = append(names, name)
	}

	return names
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestBuilder_Negotiation(t *testing.T) {
	t.Parallel()

	capabilities := dsm.CapabilityMap{
		"SYNO.Test": {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
	}

	tests := []struct {
		name     string
		versions dsm.VersionRange
		want     int
		wantErr  error
	}{
		{"clamps to the server maximum", dsm.Versions(1, 3), 2, nil},
		{"clamps to the caller maximum", dsm.Versions(1, 1), 1, nil},
		{"exact match", dsm.Versions(2, 2), 2, nil},
		{"no overlap", dsm.Versions(4, 5), 0, dsm.ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			builder, _, _ := newTestBuilder(t, capabilities, "")
			req := dsm.NewRequest[struct{}]("SYNO.Test", dsm.Always("get"), tt.versions, nil)

			target, err := builder.Build(context.Background(), req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, target.Version)
			assert.Equal(t, http.MethodGet, target.HTTPMethod)
			assert.Equal(t, "/webapi/entry.cgi", target.URL.Path)
			assert.Equal(t, "nas.local:5001", target.URL.Host)
		})
	}
}

func TestBuilder_CapabilityMiss(t *testing.T) {
	t.Parallel()

	t.Run("refreshes once and retries", func(t *testing.T) {
		t.Parallel()

		builder, directory, fetches := newTestBuilder(t, dsm.CapabilityMap{
			"SYNO.Test": {Path: "entry.cgi", MinVersion: 1, MaxVersion: 1},
		}, "")

		target, err := builder.Build(context.Background(), dsm.NewRequest[struct{}]("SYNO.Test", dsm.Always("get"), dsm.Versions(1, 1), nil))
		require.NoError(t, err)
		assert.Equal(t, "SYNO.Test", target.API)
		assert.Equal(t, int32(1), fetches.Load())
		assert.Equal(t, int64(1), directory.Refreshes())
	})

	t.Run("second miss is terminal", func(t *testing.T) {
		t.Parallel()

		builder, _, fetches := newTestBuilder(t, dsm.CapabilityMap{
			"SYNO.Other": {Path: "entry.cgi", MinVersion: 1, MaxVersion: 1},
		}, "")

		_, err := builder.Build(context.Background(), dsm.NewRequest[struct{}]("SYNO.Test", dsm.Always("get"), dsm.Versions(1, 1), nil))
		require.ErrorIs(t, err, dsm.ErrAPINotFound)
		assert.Equal(t, int32(1), fetches.Load())
	})

	t.Run("discovery uses the bootstrap entry", func(t *testing.T) {
		t.Parallel()

		builder, _, fetches := newTestBuilder(t, dsm.CapabilityMap{
			"SYNO.Other": {Path: "entry.cgi", MinVersion: 1, MaxVersion: 1},
		}, "")

		_, err := builder.Build(context.Background(), dsm.NewRequest[struct{}]("SYNO.Other", dsm.Always("get"), dsm.Versions(1, 1), nil))
		require.NoError(t, err)

		// The refreshed directory no longer lists the discovery API.
		target, err := builder.Build(context.Background(), api.Query(api.QueryAll))
		require.NoError(t, err)
		assert.Equal(t, "/webapi/query.cgi", target.URL.Path)
		assert.Equal(t, "all", target.URL.Query().Get("query"))
		assert.Equal(t, int32(1), fetches.Load())
	})
}

func TestBuilder_Parameters(t *testing.T) {
	t.Parallel()

	t.Run("operation parameters precede routing parameters", func(t *testing.T) {
		t.Parallel()

		builder, _, _ := newTestBuilder(t, dsm.CapabilityMap{
			filestation.ListAPI: {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
		}, "sid-1")

		target, err := builder.Build(context.Background(), filestation.List(filestation.ListOptions{
			FolderPath: "/home,1",
			Limit:      10,
		}))
		require.NoError(t, err)

		assert.Equal(t, []string{"folder_path", "limit", "api", "version", "method", "_sid"}, queryNames(target))

		query := target.URL.Query()
		assert.Equal(t, `/home\,1`, query.Get("folder_path"))
		assert.Equal(t, "SYNO.FileStation.List", query.Get("api"))
		assert.Equal(t, "2", query.Get("version"))
		assert.Equal(t, "list", query.Get("method"))
		assert.Equal(t, "sid-1", query.Get("_sid"))
	})

	t.Run("no session id without a session", func(t *testing.T) {
		t.Parallel()

		builder, _, _ := newTestBuilder(t, dsm.CapabilityMap{
			filestation.InfoAPI: {Path: "entry.cgi", MinVersion: 1, MaxVersion: 1},
		}, "")

		target, err := builder.Build(context.Background(), filestation.GetInfo())
		require.NoError(t, err)
		assert.NotContains(t, queryNames(target), "_sid")
		assert.Equal(t, "getinfo", target.Method)
	})

	t.Run("conditional inclusion", func(t *testing.T) {
		t.Parallel()

		login := api.Login(api.LoginOptions{Account: "admin", Password: `p,a\ss`, Session: "FileStation", OTPCode: "123456"})

		for version, want := range map[int][]string{
			1: {"account", "passwd", "session", "api", "version", "method"},
			2: {"account", "passwd", "session", "format", "api", "version", "method"},
			3: {"account", "passwd", "session", "format", "otp_code", "api", "version", "method"},
		} {
			builder, _, _ := newTestBuilder(t, dsm.CapabilityMap{
				api.AuthAPI: {Path: "auth.cgi", MinVersion: 1, MaxVersion: version},
			}, "")

			target, err := builder.Build(context.Background(), login)
			require.NoError(t, err)
			assert.Equal(t, want, queryNames(target), "version %d", version)
			assert.Equal(t, `p,a\ss`, target.URL.Query().Get("passwd"))
		}
	})

	t.Run("method without coverage", func(t *testing.T) {
		t.Parallel()

		builder, _, _ := newTestBuilder(t, dsm.CapabilityMap{
			"SYNO.Test": {Path: "entry.cgi", MinVersion: 1, MaxVersion: 2},
		}, "")

		_, err := builder.Build(context.Background(), dsm.NewRequest[struct{}]("SYNO.Test", dsm.Since("get", 3), dsm.Versions(1, 3), nil))
		require.ErrorIs(t, err, dsm.ErrNoCoverage)
	})
}

func TestBuilder_InvalidTarget(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"entry.cgi?x=1", "entry.cgi#frag", "%zz"} {
		builder, _, _ := newTestBuilder(t, dsm.CapabilityMap{
			"SYNO.Test": {Path: path, MinVersion: 1, MaxVersion: 1},
		}, "")

		_, err := builder.Build(context.Background(), dsm.NewRequest[struct{}]("SYNO.Test", dsm.Always("get"), dsm.Versions(1, 1), nil))
		require.ErrorIs(t, err, dsm.ErrInvalidTarget, path)
	}

	directory := NewDirectory(staticFetcher(nil))
	builder := NewBuilder(directory, &url.URL{Path: "relative"}, nil, "")

	_, err := builder.Build(context.Background(), api.Query())
	require.ErrorIs(t, err, dsm.ErrInvalidTarget)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestBuilder_Multipart(t *testing.T) {
	t.Parallel()

	upload := filestation.Upload(filestation.UploadOptions{
		Path:          "/home/docs",
		CreateParents: true,
		File:          dsm.FileBytes("dir/report.txt", []byte("hello")),
	})

	for version, destination := range map[int]string{1: "dest_folder_path", 2: "path"} {
		builder, _, _ := newTestBuilder(t, dsm.CapabilityMap{
			filestation.UploadAPI: {Path: "entry.cgi", MinVersion: 1, MaxVersion: version},
		}, "sid-9")

		target, err := builder.Build(context.Background(), upload)
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, target.HTTPMethod)
		assert.True(t, target.IsMultipart())
		assert.Empty(t, target.URL.RawQuery)

		mediaType, params, err := mime.ParseMediaType(target.ContentType)
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)

		body, err := target.Body()
		require.NoError(t, err)

		raw, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, int64(len(raw)), target.ContentLength)

		reader := multipart.NewReader(strings.NewReader(string(raw)), params["boundary"])

		var names []string

		values := map[string]string{}

		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}

			require.NoError(t, err)

			content, err := io.ReadAll(part)
			require.NoError(t, err)

			names = append(names, part.FormName())
			values[part.FormName()] = string(content)

			if part.FormName() == "file" {
				assert.Equal(t, "report.txt", part.FileName())
				assert.Equal(t, "application/octet-stream", part.Header.Get("Content-Type"))
			}
		}

		assert.Equal(t, []string{destination, "create_parents", "api", "version", "method", "_sid", "file"}, names, "version %d", version)
		assert.Equal(t, "/home/docs", values[destination])
		assert.Equal(t, "true", values["create_parents"])
		assert.Equal(t, "hello", values["file"])

		// A second read returns the same body.
		again, err := target.Body()
		require.NoError(t, err)

		rawAgain, err := io.ReadAll(again)
		require.NoError(t, err)
		assert.Equal(t, raw, rawAgain)
	}
}
