package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/dsm/internal/constants"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/fivetwenty-io/dsm/pkg/dsmclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Output format constants.
const (
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"
)

// Static errors for err113 compliance.
var (
	ErrNoEndpoint        = constants.ErrNoEndpointConfigured
	ErrNotLoggedIn       = constants.ErrNotAuthenticated
	ErrAccountRequired   = constants.ErrNoAccount
	ErrUnknownOutput     = constants.ErrUnknownOutputFormat
	ErrNotRegularFile    = constants.ErrNotRegularFile
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrInvalidSortField  = errors.New("invalid sort field")
	ErrInvalidFileType   = errors.New("invalid file type, use file, dir or all")
	ErrNoTaskID          = errors.New("server did not return a task id")
	ErrDestinationExists = errors.New("local destination already exists, use --force to overwrite")
)

// createClient builds a client from the endpoint, session and TLS settings
// held by viper. Commands that act on files require a session.
func createClient(cmd *cobra.Command, requireSession bool) (dsm.Client, error) {
	endpoint := viper.GetString("endpoint")
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}

	sid := viper.GetString("sid")
	if requireSession && sid == "" {
		return nil, ErrNotLoggedIn
	}

	verbose := viper.GetBool("verbose")

	cache, err := snapshotCache()
	if err != nil {
		return nil, err
	}

	config := &dsm.Config{
		Endpoint:      endpoint,
		SessionID:     sid,
		SkipTLSVerify: viper.GetBool("skip-ssl-validation"),
		Debug:         verbose,
		Logger:        newLogger(cmd.ErrOrStderr(), verbose),
		Cache:         cache,
		Interceptors:  dsm.NewInterceptorChain().OnResponse(sessionHint(cmd.ErrOrStderr())),
	}

	client, err := dsmclient.New(cmd.Context(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// sessionHint tells the user to log in again when the server drops the
// session.
func sessionHint(w io.Writer) dsm.ResponseInterceptor {
	return dsm.SessionExpiredInterceptor(func(req *dsm.HTTPRequest, code int) {
		_, _ = fmt.Fprintf(w, "%s: session expired (code %d), run 'dsm login' again\n", req.API, code)
	})
}

// snapshotCache opens the capability snapshot store named by the "cache"
// section of the config file, for example:
//
//	cache:
//	  type: nats
//	  nats_url: nats://127.0.0.1:4222
//	  ttl: 12h
func snapshotCache() (dsm.Cache, error) {
	if !viper.IsSet("cache") {
		return nil, nil //nolint:nilnil // no snapshot store configured
	}

	var config dsm.CacheConfig
	if err := viper.UnmarshalKey("cache", &config); err != nil {
		return nil, fmt.Errorf("failed to read cache config: %w", err)
	}

	cache, err := dsm.NewCacheFromConfig(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to open capability cache: %w", err)
	}

	return cache, nil
}

// renderOutput writes value as JSON or YAML, or calls table to fill a table
// for the default format.
func renderOutput(w io.Writer, value interface{}, table func(*tablewriter.Table)) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	case OutputFormatTable, "":
		writer := tablewriter.NewWriter(w)
		table(writer)

		if err := writer.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOutput, output)
	}
}

func formatBytes(size int64) string {
	const unit = 1024

	if size < unit {
		return strconv.FormatInt(size, 10) + " B"
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}
