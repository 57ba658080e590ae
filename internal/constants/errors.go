package constants

import "errors"

// CLI configuration errors.
var (
	ErrNoEndpointConfigured = errors.New("no DSM endpoint configured, use --endpoint or DSM_ENDPOINT")
	ErrNoAccount            = errors.New("no account given, use --account")
	ErrNotAuthenticated     = errors.New("not authenticated, run 'dsm login' and pass the session id with --sid or DSM_SID")
	ErrUnknownOutputFormat  = errors.New("unknown output format")
)

// CLI argument errors.
var (
	ErrNotRegularFile = errors.New("path is not a regular file")
)
