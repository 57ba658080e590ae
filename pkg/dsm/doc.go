// Package dsm provides the protocol layer for the Synology DSM Web API.
//
// # Overview
//
// A DSM server advertises, per API name, a CGI path and the range of
// versions it supports. Clients discover this directory at runtime and
// negotiate a version for every call before sending it. The dsm package
// defines the pieces such a client is made of: version ranges and versioned
// values, parameter encoders and sinks, request descriptors, the response
// envelope decoder, and the error taxonomies failures are resolved against.
// A concrete client is provided by the dsmclient package; the api and
// filestation packages hold the declarative endpoint catalog.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/dsm/pkg/api"
//	  "github.com/fivetwenty-io/dsm/pkg/dsm"
//	  "github.com/fivetwenty-io/dsm/pkg/dsmclient"
//	  "github.com/fivetwenty-io/dsm/pkg/filestation"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := dsmclient.New(ctx, &dsm.Config{Endpoint: "https://nas.local:5001"})
//	  if err != nil { log.Fatal(err) }
//
//	  _, err = api.Authenticate(ctx, cli, api.LoginOptions{Account: "admin", Password: "secret", Session: "FileStation"})
//	  if err != nil { log.Fatal(err) }
//
//	  shares, err := dsm.Get(ctx, cli, filestation.ListShare(filestation.ListShareOptions{}))
//	  if err != nil { log.Fatal(err) }
//	  _ = shares
//	}
//
// # Versioned values
//
// Parameter names and values may change between versions of the same API.
// A Variant holds the alternatives keyed by the version they became
// available in; Encoder.Add resolves them against the negotiated version.
// Multi-valued parameters are comma separated, so elements are escaped with
// Escape: backslashes are doubled, then commas are prefixed with a
// backslash. Passwords are never escaped.
//
// # Errors
//
// Business failures are *APIError values resolved through a Taxonomy
// chain: the request's own taxonomy first, then its base, up to Common.
// Codes no taxonomy knows keep their numeric code with the message
// "Unknown error" and match ErrUnknownCode. Per-item failures of multi-path
// operations are always available through Details.
//
// # Interceptors and caching
//
// Request/response interceptors (logging, headers, rate limiting, metrics)
// run inside the transport. A Cache lets clients share capability
// snapshots, in memory or in a NATS key-value bucket.
package dsm
