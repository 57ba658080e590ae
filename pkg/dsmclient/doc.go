// Package dsmclient provides the primary entry point for constructing a
// Synology DSM Web API client that implements the dsm.Client interface.
//
// It layers configuration, HTTP transport, sessions and capability discovery
// on top of the protocol types defined in the dsm package. Most applications
// import dsmclient to build a client, then pass it to the requests of the api
// and filestation packages.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/dsm/pkg/dsm"
//	  "github.com/fivetwenty-io/dsm/pkg/dsmclient"
//	  "github.com/fivetwenty-io/dsm/pkg/filestation"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Host and scheme only: the default port 5001 is used for https.
//	  cli, err := dsmclient.New(ctx, &dsm.Config{Host: "nas.local", HTTPS: true})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or log in right away.
//	  cli, err = dsmclient.NewWithPassword(ctx, "https://nas.local:5001", "admin", "secret", filestation.SessionName)
//	  if err != nil { log.Fatal(err) }
//
//	  info, err := dsm.Get(ctx, cli, filestation.GetInfo())
//	  if err != nil { log.Fatal(err) }
//	  _ = info
//	}
//
// # TLS and development mode
//
// For local development, you can set Config.SkipTLSVerify=true. This is gated by
// the environment variable DSM_DEV_MODE to avoid accidental insecure usage in
// production environments.
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint,
// NewWithSession and NewWithPassword.
package dsmclient
