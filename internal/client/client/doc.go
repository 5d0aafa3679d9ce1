// Package client contains the checker's connections to the outside world.
//
// # Overview
//
// The package provides:
//  1. Fetcher, the transport-agnostic way to retrieve the encrypted database
//     artifact, with implementations for local files, HTTP(S), S3 and the
//     gophcheck gRPC service. NewFetcher picks one from a source URL.
//  2. GRPCClient, which also forwards analytics events to the server.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     analytics journal: an SQLite file with embedded goose migrations.
//
// # Error Handling
//
// Retrieval failures are returned as is; the loader decides what they mean.
// ErrUnavailable marks a gRPC endpoint that could not be reached.
// ErrRejected marks an analytics event that cannot be encoded or that the
// server refused as invalid.
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
