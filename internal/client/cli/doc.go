// Package cli provides the interactive gophcheck terminal client.
//
// It wires configuration, the artifact fetcher and loader, the analytics
// journal and forwarder, the optional hardware scanner, and a REPL for
// manual input. The database loads in the background; checks made before it
// is ready resolve to NOT READY.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// ctx is canceled. See App, runREPL and the forwarder in package services.
package cli
