// Package app assembles the server: configuration, logging, tracing,
// the provider catalog, the session store, the workflow orchestrator,
// and the chi router that exposes them. It owns the HTTP server
// lifecycle including graceful shutdown.
package app
