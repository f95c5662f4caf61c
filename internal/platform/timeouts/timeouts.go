// Package timeouts defines shared timeout constants used by service
// processes.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// StoreConnect caps the wait when a store client is created and verified at
// startup.
const StoreConnect = 10 * time.Second
