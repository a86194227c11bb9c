// Package ports defines the interfaces that connect the application layer to
// infrastructure adapters.
//
// # Consumed
//
//   - [DataSource]: live, ordered queries over synced entries
//   - [SyncStatusMonitor]: pending/active notifications from the sync engine
//   - [SyncTrigger]: fire-and-forget request for an immediate sync
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Exposed to the embedding
//
//   - [Renderer]: list, empty state and refresh indicator
//   - [LinkOpener]: opens an entry link outside the viewer
//   - [ErrorReporter]: surfaces non-fatal interaction errors
//
// The application layer (internal/app) depends only on these interfaces;
// internal/adapters holds the concrete implementations.
package ports
