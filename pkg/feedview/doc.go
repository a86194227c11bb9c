// Package feedview provides an embeddable live entry list for feed readers.
//
// A Viewer observes a data source of entries and the status of a background
// sync engine. It renders the entries newest first, shows a "refreshing"
// indicator while a sync is pending or running, opens the link of a selected
// entry and forwards manual refresh requests to the engine. It can be used
// through the feedview CLI or embedded as a library.
//
// # Basic Usage
//
//	cfg := feedview.Config{
//	    EntriesSource: feedview.SourceFile,
//	    EntriesFile:   "/var/lib/feeds/entries.json",
//	    StatusSource:  feedview.StatusFile,
//	    StatusFile:    "/var/lib/feeds/sync-status.json",
//	}
//
//	v, err := feedview.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//
//	if err := v.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// open the newest entry
//	_ = v.Select(ctx, 0)
//
// # Adapters
//
// Config selects built-in adapters: entries from memory, a JSON file or a
// PostgreSQL table; sync status from a JSON file or Redis; refresh requests
// over HTTP or Redis. Any of them can be replaced with an option such as
// [WithDataSource], [WithStatusMonitor] or [WithSyncTrigger]. [NewMemorySource]
// and [NewMemoryStatus] suit applications that sync in-process.
//
// # Threading
//
// All list state is owned by a single loop goroutine. Notifications from
// adapters, Select and Refresh are queued onto it, so Renderer, LinkOpener
// and ErrorReporter are only ever called from that goroutine.
//
// # Lifecycle States
//
// A Viewer can be in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. Use [Viewer.Status] to
// query the current state and [WithEventHandler] to be told about changes.
//
// # Plugins
//
//	import "github.com/bft-labs/feedview/plugins/metricsserver"
//
//	v, err := feedview.New(cfg, metricsserver.WithMetricsServer(":9464"))
package feedview
