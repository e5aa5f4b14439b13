// Package app is the composition root of the chanwatch watcher.
//
// # Startup
//
//  1. Load config (internal/config) and prefs (internal/prefs)
//  2. Log JSON lines to the configured file; the terminal belongs to the UI
//  3. Build an imageboard.Client over api.Client and check the board exists
//  4. Start the poller, then run the UI until the user quits
//
// # Components
//
//   - app.go: Run and Options
//   - watcher.go: Watcher, which decides what to refresh and summarizes it
//   - poller.go: background loop feeding state.Store
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        settings, env overrides
//	       ├─────> logging.File()       logger carried in ctx
//	       ├─────> client.Boards()      pre-flight board check
//	       ├─────> StartPoller()        background refresh
//	       └─────> ui.Run()             blocks
//
//	Poller loop:
//	┌─────────────────────────────────────────┐
//	│ Watcher.Refresh()                       │
//	│  ├─> Board.GetThread / GetThreads       │
//	│  ├─> Board.RefreshCache                 │
//	│  └─> state.Summarize                    │
//	│ store.Update()                          │
//	│ wait interval, or longer after failures │
//	└─────────────────────────────────────────┘
//
// # Modes
//
// With thread ids the watcher fetches each thread once and then refreshes the
// board cache on every tick. Threads that 404 stay on screen, marked gone.
// Without ids it reads the first board page on every tick and refreshes only
// the threads that page flagged WantUpdate.
//
// # Polling Behavior
//
// The first refresh runs immediately. Afterwards the poller waits the poll
// interval, doubling the wait per consecutive failure up to five minutes
// (jpillora/backoff). Transport failures on single threads never count as
// failures: imageboard swallows them and the next tick retries.
//
// Only the poller goroutine touches imageboard values; the UI sees copies.
package app
