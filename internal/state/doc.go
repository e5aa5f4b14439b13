// Package state shares the watched threads between the background poller
// and the UI.
//
// The poller owns every imageboard.Thread. After each refresh it converts
// them with Summarize and hands the result to Store.Update; the UI reads
// Store.Snapshot on its own schedule. Both sides only ever see copies, so
// the imageboard types, which are not safe for concurrent use, never cross
// goroutines.
//
//	Poller:                        UI:
//	┌──────────────────┐          ┌──────────────────┐
//	│ RefreshCache()   │          │                  │
//	│ Summarize()      │          │                  │
//	│ store.Update()   │─────────→│ store.Snapshot() │
//	│ wait, repeat     │ (mutex)  │ render           │
//	└──────────────────┘          └──────────────────┘
//
// A failed refresh keeps the previous threads and records the error;
// IsOffline reports two or more failures in a row.
//
// The zero Store is ready to use.
package state
