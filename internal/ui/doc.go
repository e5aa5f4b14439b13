// Package ui is the Bubble Tea front end of the thread watcher.
//
// # Layout
//
//	┌──────────────────────────────────────────────┐
//	│ chanwatch /g/  3 threads  updated 12:00:01   │ header
//	│ 42 +2 │ 77 │ 91 ✗                            │ one tab per thread
//	│                                              │
//	│ posts of the selected thread                 │ viewport
//	│                                              │
//	│ 12:00:01 DEBUG /g/ – refreshed               │ last log line
//	│ tab next thread • j down • k up • t theme    │ key help
//	└──────────────────────────────────────────────┘
//
// Tabs show how many replies the latest refresh added and mark threads that
// are gone. Deleted posts stay in place, dimmed and flagged.
//
// # Data flow
//
// The model never touches imageboard types. Every PollTick it reads a
// state.Snapshot from the Store and the last line of the log file through
// internal/logtail; both run as tea.Cmds off the update loop.
//
// # Keys
//
//	tab / shift+tab   next / previous thread
//	j k ↑ ↓           scroll
//	pgup pgdn         page
//	g G               top / bottom
//	t                 cycle theme (saved to prefs)
//	?                 toggle full help
//	q, ctrl+c         quit
package ui
