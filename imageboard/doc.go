// Package imageboard is a read-only client for imageboards that speak the
// 4chan JSON API. It models boards, threads, posts and files, caches the
// threads each Board has seen, and keeps cached threads current with
// conditional requests.
//
// # Overview
//
//   - client.go: Client, which hands out Boards sharing one Fetcher and one
//     metadata source
//   - board.go: Board, listings and the per-board thread cache
//   - thread.go: Thread and its read accessors
//   - update.go: Thread.Update, the incremental update and merge
//   - post.go, file.go: Post and File views over the raw records
//
// # Updating threads
//
// Every Thread remembers the Last-Modified value of its last fetch and sends
// it back as If-Modified-Since:
//
//	304 Not Modified   nothing changes, Update returns 0
//	404 Not Found      NotFound is set and the thread leaves the cache
//	200 OK             the response is merged into the thread
//
// A merge keeps the *Post values the caller already holds. Replies newer
// than the thread's watermark (LastReplyID) are appended and replies that
// disappeared are flagged Deleted rather than removed. Update returns the
// net change in live replies. A forced update, or the first update of a
// thread built from a listing, rebuilds the replies instead.
//
// Failures that produce no response at all are treated as transient: the
// error is recorded in LastPollError and Update returns 0 so callers keep
// polling on their own schedule.
//
// # Cache
//
// Board caches threads by id. Listings never replace a cached thread; they
// return the cached one and flag it WantUpdate, which RefreshCache can use
// to refresh only what a listing showed as active. Boards and Threads are
// not safe for concurrent use.
//
// # Logging
//
// Debug and warning events are written to the zerolog.Logger carried by the
// context passed to each call. With no logger in the context nothing is
// logged.
package imageboard
