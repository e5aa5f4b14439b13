// Package api is the transport layer for imageboard JSON APIs.
//
// # Overview
//
// The package has three parts:
//
//   - client.go: the Fetcher interface and its net/http implementation
//   - types.go: structs mirroring the JSON documents the API serves
//   - urls.go: Site host tables and per-board URL construction
//
// # Fetcher contract
//
// Fetcher.Get and Fetcher.Head return an error only when no response could be
// obtained. Status codes are data: callers decide what 200, 304 and 404 mean
// for them and wrap anything else in a *StatusError. Response bodies are read
// fully before returning, so Response values are safe to keep.
//
// # Endpoints
//
// For board "g" on the default FourChan site:
//
//	https://a.4cdn.org/boards.json            board metadata
//	https://a.4cdn.org/g/1.json               board page 1 (pages are 1-indexed)
//	https://a.4cdn.org/g/catalog.json         every thread with last_replies
//	https://a.4cdn.org/g/threads.json         every thread id, no posts
//	https://a.4cdn.org/g/thread/123.json      one thread
//	https://i.4cdn.org/g/1600000000000.jpg    attachment
//	https://i.4cdn.org/g/1600000000000s.jpg   thumbnail
//
// # Schema
//
// PostRecord decodes a post once into explicit fields. Presence-sensitive
// optional fields are pointers; the rest default to their zero value.
// Validate rejects posts without "no" or "time" with ErrMalformed.
package api
