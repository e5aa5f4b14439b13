// Package logtail reads the end of the chanwatch log file and turns its
// zerolog JSON lines into short human-readable strings.
//
// Read keeps a ring buffer of the last maxLines lines, so memory use does
// not depend on the size of the file. Parse understands the fields the
// library and the watcher log (level, message, error, board, thread) and
// treats any other line as plain text. The UI footer shows Last.
//
//	line, err := logtail.Last(cfg.LogFile)
package logtail
