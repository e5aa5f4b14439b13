// Package config loads chanwatch settings.
//
// # Resolution order
//
//  1. Built-in defaults (4chan hosts over https, 10s timeout and poll interval)
//  2. The TOML file, ~/.config/chanwatch/config.toml unless a path is given
//  3. Variables from a .env file in the working directory, when present
//  4. CHANWATCH_* environment variables
//
// Later sources win. Variables already present in the environment are not
// replaced by .env entries. A missing config file is not an error.
//
// # TOML Format
//
//	https = true
//	user_agent = "chanwatch/0.1"
//	timeout = "10s"
//	poll_interval = "10s"
//	log_level = "info"
//	log_file = "~/.local/state/chanwatch/chanwatch.log"
//
//	[site]
//	api = "a.4cdn.org"
//	boards = "boards.4chan.org"
//	files = "i.4cdn.org"
//	thumbs = "i.4cdn.org"
//	static = "s.4cdn.org"
//	zero_indexed_pages = false
//
// Every key is optional; blank strings fall back to the default. Durations
// use time.ParseDuration syntax and must be positive.
//
// # Environment
//
//	CHANWATCH_HTTPS, CHANWATCH_USER_AGENT, CHANWATCH_TIMEOUT,
//	CHANWATCH_POLL_INTERVAL, CHANWATCH_LOG_LEVEL, CHANWATCH_LOG_FILE,
//	CHANWATCH_SITE_API, CHANWATCH_SITE_BOARDS, CHANWATCH_SITE_FILES,
//	CHANWATCH_SITE_THUMBS, CHANWATCH_SITE_STATIC,
//	CHANWATCH_SITE_ZERO_INDEXED_PAGES
package config
