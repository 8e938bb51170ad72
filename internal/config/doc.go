// Package config loads the hitcard configuration file.
//
// # Discovery
//
// Load reads the path it is given, or ~/.config/hitcard/config.toml when the
// path is empty. A missing file is not an error: defaults are used so hitcard
// runs out of the box. Environment overrides are applied last.
//
// # TOML Format
//
//	[catalog]
//	lookup_url = "https://itunes.apple.com/lookup"
//	country = "de"
//	timeout = "10s"
//
//	[scanner]
//	prefixes = ["/qr/am/", "/ar/am/"]
//	dedupe_window = "2s"
//	message_ttl = "3s"
//	validate_timeout = "5s"
//	skip_validation = false
//
//	[player]
//	backend = "auto"   # auto, beep, mpv, none
//	mpv_path = "mpv"
//
//	[server]
//	listen = "127.0.0.1:7488"   # "" disables the link server
//
//	[log]
//	dir = "~/.local/state/hitcard"
//	level = "info"
//
// Every field is optional and empty strings fall back to defaults, except
// server.listen where an explicit empty string turns the server off.
// Durations use Go syntax. Tilde expansion applies to paths.
//
// # Environment
//
//   - HITCARD_LOOKUP_URL overrides catalog.lookup_url
//   - HITCARD_LISTEN overrides server.listen
//   - HITCARD_LOG_LEVEL overrides log.level
//   - HITCARD_PLAYER_BACKEND overrides player.backend
//
// The CLI loads a .env file from the working directory before Load runs, so
// these can live there too.
//
// # Errors
//
// Load fails on unreadable files, TOML syntax errors, malformed durations,
// and scanner prefixes that are not slash-delimited path segments.
package config
