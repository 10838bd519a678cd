// Command autoplayctl inspects and manages the session saved by the autoplay
// daemon. It reads the same configuration (AUTOPLAY_CONFIG and AUTOPLAY_*
// variables) and opens the state store directly.
//
// Usage:
//
//	autoplayctl show [--json]
//	autoplayctl history [-n N]
//	autoplayctl reset [--yes]
//	autoplayctl config
//	autoplayctl version
//
// Commands:
//
//	show     Print the saved session. On a terminal it is summarized;
//	         otherwise the raw JSON document is written.
//
//	history  List past captures, newest first. Requires the sqlite backend.
//
//	reset    Delete the saved session so the next start restores nothing.
//	         Asks for confirmation unless --yes is given; refuses when stdin
//	         is not a terminal.
//
//	config   Validate the configuration and print the effective settings
//	         and overrides.
//
// Stop the daemon before resetting: it saves the session again on shutdown.
package main
