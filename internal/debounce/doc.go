// Package debounce provides a single-worker cool-down timer used to coalesce
// bursts of player events into one state save.
package debounce
