// Package logging provides a thin, tag-prefixing wrapper over the
// standard library logger, with a helper for participant-tagged lines.
package logging

import "log"

// Printf logs a tagged line in the form "[tag] message".
func Printf(tag, format string, args ...any) {
	log.Printf("["+tag+"] "+format, args...)
}

// Participant logs a line tagged with a participant id.
func Participant(id, format string, args ...any) {
	Printf("participant="+id, format, args...)
}

// Fatalf logs a tagged fatal line and exits, matching log.Fatalf.
func Fatalf(tag, format string, args ...any) {
	log.Fatalf("["+tag+"] "+format, args...)
}
