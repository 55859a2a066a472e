// Package logging provides leveled logging configured via environment
// variables (DEBUG, LOG_LEVEL).
package logging
