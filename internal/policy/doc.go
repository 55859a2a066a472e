// Package policy holds the pure quality-to-output planning functions and the
// eligibility rules for media compression: target dimensions, bitrates, audio
// render parameters, and size gates. Nothing in this package performs I/O.
package policy
