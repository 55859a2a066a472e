// Package progress defines the progress-reporting contract shared by the
// transcoders and the dispatcher: a percent/message sink, a monotonic guard,
// band remapping for nested reporters, and a bounded-channel adapter.
package progress
