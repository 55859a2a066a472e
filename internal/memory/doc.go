// Package memory configures Go's soft memory limit and provides a pressure
// monitor for pacing compression work.
//
// Transcoding holds entire payloads plus decoded frames in memory, and the
// ffmpeg subprocesses it spawns allocate outside the Go heap. In a
// memory-limited container that combination invites OOM kills, because
// GOMEMLIMIT is never derived from cgroup limits automatically.
//
// Call [ConfigureFromEnv] first thing in main to derive GOMEMLIMIT from the
// MEMORY_LIMIT environment variable (typically injected via the Kubernetes
// Downward API), reserving a share of the container limit for subprocesses.
// A [Monitor] can then pace batch work: callers block in [Monitor.WaitIfPaused]
// while heap usage sits above the critical water mark.
package memory
