package tasks

import "time"

// Config holds configuration for the background task queue.
type Config struct {
	// Workers is the number of concurrent task workers.
	Workers int

	// ReleaseAfter is when tasks stuck in a worker are handed back to the queue.
	ReleaseAfter time.Duration

	// CleanupInterval is how often backlite removes finished tasks.
	CleanupInterval time.Duration
}

// DefaultConfig returns the queue settings used when nothing is configured.
// Maintenance work is light, so a single worker is enough.
func DefaultConfig() Config {
	return Config{
		Workers:         1,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}
