package chunkuploader

import (
	"runtime"
)

// Config holds configuration for the chunk uploader.
type Config struct {
	// Concurrency is the maximum number of parallel chunk uploads.
	// 1 sends the chunks one after the other.
	// Default: min(NumCPU * 2, 8), minimum 2
	Concurrency int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency: DefaultConcurrency(),
	}
}

// DefaultConcurrency calculates the default concurrency based on CPU count.
func DefaultConcurrency() int {
	c := runtime.NumCPU() * 2

	if c > 8 {
		c = 8
	}

	if c < 2 {
		c = 2
	}

	return c
}
