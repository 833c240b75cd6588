package worker

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff returns the delay before retry number attempt (0-based).
func ExponentialBackoff(attempt int) time.Duration {
	base := 500 * time.Millisecond

	capDelay := 30 * time.Second
	// attempt=0 => 500ms
	// attempt=1 => 1s
	// attempt=2 => 2s

	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(base) * multiple)

	if delay > capDelay {
		delay = capDelay
	}

	// up to 250ms of jitter
	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}
