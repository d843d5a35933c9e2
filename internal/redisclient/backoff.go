package redisclient

import (
	"math"
	"math/rand"
	"time"
)

const (
	backoffBase = 200 * time.Millisecond
	backoffCap  = 5 * time.Second
)

// backoff doubles from backoffBase per attempt (0 => 200ms, 1 => 400ms, ...)
// up to backoffCap, plus up to 100ms of jitter.
func backoff(attempt int) time.Duration {
	delay := time.Duration(float64(backoffBase) * math.Pow(2, float64(attempt)))

	if delay > backoffCap || delay <= 0 {
		delay = backoffCap
	}

	return delay + time.Duration(rand.Intn(100))*time.Millisecond
}
