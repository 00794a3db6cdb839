package auth

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig holds configuration for timing attack prevention
type TimingConfig struct {
	BaseDelay   time.Duration
	RandomDelay time.Duration
}

// DefaultTimingConfig pads failed logins to roughly half a second.
var DefaultTimingConfig = TimingConfig{
	BaseDelay:   500 * time.Millisecond,
	RandomDelay: 100 * time.Millisecond,
}

// TimingDelay pads failed authentication attempts to a common duration so
// "unknown email" and "wrong password" are indistinguishable by latency.
type TimingDelay struct {
	config TimingConfig
}

// NewTimingDelay creates a new TimingDelay instance
func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{
		config: config,
	}
}

// cryptoRandDuration returns a secure random duration in [0, max)
func cryptoRandDuration(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return 0
	}

	randomValue := binary.BigEndian.Uint64(randomBytes)
	return time.Duration(randomValue % uint64(max))
}

// WaitFrom sleeps until at least base+random has elapsed since start.
// Successful attempts return immediately. It returns early when ctx ends.
func (td *TimingDelay) WaitFrom(ctx context.Context, start time.Time, success bool) {
	if success {
		return
	}

	target := td.config.BaseDelay + cryptoRandDuration(td.config.RandomDelay)
	remaining := target - time.Since(start)
	if remaining <= 0 {
		return
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
