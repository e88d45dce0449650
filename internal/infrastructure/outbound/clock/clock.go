package clock

import (
	"time"

	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

var _ ports.Clock = (*RealClock)(nil)

// RealClock implements ports.Clock using the system clock.
type RealClock struct{}

// New creates a new RealClock.
func New() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time { return time.Now() }

func (c *RealClock) Since(t time.Time) time.Duration { return time.Since(t) }
