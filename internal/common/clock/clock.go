package clock

import "time"

//go:generate mockgen -package=mocks -destination=mocks/mock_clock.go github.com/dicechamber/dicechamber/internal/common/clock Clock

// Clock abstracts the source of the current time
type Clock interface {
	Now() time.Time
}

// DefaultClock implements the Clock interface using the system clock
type DefaultClock struct{}

// New creates a new system clock
func New() *DefaultClock {
	return &DefaultClock{}
}

// Now returns the current time
func (c *DefaultClock) Now() time.Time {
	return time.Now()
}
