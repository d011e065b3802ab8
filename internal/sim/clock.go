package sim

import (
	"fmt"
	"math"
	"time"
)

// Stepper is anything advanced in fixed ticks.
type Stepper interface {
	Advance(dt float64) error
}

// Clock converts variable real elapsed time into fixed ticks of a Stepper.
// Leftover time is carried to the next Feed, never dropped.
type Clock struct {
	target Stepper
	fixed  float64
	acc    float64

	// MaxTicks caps the ticks run by one Feed. 0 means no cap.
	MaxTicks int
}

func NewClock(target Stepper, fixedDt float64) (*Clock, error) {
	if !(fixedDt > 0) || math.IsInf(fixedDt, 0) {
		return nil, fmt.Errorf("clock tick must be positive, got %v", fixedDt)
	}
	return &Clock{target: target, fixed: fixedDt}, nil
}

// Feed adds elapsed seconds and runs every whole tick now due.
func (c *Clock) Feed(elapsed float64) (int, error) {
	if elapsed < 0 || math.IsNaN(elapsed) || math.IsInf(elapsed, 0) {
		return 0, fmt.Errorf("elapsed must be finite and non-negative, got %v", elapsed)
	}
	c.acc += elapsed

	ticks := 0
	for c.acc >= c.fixed {
		if c.MaxTicks > 0 && ticks >= c.MaxTicks {
			break
		}
		if err := c.target.Advance(c.fixed); err != nil {
			return ticks, err
		}
		c.acc -= c.fixed
		ticks++
	}
	return ticks, nil
}

// FeedDuration is Feed for wall-clock durations.
func (c *Clock) FeedDuration(d time.Duration) (int, error) {
	return c.Feed(d.Seconds())
}

// Alpha is the fraction of a tick waiting in the accumulator, for interpolation.
func (c *Clock) Alpha() float64 {
	return math.Min(c.acc/c.fixed, 1)
}

func (c *Clock) Pending() float64 { return c.acc }

func (c *Clock) Fixed() float64 { return c.fixed }
