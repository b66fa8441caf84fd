//go:build tinygo

package driver

import (
	"time"

	"machine"
)

// ChipSelect drives an active-low chip-select line manually.
type ChipSelect struct {
	pin machine.Pin
}

// OpenChipSelect configures pin as a high-idle output.
func OpenChipSelect(pin machine.Pin) *ChipSelect {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.High()
	return &ChipSelect{pin: pin}
}

func (c *ChipSelect) Assert()   { c.pin.Low() }
func (c *ChipSelect) Deassert() { c.pin.High() }

// IRQ reads the co-processor's interrupt line.
type IRQ struct {
	pin machine.Pin
}

// OpenIRQ configures pin as an input.
func OpenIRQ(pin machine.Pin) *IRQ {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return &IRQ{pin: pin}
}

func (i *IRQ) Asserted() bool { return i.pin.Get() }

// Reset drives the co-processor's active-low hardware reset line.
type Reset struct {
	pin machine.Pin
}

// OpenReset configures pin as a high-idle output.
func OpenReset(pin machine.Pin) *Reset {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.High()
	return &Reset{pin: pin}
}

// Pulse resets the co-processor per the original firmware's timing.
func (r *Reset) Pulse() {
	r.pin.Low()
	time.Sleep(10 * time.Millisecond)
	r.pin.High()
	time.Sleep(time.Second)
}

// Clock implements sdep.Clock using time.Now, which TinyGo backs with
// the board's monotonic timer.
type Clock struct{ start time.Time }

func NewClock() *Clock { return &Clock{start: time.Now()} }

func (c *Clock) Now() time.Duration    { return time.Since(c.start) }
func (c *Clock) Sleep(d time.Duration) { time.Sleep(d) }
