//go:build tinygo

package ps2

import "machine"

// InterruptSource assembles PS/2 frames from a falling-edge interrupt
// on the clock pin, handing completed bytes to Recv through a small
// buffered channel. It implements ByteSource.
type InterruptSource struct {
	clk, dat machine.Pin

	bitPos int
	frame  byte
	parity byte

	bytes chan byte
}

// NewInterruptSource configures clk and dat as pull-up inputs and
// attaches the frame-assembly interrupt handler to clk.
func NewInterruptSource(clk, dat machine.Pin) *InterruptSource {
	s := &InterruptSource{
		clk:   clk,
		dat:   dat,
		bytes: make(chan byte, 16),
	}
	clk.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	dat.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	clk.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		s.sample()
	})
	return s
}

func (s *InterruptSource) sample() {
	bit := s.dat.Get()
	switch {
	case s.bitPos == 0:
		if bit {
			s.reset()
			return
		}
	case s.bitPos >= 1 && s.bitPos <= 8:
		if bit {
			s.frame |= 1 << (s.bitPos - 1)
			s.parity ^= 1
		}
	case s.bitPos == 9:
		want := s.parity ^ 1
		if bit != (want == 1) {
			s.reset()
			return
		}
	case s.bitPos == 10:
		frame := s.frame
		s.reset()
		if bit {
			select {
			case s.bytes <- frame:
			default: // overrun: drop the byte, decoder's own overrun path covers reports
			}
		}
		return
	}
	s.bitPos++
}

func (s *InterruptSource) reset() {
	s.bitPos = 0
	s.frame = 0
	s.parity = 0
}

// Recv returns the next assembled byte, or ErrNoData if none is
// pending. It never blocks, matching the decoder's one-byte-per-tick
// scan discipline.
func (s *InterruptSource) Recv() (byte, error) {
	select {
	case b := <-s.bytes:
		return b, nil
	default:
		return 0, ErrNoData
	}
}
