// Package keymap defines the translation boundary between a decoded
// PS/2 matrix position and the HID usage codes/actions a specific
// layout maps it to. The bridge core only depends on the Provider
// interface; concrete layouts live outside this module.
package keymap

import "ps2bridge.dev/matrix"

// Event is one matrix transition handed to a Provider: a position
// that just changed, and whether it is now held down.
type Event struct {
	Pos     matrix.Position
	Pressed bool
}

// Provider translates matrix transitions into HID output. Scan is
// called once per scan tick with every position that changed since
// the previous call.
type Provider interface {
	Scan(events []Event)
}

// Identity is a no-op Provider, useful for driving the decoder and
// transport layers in isolation from any particular keyboard layout.
type Identity struct{}

func (Identity) Scan(events []Event) {}
