// Package config holds the bridge's runtime configuration, populated
// from CLI flags rather than the compile-time #define constants of
// the original firmware.
package config

import "time"

// Config mirrors the compile-time knobs of the original firmware's
// config.h: the GAP advertised identity, the pin assignments for the
// BLE co-processor, the SPI device node on Linux builds, and the
// optional feature toggles.
type Config struct {
	// Product and Description make up the advertised GAP device name,
	// "AT+GAPDEVNAME=<Product> <Description>".
	Product     string
	Description string

	// SPIDev is the Linux spidev device node, e.g. "/dev/spidev0.0".
	// Ignored on tinygo builds, which address the SPI peripheral
	// directly.
	SPIDev string

	// ResetPin, CSPin and IRQPin are BCM GPIO numbers on Linux builds.
	// Ignored on tinygo builds, whose pin assignments are fixed in
	// internal/bridgeio.
	ResetPin int
	CSPin    int
	IRQPin   int

	// FCPU documents the target's clock rate; it has no effect on the
	// Go build and is kept for parity with the firmware's SPI-speed
	// derivation. Nothing in this module reads it.
	FCPU int

	// Mouse mirrors the firmware's mouse option. Nothing in this
	// module reads it: ble.Transport.SendMouseMove is available
	// regardless, and no PS/2 mouse source exists.
	Mouse bool

	// SampleBattery enables the periodic AT+HWVBAT poll.
	SampleBattery bool

	Verbose bool
}

// Default returns the configuration baseline. The pin defaults are
// BCM GPIO numbers for the Linux debug build (reset=25, CS=8, IRQ=24),
// not the AVR pin names (D7/D4/C6) of the original firmware.
func Default() Config {
	return Config{
		Product:       "ps2bridge",
		Description:   "PS/2 to BLE HID bridge",
		SPIDev:        "/dev/spidev0.0",
		ResetPin:      25,
		CSPin:         8,
		IRQPin:        24,
		FCPU:          16_000_000,
		SampleBattery: true,
	}
}

// SDEPTimeout is the per-command deadline, equal to atcmd.Timeout and
// the ble package's own sdepTimeout. Nothing in this module references
// this constant; those packages use their own copies.
const SDEPTimeout = 150 * time.Millisecond
