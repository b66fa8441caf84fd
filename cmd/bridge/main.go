// command bridge reads a PS/2 keyboard's Scan Code Set 2 stream into
// the key matrix and runs the BLE co-processor's transport scheduler
// (bring-up, connection and battery polling) in the same loop. Matrix
// transitions go to a keymap.Provider; the built-in keymap.Identity
// discards them, so this binary sends no key reports to the
// co-processor.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ps2bridge.dev/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bridge: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	host := "none"

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Bridge a PS/2 keyboard to a BLE-HID co-processor",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
			ver, err := readVersion()
			if err != nil {
				log.Printf("bridge: version unknown: %v", err)
			} else if ver != "" {
				log.Printf("bridge: version %s", ver)
			}
			return run(cfg, host)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Product, "product", cfg.Product, "advertised GAP product name")
	flags.StringVar(&cfg.Description, "description", cfg.Description, "advertised GAP description")
	flags.StringVar(&cfg.SPIDev, "spidev", cfg.SPIDev, "SPI device node (linux builds only)")
	flags.IntVar(&cfg.ResetPin, "reset-pin", cfg.ResetPin, "BCM GPIO number of the co-processor reset line")
	flags.IntVar(&cfg.CSPin, "cs-pin", cfg.CSPin, "BCM GPIO number of the SPI chip-select line")
	flags.IntVar(&cfg.IRQPin, "irq-pin", cfg.IRQPin, "BCM GPIO number of the co-processor IRQ line")
	flags.IntVar(&cfg.FCPU, "fcpu", cfg.FCPU, "target clock rate (recorded in the config; has no effect)")
	flags.BoolVar(&cfg.Mouse, "mouse", cfg.Mouse, "mouse option (recorded in the config; has no effect)")
	flags.BoolVar(&cfg.SampleBattery, "sample-battery", cfg.SampleBattery, "periodically sample the co-processor's battery voltage")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "log decoder and transport diagnostics (AT command text is not logged)")
	flags.StringVar(&host, "host", host, `HID report sink: "none" or a file path (the file is created; no reports are written to it)`)

	return cmd
}

// readVersion reads a sh_version-style key from /proc/cmdline, for
// parity with the original firmware's bootloader-embedded version
// string.
func readVersion() (string, error) {
	cmdline, err := os.ReadFile("/proc/cmdline")
	if err != nil {
		return "", err
	}
	for _, kv := range strings.Split(string(cmdline), " ") {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == "ps2bridge_version" {
			return v, nil
		}
	}
	return "", nil
}
