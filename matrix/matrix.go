// Package matrix implements the 32x8 key-state bitmap shared between
// the PS/2 decoder and a keymap consumer.
//
// Scan Code Set 2 is assigned into a sparse 256 (32x8) cell matrix:
// values below 0x80 are plain scan codes, values at or above 0x80
// encode an E0-prefixed scan code as (original | 0x80). A handful of
// codes don't fit that scheme and are mapped to reserved positions.
package matrix

import "fmt"

const (
	Rows = 32
	Cols = 8
)

// Position is a matrix address: (row<<3)|col.
type Position byte

// Reserved positions for scan codes that don't fit the plain/E0-prefixed
// scheme.
const (
	KCF7        Position = 0x83
	PrintScreen Position = 0xFC
	Pause       Position = 0xFE
)

func (p Position) row() int { return int(p >> 3) }
func (p Position) col() int { return int(p & 0x07) }

// Matrix is a 32x8 bit array of currently-pressed keys.
type Matrix struct {
	rows     [Rows]byte
	modified bool
}

// BeginScan resets the observable modification flag. It must be
// called once at the start of each scan tick, before any Make/Break
// calls for that tick.
func (m *Matrix) BeginScan() {
	m.modified = false
}

// Modified reports whether Make or Break changed a bit since the last
// BeginScan.
func (m *Matrix) Modified() bool {
	return m.modified
}

// Make sets the bit at pos. It marks the matrix modified iff the bit
// was previously clear.
func (m *Matrix) Make(pos Position) {
	if !m.IsOn(pos.row(), pos.col()) {
		m.rows[pos.row()] |= 1 << uint(pos.col())
		m.modified = true
	}
}

// Break clears the bit at pos. It marks the matrix modified iff the
// bit was previously set.
func (m *Matrix) Break(pos Position) {
	if m.IsOn(pos.row(), pos.col()) {
		m.rows[pos.row()] &^= 1 << uint(pos.col())
		m.modified = true
	}
}

// Clear unconditionally zeroes the matrix. It does not affect
// Modified; callers that need to observe a Clear as a modification
// should check before clearing.
func (m *Matrix) Clear() {
	for i := range m.rows {
		m.rows[i] = 0
	}
}

// IsOn reports whether the key at (row, col) is currently pressed.
func (m *Matrix) IsOn(row, col int) bool {
	return m.rows[row]&(1<<uint(col)) != 0
}

// Row returns the raw bitmap byte for row.
func (m *Matrix) Row(row int) byte {
	return m.rows[row]
}

// KeyCount returns the number of currently-pressed keys.
func (m *Matrix) KeyCount() int {
	count := 0
	for _, r := range m.rows {
		count += popcount(r)
	}
	return count
}

func popcount(b byte) int {
	n := 0
	for b != 0 {
		n += int(b & 1)
		b >>= 1
	}
	return n
}

// String renders a debug dump, one line of binary per row.
func (m *Matrix) String() string {
	s := "r/c 76543210\n"
	for row := 0; row < Rows; row++ {
		s += fmt.Sprintf("%02x: %08b\n", row, m.rows[row])
	}
	return s
}
