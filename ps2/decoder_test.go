package ps2

import (
	"testing"

	"ps2bridge.dev/matrix"
)

// sliceSource replays a fixed byte sequence, then reports ErrNoData.
type sliceSource struct {
	bytes []byte
	pos   int
}

func (s *sliceSource) Recv() (byte, error) {
	if s.pos >= len(s.bytes) {
		return 0, ErrNoData
	}
	b := s.bytes[s.pos]
	s.pos++
	return b, nil
}

func feed(t *testing.T, d *Decoder, bytes []byte) {
	t.Helper()
	src := &sliceSource{bytes: bytes}
	for src.pos < len(src.bytes) {
		if err := d.Scan(src); err != nil {
			t.Fatalf("Scan: %v", err)
		}
	}
}

// scanOnce runs a single Scan call against a source with no bytes
// available, exercising the Pause pseudo-break injection path.
func scanOnce(t *testing.T, d *Decoder) {
	t.Helper()
	if err := d.Scan(&sliceSource{}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
}

func TestScenario1PlainMakeBreak(t *testing.T) {
	var m matrix.Matrix
	d := New(&m, nil)
	feed(t, d, []byte{0x1C, 0xF0, 0x1C})
	if m.KeyCount() != 0 {
		t.Fatalf("key count = %d, want 0", m.KeyCount())
	}
}

func TestScenario2ShiftBracketsAbsorbed(t *testing.T) {
	var m matrix.Matrix
	d := New(&m, nil)
	// E0 F0 12 E0 75 E0 F0 75 E0 F0 12
	feed(t, d, []byte{
		0xE0, 0xF0, 0x12,
		0xE0, 0x75,
		0xE0, 0xF0, 0x75,
		0xE0, 0xF0, 0x12,
	})
	if m.KeyCount() != 0 {
		t.Fatalf("key count = %d, want 0", m.KeyCount())
	}
}

func TestScenario2MatchesUnbracketed(t *testing.T) {
	var withBrackets, without matrix.Matrix
	dWith := New(&withBrackets, nil)
	dWithout := New(&without, nil)

	feed(t, dWith, []byte{
		0xE0, 0xF0, 0x12,
		0xE0, 0x75,
		0xE0, 0xF0, 0x75,
		0xE0, 0xF0, 0x12,
	})
	feed(t, dWithout, []byte{
		0xE0, 0x75,
		0xE0, 0xF0, 0x75,
	})
	for row := 0; row < matrix.Rows; row++ {
		if withBrackets.Row(row) != without.Row(row) {
			t.Fatalf("row %d differs: %08b vs %08b", row, withBrackets.Row(row), without.Row(row))
		}
	}
}

func TestScenario3PauseDuration(t *testing.T) {
	var m matrix.Matrix
	d := New(&m, nil)
	feed(t, d, []byte{0xE1, 0x14, 0x77, 0xE1, 0xF0, 0x14, 0xF0, 0x77})
	if !m.IsOn(int(matrix.Pause>>3), int(matrix.Pause&7)) {
		t.Fatal("expected Pause set immediately after the full sequence")
	}
	scanOnce(t, d)
	if m.IsOn(int(matrix.Pause>>3), int(matrix.Pause&7)) {
		t.Fatal("expected Pause cleared after one further scan")
	}
	if m.KeyCount() != 0 {
		t.Fatalf("key count = %d, want 0", m.KeyCount())
	}
}

func TestCtrldPauseSequence(t *testing.T) {
	var m matrix.Matrix
	d := New(&m, nil)
	feed(t, d, []byte{0xE0, 0x7E, 0xE0, 0xF0, 0x7E})
	if !m.IsOn(int(matrix.Pause>>3), int(matrix.Pause&7)) {
		t.Fatal("expected Pause set after ctrl'd pause sequence")
	}
}

type countingHost struct {
	clears int
	reload int
}

func (h *countingHost) ClearKeyboard()                { h.clears++ }
func (h *countingHost) ReloadLEDs()                   { h.reload++ }
func (h *countingHost) Logf(format string, args ...any) {}

func TestScenario4Overrun(t *testing.T) {
	var m matrix.Matrix
	host := &countingHost{}
	d := New(&m, host)
	feed(t, d, []byte{0x1C}) // press a key
	if m.KeyCount() != 1 {
		t.Fatalf("key count = %d, want 1", m.KeyCount())
	}
	feed(t, d, []byte{0x00})
	if m.KeyCount() != 0 {
		t.Fatalf("key count after overrun = %d, want 0", m.KeyCount())
	}
	if host.clears != 1 {
		t.Fatalf("clears = %d, want 1", host.clears)
	}
}

func TestP2RecoveryFromDesync(t *testing.T) {
	cases := [][]byte{
		{0x80},
		{0xE0, 0x80},
		{0xF0, 0x80},
		{0xE0, 0xF0, 0x80},
	}
	for _, seq := range cases {
		var m matrix.Matrix
		d := New(&m, nil)
		feed(t, d, seq)
		if m.KeyCount() != 0 {
			t.Fatalf("seq %x: key count = %d, want 0", seq, m.KeyCount())
		}
		if d.state != stateInit {
			t.Fatalf("seq %x: state = %v, want stateInit", seq, d.state)
		}
	}
}

func TestF7AndAltPrintScreen(t *testing.T) {
	var m matrix.Matrix
	d := New(&m, nil)
	feed(t, d, []byte{0x83})
	if !m.IsOn(int(matrix.KCF7>>3), int(matrix.KCF7&7)) {
		t.Fatal("expected KCF7 set")
	}
	feed(t, d, []byte{0xF0, 0x83})
	if m.IsOn(int(matrix.KCF7>>3), int(matrix.KCF7&7)) {
		t.Fatal("expected KCF7 cleared")
	}
	feed(t, d, []byte{0x84})
	if !m.IsOn(int(matrix.PrintScreen>>3), int(matrix.PrintScreen&7)) {
		t.Fatal("expected PrintScreen set")
	}
}

func TestDuplicateF0StaysInF0(t *testing.T) {
	var m matrix.Matrix
	d := New(&m, nil)
	feed(t, d, []byte{0xF0, 0xF0})
	if d.state != stateF0 {
		t.Fatalf("state = %v, want stateF0", d.state)
	}
	feed(t, d, []byte{0x1C})
	if m.IsOn(0x1C>>3, 0x1C&7) {
		t.Fatal("0x1C after F0,F0 should be a break, not a make")
	}
}

func TestPartialPauseSequenceDiscarded(t *testing.T) {
	var m matrix.Matrix
	d := New(&m, nil)
	feed(t, d, []byte{0xE1, 0x14, 0x99}) // deviates at step 3
	if d.state != stateInit {
		t.Fatalf("state = %v, want stateInit", d.state)
	}
	if m.KeyCount() != 0 {
		t.Fatalf("key count = %d, want 0", m.KeyCount())
	}
}

func TestNoDataIsNoop(t *testing.T) {
	var m matrix.Matrix
	d := New(&m, nil)
	src := &sliceSource{}
	if err := d.Scan(src); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if d.state != stateInit || m.KeyCount() != 0 {
		t.Fatal("no-data scan should be a pure no-op")
	}
}
