package sdep

import (
	"testing"
	"time"
)

// scriptedBus returns a fixed sequence of rx bytes for successive
// Transfer calls and records every tx byte it was given.
type scriptedBus struct {
	rx  []byte
	idx int
	tx  []byte
}

func (b *scriptedBus) Transfer(tx byte) (byte, error) {
	b.tx = append(b.tx, tx)
	if b.idx >= len(b.rx) {
		return 0, nil
	}
	r := b.rx[b.idx]
	b.idx++
	return r, nil
}

type fakeCS struct {
	asserts, deasserts int
}

func (c *fakeCS) Assert()   { c.asserts++ }
func (c *fakeCS) Deassert() { c.deasserts++ }

type fakeIRQ struct{ high bool }

func (i *fakeIRQ) Asserted() bool { return i.high }

type fakeClock struct{ now time.Duration }

func (c *fakeClock) Now() time.Duration { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now += d }

func TestSendPacketSuccess(t *testing.T) {
	bus := &scriptedBus{rx: []byte{0x00}}
	cs := &fakeCS{}
	f := &Framer{Bus: bus, CS: cs, Clock: &fakeClock{}}
	msg := &Packet{Type: Command, Command: BleAtWrapper, Len: 3}
	copy(msg.Payload[:], "abc")
	ok, err := f.SendPacket(msg, 100*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("SendPacket: ok=%v err=%v", ok, err)
	}
	want := []byte{byte(Command), byte(BleAtWrapper & 0xFF), byte(BleAtWrapper >> 8), 3, 'a', 'b', 'c'}
	if string(bus.tx) != string(want) {
		t.Fatalf("tx = %x, want %x", bus.tx, want)
	}
	if cs.asserts != 1 || cs.deasserts != 1 {
		t.Fatalf("CS asserts=%d deasserts=%d, want 1,1", cs.asserts, cs.deasserts)
	}
}

func TestSendPacketBackOffThenReady(t *testing.T) {
	bus := &scriptedBus{rx: []byte{byte(SlaveNotReady), byte(SlaveNotReady), 0x00}}
	cs := &fakeCS{}
	clock := &fakeClock{}
	f := &Framer{Bus: bus, CS: cs, Clock: clock}
	msg := &Packet{Type: Command, Command: BleAtWrapper, Len: 0}
	ok, err := f.SendPacket(msg, time.Second)
	if err != nil || !ok {
		t.Fatalf("SendPacket: ok=%v err=%v", ok, err)
	}
	if cs.asserts != 3 {
		t.Fatalf("asserts = %d, want 3 (initial + 2 retries)", cs.asserts)
	}
	if clock.now < 2*BackOff {
		t.Fatalf("expected at least 2 backoffs of sleep, got %v", clock.now)
	}
}

func TestSendPacketTimeout(t *testing.T) {
	bus := &scriptedBus{rx: []byte{byte(SlaveNotReady)}}
	cs := &fakeCS{}
	clock := &fakeClock{}
	f := &Framer{Bus: bus, CS: cs, Clock: clock}

	// Make every Transfer return SlaveNotReady forever, and make the
	// clock jump past timeout after the first back-off sleep.
	_ = clock
	bus.rx = nil
	f.Bus = alwaysNotReady{}
	f.Clock = &jumpingClock{advance: time.Hour}
	msg := &Packet{Type: Command}
	ok, err := f.SendPacket(msg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected timeout failure")
	}
}

type alwaysNotReady struct{}

func (alwaysNotReady) Transfer(tx byte) (byte, error) { return byte(SlaveNotReady), nil }

// jumpingClock advances its timebase by a large step on every Sleep,
// simulating a deadline that elapses after a single back-off.
type jumpingClock struct {
	now     time.Duration
	advance time.Duration
}

func (c *jumpingClock) Now() time.Duration  { return c.now }
func (c *jumpingClock) Sleep(d time.Duration) { c.now += c.advance }

func TestRecvPacketNoIRQTimeout(t *testing.T) {
	f := &Framer{IRQ: &fakeIRQ{high: false}, Clock: &fakeClock{}}
	var msg Packet
	ok, err := f.RecvPacket(&msg, time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no-IRQ timeout")
	}
}

func TestRecvPacketReadsHeaderAndPayload(t *testing.T) {
	payload := []byte("abcdefghijklmnop")
	rx := append([]byte{byte(Response), 0x00, 0x0A, lenMore(16, false)}, payload...)
	bus := &scriptedBus{rx: rx}
	cs := &fakeCS{}
	f := &Framer{Bus: bus, CS: cs, IRQ: &fakeIRQ{high: true}, Clock: &fakeClock{}}
	var msg Packet
	ok, err := f.RecvPacket(&msg, time.Second)
	if err != nil || !ok {
		t.Fatalf("RecvPacket: ok=%v err=%v", ok, err)
	}
	if msg.Type != Response || msg.Len != 16 || msg.More {
		t.Fatalf("unexpected header: %+v", msg)
	}
	if string(msg.Payload[:msg.Len]) != string(payload) {
		t.Fatalf("payload = %q, want %q", msg.Payload[:msg.Len], payload)
	}
}

func TestSimulatorRoundTrip(t *testing.T) {
	sim := NewSimulator()
	f := &Framer{Bus: sim, CS: sim, IRQ: sim, Clock: sim}

	msg := &Packet{Type: Command, Command: BleAtWrapper, Len: 5}
	copy(msg.Payload[:], "hello")
	ok, err := f.SendPacket(msg, time.Second)
	if err != nil || !ok {
		t.Fatalf("SendPacket: ok=%v err=%v", ok, err)
	}
	if len(sim.Sent) != 1 || string(sim.Sent[0].Payload[:sim.Sent[0].Len]) != "hello" {
		t.Fatalf("simulator did not record the sent packet: %+v", sim.Sent)
	}

	resp := Packet{Type: Response, Len: 2}
	copy(resp.Payload[:], "ok")
	sim.QueueResponse(resp)

	var got Packet
	ok, err = f.RecvPacket(&got, time.Second)
	if err != nil || !ok {
		t.Fatalf("RecvPacket: ok=%v err=%v", ok, err)
	}
	if got.Type != Response || string(got.Payload[:got.Len]) != "ok" {
		t.Fatalf("got = %+v", got)
	}
}
