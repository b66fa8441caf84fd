package sdep

import "time"

// Simulator is an in-memory stand-in for the BLE co-processor, used
// by package tests that exercise the atcmd and ble layers without
// real SPI hardware. It implements Bus, ChipSelect, IRQ and Clock.
type Simulator struct {
	clock time.Duration

	queue      []Packet // scripted responses, served in order
	nextIsRecv bool

	cur       []byte // bytes accumulated during the in-flight transaction
	curIsRecv bool
	recvIdx   int

	Sent []Packet // every packet successfully sent to the simulator
}

// NewSimulator returns a ready Simulator with an empty response queue.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// QueueResponse appends a packet to be delivered on the next receive.
func (s *Simulator) QueueResponse(p Packet) {
	s.queue = append(s.queue, p)
}

// Asserted reports whether a response is waiting, i.e. the IRQ line
// would be high.
func (s *Simulator) Asserted() bool {
	ready := len(s.queue) > 0
	if ready {
		s.nextIsRecv = true
	}
	return ready
}

// Assert begins a transaction; it infers the direction from whether
// Asserted() was just observed true by the caller.
func (s *Simulator) Assert() {
	s.curIsRecv = s.nextIsRecv
	s.nextIsRecv = false
	s.cur = nil
	s.recvIdx = 0
}

// Deassert ends a transaction, recording a completed send.
func (s *Simulator) Deassert() {
	s.nextIsRecv = false
	if !s.curIsRecv && len(s.cur) >= 4 {
		p := Packet{
			Type:    Type(s.cur[0]),
			Command: CommandID(s.cur[1]) | CommandID(s.cur[2])<<8,
		}
		length, more := splitLenMore(s.cur[3])
		p.Len = length
		p.More = more
		n := copy(p.Payload[:], s.cur[4:])
		_ = n
		s.Sent = append(s.Sent, p)
	}
	s.cur = nil
}

// Transfer implements Bus. During a send transaction it records the
// outgoing byte and reports the slave ready. During a receive
// transaction it serves the queued packet's serialized bytes.
func (s *Simulator) Transfer(tx byte) (byte, error) {
	if s.curIsRecv {
		if len(s.queue) == 0 {
			return byte(SlaveNotReady), nil
		}
		p := s.queue[0]
		raw := serialize(&p)
		if s.recvIdx >= len(raw) {
			s.queue = s.queue[1:]
			s.recvIdx = 0
			if len(s.queue) == 0 {
				return byte(SlaveNotReady), nil
			}
			p = s.queue[0]
			raw = serialize(&p)
		}
		b := raw[s.recvIdx]
		s.recvIdx++
		if s.recvIdx >= len(raw) {
			s.queue = s.queue[1:]
			s.recvIdx = 0
		}
		return b, nil
	}

	s.cur = append(s.cur, tx)
	return 0x00, nil
}

func serialize(p *Packet) []byte {
	raw := make([]byte, 4+int(p.Len))
	raw[0] = byte(p.Type)
	raw[1] = byte(p.Command)
	raw[2] = byte(p.Command >> 8)
	raw[3] = lenMore(p.Len, p.More)
	copy(raw[4:], p.Payload[:p.Len])
	return raw
}

// Now implements Clock with a monotonically-advancing fake timebase.
func (s *Simulator) Now() time.Duration {
	return s.clock
}

// Sleep implements Clock by advancing the fake timebase.
func (s *Simulator) Sleep(d time.Duration) {
	s.clock += d
}
