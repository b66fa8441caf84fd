package atcmd

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ps2bridge.dev/sdep"
)

func TestSendFragmentsLongCommand(t *testing.T) {
	sim := sdep.NewSimulator()
	f := &sdep.Framer{Bus: sim, CS: sim, IRQ: sim, Clock: sim}

	cmd := "AT+GAPDEVNAME=" + strings.Repeat("x", 30)
	err := Send(f, cmd, Timeout)
	require.NoError(t, err)

	var got strings.Builder
	for i, p := range sim.Sent {
		require.Equal(t, sdep.BleAtWrapper, p.Command)
		more := i != len(sim.Sent)-1
		assert.Equal(t, more, p.More, "fragment %d More flag", i)
		got.Write(p.Payload[:p.Len])
	}
	assert.Equal(t, cmd, got.String())
}

func TestReadResponseStripsOKLine(t *testing.T) {
	sim := sdep.NewSimulator()
	f := &sdep.Framer{Bus: sim, CS: sim, IRQ: sim, Clock: sim}

	first := sdep.Packet{Type: sdep.Response, Len: 16, More: true}
	copy(first.Payload[:], "connected=0x0100")
	second := sdep.Packet{Type: sdep.Response, Len: 4}
	copy(second.Payload[:], "\r\nOK")
	sim.QueueResponse(first)
	sim.QueueResponse(second)

	text, ok, err := ReadResponse(f, Timeout)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "connected=0x0100", text)
}

func TestReadResponseReportsError(t *testing.T) {
	sim := sdep.NewSimulator()
	f := &sdep.Framer{Bus: sim, CS: sim, IRQ: sim, Clock: sim}

	pkt := sdep.Packet{Type: sdep.Response, Len: 7}
	copy(pkt.Payload[:], "ERROR")
	sim.QueueResponse(pkt)

	text, ok, err := ReadResponse(f, Timeout)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", text)
}

func TestCommandWithoutResponseReturnsImmediately(t *testing.T) {
	sim := sdep.NewSimulator()
	f := &sdep.Framer{Bus: sim, CS: sim, IRQ: sim, Clock: sim}

	n, ok, err := Command(f, "AT+BLEKEYBOARDCODE=00-00-04-00-00-00-00-00", nil, Timeout)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, n)
	require.Len(t, sim.Sent, 3) // 42-byte command: 16 + 16 + 10
}

func TestCommandTimeoutWhenNoResponseQueued(t *testing.T) {
	sim := sdep.NewSimulator()
	f := &sdep.Framer{Bus: sim, CS: sim, IRQ: sim, Clock: sim}

	buf := make([]byte, 32)
	_, ok, err := Command(f, "AT+GAPGETCONN", buf, time.Microsecond)
	assert.ErrorIs(t, err, sdep.ErrTimeout)
	assert.False(t, ok)
}
