package eeprom25

import (
	"bytes"
	"testing"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

func newPlayback(t *testing.T, ops ...conntest.IO) (*spitest.Playback, spi.Conn) {
	t.Helper()
	p := &spitest.Playback{Playback: conntest.Playback{Ops: ops, DontPanic: true}}
	conn, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	return p, conn
}

func TestSPITransportChipSelect(t *testing.T) {
	p, conn := newPlayback(t, conntest.IO{W: []byte{cmdReadStatus, 0}, R: []byte{0, 0x02}})
	cs := &gpiotest.Pin{N: "CS", L: gpio.High}
	tr := NewSPITransport(conn, cs, p)

	buf := []byte{cmdReadStatus, 0}
	if err := tr.Tx(buf, buf); err != nil {
		t.Fatalf("Tx() failed: %v", err)
	}
	if buf[1] != 0x02 {
		t.Errorf("Tx() read % X", buf)
	}
	if cs.Read() != gpio.High {
		t.Errorf("chip select left asserted")
	}

	// No recorded I/O left; the error must still release chip select.
	if err := tr.Tx(buf, buf); err == nil {
		t.Errorf("Tx() past the recording succeeded")
	}
	if cs.Read() != gpio.High {
		t.Errorf("chip select left asserted after error")
	}
	if err := tr.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}

// TestEEPROMWireFormat checks the exact bytes on the bus for a session.
func TestEEPROMWireFormat(t *testing.T) {
	p, conn := newPlayback(t,
		// RDID with dummy address, signature in the fifth byte
		conntest.IO{W: []byte{0xAB, 0, 0, 0, 0}, R: []byte{0, 0, 0, 0, Signature}},
		// READ 2 bytes at 0x010203
		conntest.IO{W: []byte{0x03, 0x01, 0x02, 0x03, 0, 0}, R: []byte{0, 0, 0, 0, 0xAA, 0xBB}},
		// Write one byte at 0x1FFFF: RDSR, WREN, WRITE, RDSR
		conntest.IO{W: []byte{0x05, 0}, R: []byte{0, 0}},
		conntest.IO{W: []byte{0x06}, R: []byte{0}},
		conntest.IO{W: []byte{0x02, 0x01, 0xFF, 0xFF, 0x5A}, R: []byte{0, 0, 0, 0, 0}},
		conntest.IO{W: []byte{0x05, 0}, R: []byte{0, 0}},
		// Deep power-down
		conntest.IO{W: []byte{0xB9}, R: []byte{0}},
	)
	e, err := New(NewSPITransport(conn, nil, p), WithTiming(Timing{}))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	got, err := e.Read(0x010203, 2)
	if err != nil || !bytes.Equal(got, []byte{0xAA, 0xBB}) {
		t.Errorf("Read() = % X, %v", got, err)
	}
	if err := e.Write(Capacity-1, []byte{0x5A}); err != nil {
		t.Errorf("Write() failed: %v", err)
	}
	if err := e.DeepPowerDown(); err != nil {
		t.Errorf("DeepPowerDown() failed: %v", err)
	}
	// Close fails if the recording was not fully played back.
	if err := e.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}
