package eeprom25

import (
	"io"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// Transport performs one full-duplex transaction with chip select asserted
// for its whole duration. w and r have the same length and may alias.
//
// If a Transport also implements io.Closer, the EEPROM closes it.
type Transport interface {
	Tx(w, r []byte) error
}

// SPITransport adapts a periph.io SPI connection.
type SPITransport struct {
	conn spi.Conn
	cs   gpio.PinOut // nil when the port drives chip select itself
	port io.Closer
}

// NewSPITransport returns a Transport over conn. cs is driven low around each
// transaction when not nil. port, when not nil, is closed by Close.
func NewSPITransport(conn spi.Conn, cs gpio.PinOut, port io.Closer) *SPITransport {
	return &SPITransport{conn: conn, cs: cs, port: port}
}

func (t *SPITransport) Tx(w, r []byte) (err error) {
	if t.cs == nil {
		return t.conn.Tx(w, r)
	}
	if err = t.cs.Out(gpio.Low); err != nil {
		return err
	}
	defer func() {
		if csErr := t.cs.Out(gpio.High); csErr != nil && err == nil {
			err = csErr
		}
	}()
	err = t.conn.Tx(w, r)
	return
}

// Close deasserts chip select and closes the underlying port.
func (t *SPITransport) Close() error {
	var csErr error
	if t.cs != nil {
		csErr = t.cs.Out(gpio.High)
	}
	if t.port != nil {
		if err := t.port.Close(); err != nil {
			return err
		}
	}
	return csErr
}
