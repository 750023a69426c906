package eeprom25

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"
)

// SPI host adapters supported by Open.
const (
	AdapterFTDI   = "ftdi"
	AdapterSPIDev = "spidev"
)

// Config describes how the EEPROM is wired to the host.
type Config struct {
	// Adapter is AdapterFTDI (default) or AdapterSPIDev.
	Adapter string
	// Port is the spireg name of the SPI port for AdapterSPIDev, e.g.
	// "/dev/spidev0.0". Empty selects the first registered port.
	Port string
	// Clock is the SPI clock. Defaults to MaxClock(Vcc).
	Clock physic.Frequency
	// Vcc is the supply voltage of the EEPROM. Defaults to 3.3V.
	Vcc physic.ElectricPotential
	// Hold and WP are gpioreg pin names of the HOLD and WP lines for
	// AdapterSPIDev. Leave empty when the lines are tied high.
	Hold string
	WP   string
	// Options are passed to New.
	Options []Option
}

// Device is an EEPROM opened on a host SPI adapter.
type Device struct {
	FTDI   *ftdi.FT232H // nil unless AdapterFTDI
	EEPROM *EEPROM

	cs   gpio.PinIO // nil when the port drives chip select
	hold gpio.PinIO
	wp   gpio.PinIO

	clock physic.Frequency
	port  spi.PortCloser
	conn  spi.Conn
}

var (
	hostMu          sync.Mutex
	hostInitialized bool
	hostInit        = func() error {
		_, err := host.Init()
		return err
	}
)

// initHost loads the periph.io host drivers. A failed attempt is retried by
// the next call.
func initHost() error {
	hostMu.Lock()
	defer hostMu.Unlock()
	if hostInitialized {
		return nil
	}
	if err := hostInit(); err != nil {
		return fmt.Errorf("host initialization failed: %w", err)
	}
	hostInitialized = true
	return nil
}

// Open initializes the host, connects the SPI port described by c and checks
// the EEPROM signature.
func Open(c Config) (*Device, error) {
	if err := initHost(); err != nil {
		return nil, err
	}

	if c.Vcc == 0 {
		c.Vcc = 3300 * physic.MilliVolt
	}
	clock, err := checkClock(c.Clock, c.Vcc)
	if err != nil {
		return nil, err
	}

	d := &Device{clock: clock}
	switch c.Adapter {
	case "", AdapterFTDI:
		err = d.openFTDI()
	case AdapterSPIDev:
		err = d.openSPIDev(c)
	default:
		err = fmt.Errorf("unknown adapter %q", c.Adapter)
	}
	if err != nil {
		if d.port != nil {
			d.port.Close()
		}
		return nil, err
	}

	opts := append([]Option{}, c.Options...)
	if d.hold != nil {
		opts = append(opts, WithHold(d.hold))
	}
	if d.wp != nil {
		opts = append(opts, WithWriteProtect(d.wp))
	}
	var cs gpio.PinOut
	if d.cs != nil {
		cs = d.cs
	}
	// New closes the transport, and with it the port, on failure.
	if d.EEPROM, err = New(NewSPITransport(d.conn, cs, d.port), opts...); err != nil {
		return nil, err
	}
	return d, nil
}

// Close closes the EEPROM and the SPI port.
func (d *Device) Close() error {
	return d.EEPROM.Close()
}

func (d *Device) openFTDI() error {
	if err := d.findFT2232H(); err != nil {
		return err
	}

	// ADBUS0 | SCK
	// ADBUS1 | MOSI -> SI
	// ADBUS2 | MISO <- SO
	// ADBUS4 | CS
	// ADBUS5 | HOLD
	// ADBUS6 | WP
	d.cs = d.FTDI.D4
	d.hold = d.FTDI.D5
	d.wp = d.FTDI.D6

	return d.connectSPI(d.FTDI.SPI)
}

func (d *Device) openSPIDev(c Config) error {
	for _, l := range []struct {
		name string
		pin  *gpio.PinIO
	}{{c.Hold, &d.hold}, {c.WP, &d.wp}} {
		if l.name == "" {
			continue
		}
		if *l.pin = gpioreg.ByName(l.name); *l.pin == nil {
			return fmt.Errorf("failed to open pin %s", l.name)
		}
	}
	return d.connectSPI(func() (spi.PortCloser, error) {
		return spireg.Open(c.Port)
	})
}

func (d *Device) findFT2232H() error {
	const (
		vendorID = 0x0403 // FTDI
	)
	productIDs := []uint16{
		0x6010, // FT2232H
		0x6014, // FT232H
	}

	info := ftdi.Info{}
	for _, dev := range ftdi.All() {
		dev.Info(&info)
		if info.VenID != vendorID {
			continue
		}
		for _, id := range productIDs {
			if info.DevID != id {
				continue
			}
			if ft, ok := dev.(*ftdi.FT232H); ok {
				d.FTDI = ft
				return nil
			}
		}
	}

	return errors.New("FT232H/FT2232H device not found")
}

func (d *Device) connectSPI(open func() (spi.PortCloser, error)) (err error) {
	d.port, err = open()
	if err != nil {
		return fmt.Errorf("failed to get SPI port: %w", err)
	}

	// [25AA1024|Figure 2-1] mode 0 and mode 3 are supported
	// [FTDI AN_114|1.2]> FTDI device can only support mode 0 and mode 2 due to the limitation of MPSSE engine
	d.conn, err = d.port.Connect(d.clock, spi.Mode0, 8)
	return err
}
