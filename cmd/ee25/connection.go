package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gentam/eeprom25"
	"github.com/gentam/eeprom25/eepromtest"
)

const adapterSim = "sim"

// connect opens the EEPROM selected by the global flags. The returned
// function releases it and must be called once done.
func connect() (*eeprom25.EEPROM, func() error, error) {
	var opts []eeprom25.Option
	if verbose {
		opts = append(opts, eeprom25.WithLogger(log.Default()))
	}

	if adapter == adapterSim {
		return connectSim(opts)
	}

	c := eeprom25.Config{
		Adapter: adapter,
		Port:    portName,
		Hold:    holdPin,
		WP:      wpPin,
		Options: opts,
	}
	if clock != "" {
		if err := c.Clock.Set(clock); err != nil {
			return nil, nil, fmt.Errorf("invalid --clock: %w", err)
		}
	}
	if err := c.Vcc.Set(vcc); err != nil {
		return nil, nil, fmt.Errorf("invalid --vcc: %w", err)
	}

	d, err := eeprom25.Open(c)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("opened %s adapter", adapter)
	return d.EEPROM, d.Close, nil
}

// connectSim opens a simulated part, loaded from and saved back to --image.
func connectSim(opts []eeprom25.Option) (*eeprom25.EEPROM, func() error, error) {
	sim := eepromtest.New()
	if simImage != "" {
		data, err := os.ReadFile(simImage)
		switch {
		case err == nil:
			sim.Load(0, data[:min(len(data), eeprom25.Capacity)])
		case !errors.Is(err, fs.ErrNotExist):
			return nil, nil, err
		}
	}

	opts = append(opts, eeprom25.WithPollInterval(time.Millisecond))
	e, err := eeprom25.New(sim, opts...)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error {
		if err := e.Close(); err != nil {
			return err
		}
		if simImage == "" {
			return nil
		}
		return os.WriteFile(simImage, sim.Memory(0, eeprom25.Capacity), 0644)
	}
	return e, closeFn, nil
}

// withEEPROM runs f on a connected EEPROM and releases it afterwards.
func withEEPROM(f func(e *eeprom25.EEPROM) error) (err error) {
	e, closeFn, err := connect()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeFn(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return f(e)
}

func parseAddr(s string) (int, error) {
	addr, err := strconv.ParseInt(s, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return int(addr), nil
}
