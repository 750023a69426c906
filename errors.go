package eeprom25

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrClosed        = errors.New("eeprom25: device closed")
	ErrNoControlLine = errors.New("eeprom25: control line not connected")
)

// InitializationError indicates that the part did not answer RDID with the
// expected signature.
type InitializationError struct {
	Got  byte
	Want byte
	Err  error // transport error, if any
}

func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("eeprom initialization failed: %v", e.Err)
	}
	return fmt.Sprintf("eeprom initialization failed: signature 0x%02X, want 0x%02X", e.Got, e.Want)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// OutOfRangeError indicates a request outside [0, Capacity).
type OutOfRangeError struct {
	Addr int
	Len  int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("address range 0x%X+%d out of range [0, 0x%X)", e.Addr, e.Len, Capacity)
}

// PageBoundaryError reports a single write transaction that would cross a
// page boundary. The part wraps within the page, so this is a driver bug.
type PageBoundaryError struct {
	Addr int
	Len  int
}

func (e *PageBoundaryError) Error() string {
	return fmt.Sprintf("write 0x%X+%d crosses a %d-byte page boundary", e.Addr, e.Len, PageSize)
}

// DeviceTimeoutError indicates that the write-in-progress bit did not clear
// within the deadline for Op.
type DeviceTimeoutError struct {
	Op      string
	Timeout time.Duration
	Status  StatusRegister // last status read
}

func (e *DeviceTimeoutError) Error() string {
	return fmt.Sprintf("%s: device still busy after %v (status %s)", e.Op, e.Timeout, e.Status)
}
