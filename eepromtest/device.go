// Package eepromtest implements a software model of the 25AA1024 for tests.
package eepromtest

import (
	"bytes"
	"errors"
	"sync"

	"periph.io/x/conn/v3/gpio"
)

const (
	capacity   = 0x20000
	pageSize   = 256
	sectorSize = capacity / 4
	signature  = 0x29
)

const (
	opRead        = 0x03
	opWrite       = 0x02
	opWREN        = 0x06
	opWRDI        = 0x04
	opRDSR        = 0x05
	opWRSR        = 0x01
	opPageErase   = 0x42
	opSectorErase = 0xD8
	opChipErase   = 0xC7
	opRDID        = 0xAB
	opDPD         = 0xB9
)

const (
	srWIP  = 1 << 0
	srWEL  = 1 << 1
	srBP   = 3 << 2
	srWPEN = 1 << 7
)

// Op is one transaction seen by the model.
type Op struct {
	Code byte
	Addr int    // zero for instructions without an address
	Data []byte // bytes after the address, as sent
}

// Device models a 25AA1024 on the other end of a Transport. The zero value
// is not usable; call New.
type Device struct {
	// ID is returned by RDID.
	ID byte
	// BusyPolls is the number of RDSR reads that report WIP after a write
	// cycle starts.
	BusyPolls int
	// TxErr, when set, is returned by Tx without touching the model.
	TxErr error
	// Hold and WP are the control lines as seen by the part. nil means tied
	// high.
	Hold gpio.PinIn
	WP   gpio.PinIn

	mu      sync.Mutex
	mem     []byte
	status  byte
	busy    int
	asleep  bool
	ops     []Op
	ignored int
	closed  bool
}

// New returns an erased part with its default signature.
func New() *Device {
	return &Device{
		ID:        signature,
		BusyPolls: 1,
		mem:       bytes.Repeat([]byte{0xFF}, capacity),
	}
}

var errClosed = errors.New("eepromtest: transport closed")

// Tx implements eeprom25.Transport.
func (d *Device) Tx(w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.TxErr != nil {
		return d.TxErr
	}
	if d.closed {
		return errClosed
	}
	in := append([]byte(nil), w...)
	for i := range r {
		r[i] = 0xFF // MISO idles high
	}
	if len(in) == 0 || low(d.Hold) {
		return nil
	}

	op := Op{Code: in[0]}
	if hasAddr(in[0]) && len(in) >= 4 {
		op.Addr = int(in[1])<<16 | int(in[2])<<8 | int(in[3])
		op.Addr &= capacity - 1 // A23..A17 are don't care
		op.Data = in[4:]
	} else {
		op.Data = in[1:]
	}
	d.ops = append(d.ops, op)

	switch {
	case d.asleep && op.Code != opRDID:
		d.ignored++
		return nil
	case d.busy > 0 && op.Code != opRDSR:
		d.ignored++
		return nil
	}

	switch op.Code {
	case opRead:
		for i := 4; i < len(r); i++ {
			r[i] = d.mem[(op.Addr+i-4)%capacity]
		}
	case opRDSR:
		for i := 1; i < len(r); i++ {
			r[i] = d.status
		}
		if d.busy > 0 {
			d.busy--
			if d.busy == 0 {
				d.status &^= srWIP
			}
		}
	case opWREN:
		d.status |= srWEL
	case opWRDI:
		d.status &^= srWEL
	case opWrite:
		d.write(op.Addr, op.Data)
	case opWRSR:
		d.writeStatus(op.Data)
	case opPageErase:
		base := op.Addr &^ (pageSize - 1)
		d.erase(base, pageSize)
	case opSectorErase:
		base := op.Addr &^ (sectorSize - 1)
		d.erase(base, sectorSize)
	case opChipErase:
		if d.status&srBP != 0 {
			d.reject()
			return nil
		}
		d.erase(0, capacity)
	case opRDID:
		d.asleep = false
		if len(r) > 4 {
			r[4] = d.ID
		}
	case opDPD:
		d.asleep = true
	default:
		d.ignored++
	}
	return nil
}

func hasAddr(code byte) bool {
	switch code {
	case opRead, opWrite, opPageErase, opSectorErase, opRDID:
		return true
	}
	return false
}

func low(p gpio.PinIn) bool {
	return p != nil && p.Read() == gpio.Low
}

// protected reports whether addr lies in the block selected by BP1-0.
func (d *Device) protected(addr int) bool {
	switch (d.status & srBP) >> 2 {
	case 1:
		return addr >= capacity-sectorSize
	case 2:
		return addr >= capacity-2*sectorSize
	case 3:
		return true
	}
	return false
}

// startCycle begins a self-timed write cycle if the latch allows it.
func (d *Device) startCycle() bool {
	if d.status&srWEL == 0 {
		d.ignored++
		return false
	}
	d.status &^= srWEL
	if d.BusyPolls > 0 {
		d.status |= srWIP
		d.busy = d.BusyPolls
	}
	return true
}

func (d *Device) reject() {
	d.status &^= srWEL
	d.ignored++
}

// write programs data at addr, wrapping within the page like the part does.
func (d *Device) write(addr int, data []byte) {
	if d.protected(addr) {
		d.reject()
		return
	}
	if !d.startCycle() {
		return
	}
	base := addr &^ (pageSize - 1)
	for i, b := range data {
		d.mem[base+(addr+i)%pageSize] = b
	}
}

func (d *Device) writeStatus(data []byte) {
	if len(data) == 0 {
		return
	}
	if d.status&srWPEN != 0 && low(d.WP) {
		d.reject()
		return
	}
	if !d.startCycle() {
		return
	}
	const writable = srBP | srWPEN
	d.status = d.status&^writable | data[0]&writable
}

func (d *Device) erase(base, n int) {
	if d.protected(base) {
		d.reject()
		return
	}
	if !d.startCycle() {
		return
	}
	for i := base; i < base+n; i++ {
		d.mem[i] = 0xFF
	}
}

// Close marks the transport closed. Later transactions fail.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errClosed
	}
	d.closed = true
	return nil
}

// Closed reports whether Close was called.
func (d *Device) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Ops returns the transactions received so far.
func (d *Device) Ops() []Op {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Op(nil), d.ops...)
}

// Writes returns the WRITE transactions received so far.
func (d *Device) Writes() []Op {
	var w []Op
	for _, op := range d.Ops() {
		if op.Code == opWrite {
			w = append(w, op)
		}
	}
	return w
}

// ResetOps clears the transaction log.
func (d *Device) ResetOps() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = nil
	d.ignored = 0
}

// Ignored returns the number of instructions the part did not act on: sent
// while busy or asleep, without the write enable latch, or to a protected
// block.
func (d *Device) Ignored() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ignored
}

// Memory returns a copy of n bytes at addr.
func (d *Device) Memory(addr, n int) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.mem[addr:addr+n]...)
}

// Load writes data into the array directly, bypassing the protocol.
func (d *Device) Load(addr int, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(d.mem[addr:], data)
}

// StatusRegister returns the raw status byte.
func (d *Device) StatusRegister() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// SetStatusRegister overwrites the raw status byte, including the reserved
// and read-only bits.
func (d *Device) SetStatusRegister(sr byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = sr
}

// Asleep reports whether the part is in deep power-down.
func (d *Device) Asleep() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.asleep
}
