package eeprom25

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// EEPROM is a 25AA1024 attached through a Transport. All methods block until
// the part has finished the operation. An EEPROM is safe for concurrent use;
// transactions are serialized and read-modify-write of the status register
// is atomic with respect to other calls on the same EEPROM.
type EEPROM struct {
	mu     sync.Mutex
	t      Transport
	closed bool

	hold gpio.PinOut // HOLD, active low
	wp   gpio.PinOut // WP, active low

	timing     Timing
	interval   time.Duration
	manualWREN bool
	log        *log.Logger
}

type Option func(*EEPROM)

// WithHold connects the HOLD line. It is driven high (inactive) by New.
func WithHold(p gpio.PinOut) Option {
	return func(e *EEPROM) { e.hold = p }
}

// WithWriteProtect connects the WP line. It is driven high (inactive) by New.
func WithWriteProtect(p gpio.PinOut) Option {
	return func(e *EEPROM) { e.wp = p }
}

func WithTiming(t Timing) Option {
	return func(e *EEPROM) { e.timing = t }
}

// WithPollInterval sets the delay between status polls while the part is
// busy. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(e *EEPROM) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithLogger logs every transaction to l.
func WithLogger(l *log.Logger) Option {
	return func(e *EEPROM) { e.log = l }
}

// WithManualWriteEnable stops the driver from issuing WREN before writes,
// erases and status writes. The caller must then call SetWriteEnable(true)
// before each of them, since the part clears the latch after every write
// cycle.
func WithManualWriteEnable() Option {
	return func(e *EEPROM) { e.manualWREN = true }
}

// New takes ownership of t, releases the control lines and checks the
// electronic signature. On failure t is closed and an *InitializationError
// is returned.
//
// Unless WithManualWriteEnable is given, the driver issues WREN itself before
// every write, erase and status write, so a latch cleared with
// SetWriteEnable(false) does not block later writes.
func New(t Transport, opts ...Option) (*EEPROM, error) {
	e := &EEPROM{
		t:        t,
		timing:   DefaultTiming,
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.init(); err != nil {
		e.closed = true
		e.release()
		return nil, err
	}
	return e, nil
}

func (e *EEPROM) init() error {
	for _, l := range []gpio.PinOut{e.hold, e.wp} {
		if l == nil {
			continue
		}
		if err := l.Out(gpio.High); err != nil {
			return &InitializationError{Want: Signature, Err: err}
		}
	}
	id, err := e.wake()
	if err != nil {
		return &InitializationError{Want: Signature, Err: err}
	}
	if id != Signature {
		return &InitializationError{Got: id, Want: Signature}
	}
	return nil
}

// Close releases the transport. The EEPROM must not be used afterwards.
func (e *EEPROM) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	return e.release()
}

func (e *EEPROM) release() error {
	if c, ok := e.t.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// tx runs one transaction, reusing buf for the received bytes.
func (e *EEPROM) tx(op string, buf []byte) error {
	if e.closed {
		return ErrClosed
	}
	if e.log != nil {
		e.log.Printf("%s: % X", op, buf[:min(len(buf), 1+addrBytes)])
	}
	if err := e.t.Tx(buf, buf); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func checkRange(addr, n int) error {
	if addr < 0 || n < 0 || addr+n > Capacity {
		return &OutOfRangeError{Addr: addr, Len: n}
	}
	return nil
}

// Read reads n bytes starting at addr in a single transaction. Reads are not
// limited to a page.
func (e *EEPROM) Read(addr, n int) ([]byte, error) {
	if err := checkRange(addr, n); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	buf := command(cmdRead, addr, n)
	if err := e.tx("read", buf); err != nil {
		return nil, err
	}
	return buf[1+addrBytes:], nil
}

// ByteAt reads the byte at addr.
func (e *EEPROM) ByteAt(addr int) (byte, error) {
	b, err := e.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadAt implements io.ReaderAt. Reads past the end of the array are
// truncated and return io.EOF.
func (e *EEPROM) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > Capacity {
		return 0, &OutOfRangeError{Addr: int(off), Len: len(p)}
	}
	n := min(len(p), Capacity-int(off))
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	b, err := e.Read(int(off), n)
	if err != nil {
		return 0, err
	}
	copy(p, b)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Write writes data starting at addr. The data is split so that no write
// transaction crosses a page boundary, and Write returns once the last page
// has been committed. If a page fails, the pages before it stay written.
// The write enable latch is set before each page unless the EEPROM was created
// with WithManualWriteEnable.
func (e *EEPROM) Write(addr int, data []byte) error {
	_, err := e.WriteAt(data, int64(addr))
	return err
}

// WriteAt implements io.WriterAt. n counts the bytes of the pages issued
// before an error.
func (e *EEPROM) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off > Capacity {
		return 0, &OutOfRangeError{Addr: int(off), Len: len(p)}
	}
	addr := int(off)
	if err := checkRange(addr, len(p)); err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, s := range splitPages(addr, len(p)) {
		if err := e.writePage(s.addr, p[s.off:s.off+s.n]); err != nil {
			return n, err
		}
		n += s.n
	}
	return n, e.waitReady("write", e.timing.WriteCycle)
}

// writePage issues one WRITE transaction. addr and data must stay within one
// page.
func (e *EEPROM) writePage(addr int, data []byte) error {
	if err := checkRange(addr, len(data)); err != nil {
		return err
	}
	if !samePage(addr, len(data)) {
		return &PageBoundaryError{Addr: addr, Len: len(data)}
	}
	if err := e.prepareWrite("write", e.timing.WriteCycle); err != nil {
		return err
	}
	buf := command(cmdWrite, addr, len(data))
	copy(buf[1+addrBytes:], data)
	return e.tx("write", buf)
}

// prepareWrite waits for the previous write cycle and sets the write enable
// latch.
func (e *EEPROM) prepareWrite(op string, d time.Duration) error {
	if err := e.waitReady(op, d); err != nil {
		return err
	}
	if e.manualWREN {
		return nil
	}
	return e.tx("write enable", []byte{cmdWriteEnable})
}

// waitReady polls the status register until WIP clears or the deadline for
// an operation of duration d expires. d == 0 waits indefinitely.
func (e *EEPROM) waitReady(op string, d time.Duration) error {
	// Fast path
	sr, err := e.status()
	if err != nil {
		return err
	}
	if !sr.WriteInProgress() {
		return nil
	}

	var expired <-chan time.Time
	timeout := deadline(d)
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-expired:
			return &DeviceTimeoutError{Op: op, Timeout: timeout, Status: sr}
		case <-ticker.C:
			if sr, err = e.status(); err != nil {
				return err
			}
			if !sr.WriteInProgress() {
				return nil
			}
		}
	}
}

func (e *EEPROM) status() (StatusRegister, error) {
	buf := []byte{cmdReadStatus, 0}
	if err := e.tx("read status", buf); err != nil {
		return 0, err
	}
	return StatusRegister(buf[1]), nil
}

func (e *EEPROM) setStatus(sr StatusRegister) error {
	if err := e.prepareWrite("write status", e.timing.WriteCycle); err != nil {
		return err
	}
	if err := e.tx("write status", []byte{cmdWriteStatus, byte(sr)}); err != nil {
		return err
	}
	return e.waitReady("write status", e.timing.WriteCycle)
}

// Status reads the status register.
func (e *EEPROM) Status() (StatusRegister, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status()
}

// SetStatus writes the status register. Only WPEN and BP1-0 are writable.
func (e *EEPROM) SetStatus(sr StatusRegister) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setStatus(sr)
}

// updateStatus applies f to the current status and writes the result back.
func (e *EEPROM) updateStatus(f func(StatusRegister) StatusRegister) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	sr, err := e.status()
	if err != nil {
		return err
	}
	return e.setStatus(f(sr))
}

func (e *EEPROM) WriteInProgress() (bool, error) {
	sr, err := e.Status()
	return sr.WriteInProgress(), err
}

func (e *EEPROM) WriteEnabled() (bool, error) {
	sr, err := e.Status()
	return sr.WriteEnableLatch(), err
}

// SetWriteEnable sets (WREN) or resets (WRDI) the write enable latch. The
// latch cannot be changed through the status register.
func (e *EEPROM) SetWriteEnable(on bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if on {
		return e.tx("write enable", []byte{cmdWriteEnable})
	}
	return e.tx("write disable", []byte{cmdWriteDisable})
}

func (e *EEPROM) BlockProtect() (Protection, error) {
	sr, err := e.Status()
	return sr.BlockProtect(), err
}

func (e *EEPROM) SetBlockProtect(p Protection) error {
	if p > ProtectAll {
		return fmt.Errorf("invalid block protection level %d", p)
	}
	return e.updateStatus(func(sr StatusRegister) StatusRegister {
		return sr.WithBlockProtect(p)
	})
}

// WriteProtectEnabled reports the WPEN bit. With WPEN set and WP low, the
// status register cannot be written.
func (e *EEPROM) WriteProtectEnabled() (bool, error) {
	sr, err := e.Status()
	return sr.WriteProtectEnable(), err
}

func (e *EEPROM) SetWriteProtectEnable(on bool) error {
	return e.updateStatus(func(sr StatusRegister) StatusRegister {
		return sr.WithWriteProtectEnable(on)
	})
}

// AssertHold pauses (on) or resumes the serial interface through HOLD.
func (e *EEPROM) AssertHold(on bool) error {
	return e.drive(e.hold, on)
}

// AssertWriteProtect drives WP low (on) or high.
func (e *EEPROM) AssertWriteProtect(on bool) error {
	return e.drive(e.wp, on)
}

func (e *EEPROM) drive(p gpio.PinOut, active bool) error {
	if p == nil {
		return ErrNoControlLine
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	l := gpio.High
	if active {
		l = gpio.Low
	}
	return p.Out(l)
}

// ErasePage sets the page containing addr to 0xFF.
func (e *EEPROM) ErasePage(addr int) error {
	return e.erase("page erase", cmdPageErase, addr, e.timing.PageErase)
}

// EraseSector sets the sector containing addr to 0xFF.
func (e *EEPROM) EraseSector(addr int) error {
	return e.erase("sector erase", cmdSectorErase, addr, e.timing.SectorErase)
}

func (e *EEPROM) erase(op string, cmd byte, addr int, d time.Duration) error {
	if err := checkRange(addr, 1); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepareWrite(op, d); err != nil {
		return err
	}
	if err := e.tx(op, command(cmd, addr, 0)); err != nil {
		return err
	}
	return e.waitReady(op, d)
}

// EraseChip sets the whole array to 0xFF. The part ignores it while any
// block is protected.
func (e *EEPROM) EraseChip() error {
	const op = "chip erase"
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepareWrite(op, e.timing.ChipErase); err != nil {
		return err
	}
	if err := e.tx(op, []byte{cmdChipErase}); err != nil {
		return err
	}
	return e.waitReady(op, e.timing.ChipErase)
}

// DeepPowerDown puts the part into its lowest power mode. Every instruction
// except Wake is ignored until then.
func (e *EEPROM) DeepPowerDown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tx("power down", []byte{cmdPowerDown})
}

// Wake releases the part from deep power-down and returns its electronic
// signature.
func (e *EEPROM) Wake() (byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wake()
}

// Identity returns the electronic signature, Signature for a 25AA1024. It
// also wakes the part from deep power-down.
func (e *EEPROM) Identity() (byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wake()
}

func (e *EEPROM) wake() (byte, error) {
	// RDID, 24-bit dummy address, signature
	buf := command(cmdReleasePowerDown, 0, 1)
	if err := e.tx("release power down", buf); err != nil {
		return 0, err
	}
	time.Sleep(e.timing.Release)
	return buf[1+addrBytes], nil
}
