package eeprom25

import (
	"fmt"
	"strings"
)

// StatusRegister represents the status register of the EEPROM.
//
//	Bits| [25AA1024|Table 2-2]
//	----+----------------------------------------
//	7   | WPEN: Write-protect enable (SRWD)
//	6:4 | Unused, read as 0
//	3:2 | BP1-0: Block protection
//	1   | WEL: Write enable latch (read only)
//	0   | WIP: Write in progress (read only)
type StatusRegister byte

const (
	statusWIP  = 1 << 0
	statusWEL  = 1 << 1
	statusBP   = 3 << 2
	statusSRWD = 1 << 7

	bpShift = 2
)

func (sr StatusRegister) WriteInProgress() bool    { return sr&statusWIP != 0 }
func (sr StatusRegister) WriteEnableLatch() bool   { return sr&statusWEL != 0 }
func (sr StatusRegister) WriteProtectEnable() bool { return sr&statusSRWD != 0 }
func (sr StatusRegister) BlockProtect() Protection {
	return Protection(sr&statusBP) >> bpShift
}

// WithBlockProtect returns sr with BP1-0 replaced by p. Other bits are kept.
func (sr StatusRegister) WithBlockProtect(p Protection) StatusRegister {
	return sr&^statusBP | StatusRegister(p&3)<<bpShift
}

// WithWriteProtectEnable returns sr with the WPEN bit set or cleared.
func (sr StatusRegister) WithWriteProtectEnable(on bool) StatusRegister {
	if on {
		return sr | statusSRWD
	}
	return sr &^ statusSRWD
}

func (sr StatusRegister) String() string {
	b := fmt.Sprintf("%08b", byte(sr))
	s := []string{}
	if sr.WriteProtectEnable() {
		s = append(s, "WPEN")
	}
	if bp := sr.BlockProtect(); bp != ProtectNone {
		s = append(s, fmt.Sprintf("BP=%d", bp))
	}
	if sr.WriteEnableLatch() {
		s = append(s, "WEL")
	}
	if sr.WriteInProgress() {
		s = append(s, "WIP")
	}
	if len(s) == 0 {
		return b
	}
	return b + " " + strings.Join(s, ",")
}

// Protection is the block protection level held in BP1-0. Each level protects
// a larger suffix of the array [25AA1024|Table 2-3].
type Protection uint8

const (
	ProtectNone      Protection = iota // no sectors
	ProtectUpperQtr                    // sector 3, 0x18000-0x1FFFF
	ProtectUpperHalf                   // sectors 2-3, 0x10000-0x1FFFF
	ProtectAll                         // sectors 0-3
)

// ProtectedRange returns the write-protected address range [start, end).
// start == end when nothing is protected.
func (p Protection) ProtectedRange() (start, end int) {
	switch p & 3 {
	case ProtectUpperQtr:
		return Capacity - SectorSize, Capacity
	case ProtectUpperHalf:
		return Capacity - 2*SectorSize, Capacity
	case ProtectAll:
		return 0, Capacity
	}
	return Capacity, Capacity
}

// Protects reports whether addr lies in the protected range.
func (p Protection) Protects(addr int) bool {
	start, end := p.ProtectedRange()
	return addr >= start && addr < end
}

func (p Protection) String() string {
	start, end := p.ProtectedRange()
	if start == end {
		return "none"
	}
	return fmt.Sprintf("0x%05X-0x%05X", start, end-1)
}
