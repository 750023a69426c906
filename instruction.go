package eeprom25

// Memory organization [25AA1024|2.0 Functional Description]
const (
	Capacity   = 0x20000 // 1 Mbit
	PageSize   = 256
	SectorSize = Capacity / Sectors
	Sectors    = 4
)

// Signature is the electronic signature returned by the RDID instruction.
const Signature = 0x29

// Instruction set [25AA1024|Table 2-1]
const (
	cmdRead             = 0x03
	cmdWrite            = 0x02
	cmdWriteEnable      = 0x06 // WREN
	cmdWriteDisable     = 0x04 // WRDI
	cmdReadStatus       = 0x05 // RDSR
	cmdWriteStatus      = 0x01 // WRSR
	cmdPageErase        = 0x42 // PE
	cmdSectorErase      = 0xD8 // SE
	cmdChipErase        = 0xC7 // CE
	cmdReleasePowerDown = 0xAB // RDID: release from deep power-down and read signature
	cmdPowerDown        = 0xB9 // DPD
)

const addrBytes = 3 // 24-bit address, A23..A17 are don't care

// command returns a transaction buffer starting with op and a 24-bit
// big-endian address, followed by n bytes for payload or clocked-in data.
func command(op byte, addr, n int) []byte {
	buf := make([]byte, 1+addrBytes+n)
	buf[0] = op
	buf[1] = byte(addr >> 16)
	buf[2] = byte(addr >> 8)
	buf[3] = byte(addr)
	return buf
}

// span is one physical write transaction.
type span struct {
	addr int
	off  int // offset into the caller's buffer
	n    int
}

// splitPages breaks [addr, addr+n) into spans that never cross a page
// boundary. The first span runs up to the next boundary, the rest are full
// pages except possibly the last.
func splitPages(addr, n int) []span {
	var spans []span
	size := PageSize - addr%PageSize
	for off := 0; off < n; {
		size = min(size, n-off)
		spans = append(spans, span{addr: addr, off: off, n: size})
		addr += size
		off += size
		size = PageSize
	}
	return spans
}

func samePage(addr, n int) bool {
	return n == 0 || addr/PageSize == (addr+n-1)/PageSize
}
