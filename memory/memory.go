// Package memory defines the memory bus for a 6502 family system as a
// 16 bit flat address space split into 256 pages of 256 bytes each.
// Since each emulated machine maps different backings (RAM, ROM,
// devices) into that space the page itself is defined as an interface
// and the MMU simply routes by the high byte of the address.
package memory

// Page is a uniform 256 byte addressable region. Implementations may be
// RAM, ROM or device backed; the CPU never knows the difference.
type Page interface {
	// Read returns the byte stored at the given offset within the page.
	Read(offset uint8) uint8
	// Write updates the byte at the given offset. For read-only
	// backings this is simply a no-op without any error.
	Write(offset uint8, val uint8)
}

// RAMPage is a plain read/write page, zero initialized.
type RAMPage struct {
	data [256]uint8
}

// NewRAMPage creates a zeroed RAM page.
func NewRAMPage() *RAMPage {
	return &RAMPage{}
}

// Read implements the interface for Page.
func (r *RAMPage) Read(offset uint8) uint8 {
	return r.data[offset]
}

// Write implements the interface for Page.
func (r *RAMPage) Write(offset uint8, val uint8) {
	r.data[offset] = val
}

// MMU routes 16 bit addresses to the 256 pages making up the address
// space. It performs no cycle accounting; that belongs to the CPU.
type MMU struct {
	pages [256]Page
}

// NewMMU creates an MMU with every page backed by a fresh RAMPage.
func NewMMU() *MMU {
	m := &MMU{}
	for i := range m.pages {
		m.pages[i] = NewRAMPage()
	}
	return m
}

// SwapPage installs p as the backing for page n, returning the previous
// backing. Used to map ROM or device pages without CPU changes.
func (m *MMU) SwapPage(n uint8, p Page) Page {
	old := m.pages[n]
	m.pages[n] = p
	return old
}

// ReadByte returns the byte at addr by dispatching to the owning page.
func (m *MMU) ReadByte(addr uint16) uint8 {
	return m.pages[addr>>8].Read(uint8(addr & 0xFF))
}

// WriteByte stores val at addr by dispatching to the owning page.
func (m *MMU) WriteByte(addr uint16, val uint8) {
	m.pages[addr>>8].Write(uint8(addr&0xFF), val)
}

// ReadWord returns the little endian word at addr. The high byte comes
// from addr+1 with 16 bit wrap, so a read at 0xFFFF takes its high byte
// from 0x0000.
func (m *MMU) ReadWord(addr uint16) uint16 {
	lo := uint16(m.ReadByte(addr))
	hi := uint16(m.ReadByte(addr + 1))
	return lo | (hi << 8)
}

// LoadImage writes a raw flat image sequentially starting at address 0.
// Anything past 64k is ignored. There is no header or checksum; reset
// vectors are expected to be part of the image.
func (m *MMU) LoadImage(b []byte) {
	if len(b) > 1<<16 {
		b = b[:1<<16]
	}
	for i, v := range b {
		m.WriteByte(uint16(i), v)
	}
}
