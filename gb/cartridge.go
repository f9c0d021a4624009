package gb

import "fmt"

const (
	titleStart   = 0x0134
	titleEnd     = 0x0143 // exclusive
	checksumAddr = 0x014D

	romSize = 32 * 1024
	ramSize = 8 * 1024
)

// Cartridge is a flat 32 KiB ROM plus an optional 8 KiB RAM bank, the no-MBC
// layout the spec scopes this core to. Header parsing follows the same
// binary-header-by-field-offset approach as the teacher's iNES reader, even
// though the Game Boy header carries no magic number to validate against.
type Cartridge struct {
	rom [romSize]byte
	ram [ramSize]byte

	Title    string
	Checksum byte
}

// LoadCartridge parses a raw ROM image. The image must be at least 32 KiB;
// anything past that (banked ROM) is out of scope and ignored.
func LoadCartridge(data []byte) (*Cartridge, error) {
	if len(data) < romSize {
		return nil, &FatalError{
			Op:  "LoadCartridge",
			Msg: fmt.Sprintf("rom image too short: got %d bytes, need at least %d", len(data), romSize),
		}
	}

	c := &Cartridge{}
	copy(c.rom[:], data[:romSize])
	c.Title = parseTitle(c.rom[titleStart:titleEnd])
	c.Checksum = c.rom[checksumAddr]

	return c, nil
}

func parseTitle(b []byte) string {
	end := len(b)
	for i, v := range b {
		if v == 0 {
			end = i
			break
		}
	}
	return string(b[:end])
}

// ReadROM reads a byte from the fixed 0x0000-0x7FFF cartridge ROM window.
func (c *Cartridge) ReadROM(addr uint16) byte {
	return c.rom[addr]
}

// ReadRAM and WriteRAM serve the 0xA000-0xBFFF cartridge RAM window. off is
// already relative to 0xA000.
func (c *Cartridge) ReadRAM(off uint16) byte {
	return c.ram[off%ramSize]
}

func (c *Cartridge) WriteRAM(off uint16, v byte) {
	c.ram[off%ramSize] = v
}
