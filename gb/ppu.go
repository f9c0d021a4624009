package gb

// LCDC bits.
const (
	lcdcBGEnable     = 1 << 0
	lcdcOBJEnable    = 1 << 1
	lcdcOBJSize      = 1 << 2
	lcdcBGMap        = 1 << 3
	lcdcBGWinTiles   = 1 << 4
	lcdcWinEnable    = 1 << 5
	lcdcWinMap       = 1 << 6
	lcdcDisplayOn    = 1 << 7
)

// STAT bits.
const (
	statCoincidence  = 1 << 2
	statHBlankIntSel = 1 << 3
	statVBlankIntSel = 1 << 4
	statOAMIntSel    = 1 << 5
	statLYCIntSel    = 1 << 6
)

const (
	screenWidth  = 160
	screenHeight = 144

	dotsPerLine  = 456
	oamScanEnd   = 80
	drawEnd      = 252
	lastVisible  = 143
	lastLine     = 153
)

// mode is the PPU's current position in the scanline state machine, encoded
// identically to STAT bits 1:0.
type mode byte

const (
	modeHBlank mode = 0
	modeVBlank mode = 1
	modeOAM    mode = 2
	modeDraw   mode = 3
)

// spriteEntry is one decoded OAM record, used internally while compositing
// a scanline.
type spriteEntry struct {
	y, x, tile, flags byte
	oamIndex          int
}

// PPU is the scanline-based state machine that turns tile, map and OAM
// memory into a 160x144 2-bit-per-pixel framebuffer. It advances by an
// explicit T-cycle count handed to it by the CPU after every instruction,
// the same push-cycles-after-each-step coupling the teacher's console uses
// to drive its own PPU, generalized to the Game Boy's scanline timing
// instead of the NES's dot-based one.
type PPU struct {
	dot  int
	line int
	mode mode

	windowLine int // internal line counter for the window, only advances when visible

	frame uint64

	framebuffer [screenHeight][screenWidth]byte
	frameReady  bool
}

// NewPPU returns a PPU at the start of line 0, OAM-scan mode.
func NewPPU() *PPU {
	return &PPU{mode: modeOAM}
}

// Tick advances the PPU by cycles T-cycles, mutating bus-resident registers
// (LY, STAT, IF) as it crosses scanline/mode boundaries, and reports whether
// a complete frame became available this call.
func (p *PPU) Tick(cycles int, bus *Bus) (frameReady bool) {
	lcdc := bus.Read(regLCDC)
	if lcdc&lcdcDisplayOn == 0 {
		p.disable(bus)
		return false
	}

	if p.mode == modeVBlank && p.line == 0 {
		// first tick after the LCD is switched back on: line 0 starts with its OAM scan
		p.enterMode(bus, modeOAM)
	}

	p.frameReady = false
	for i := 0; i < cycles; i++ {
		p.tickOne(bus)
	}
	return p.frameReady
}

func (p *PPU) disable(bus *Bus) {
	p.dot = 0
	p.line = 0
	p.mode = modeVBlank
	bus.writeRaw(regLY, 0)
	bus.writeRaw(regSTAT, bus.Read(regSTAT)&0xFC|byte(modeVBlank))
}

func (p *PPU) tickOne(bus *Bus) {
	p.dot++

	switch {
	case p.dot == oamScanEnd && p.mode == modeOAM:
		p.enterMode(bus, modeDraw)

	case p.dot == drawEnd && p.mode == modeDraw:
		p.renderLine(bus)
		p.enterMode(bus, modeHBlank)

	case p.dot >= dotsPerLine:
		p.dot = 0
		p.line++

		if p.line == screenHeight {
			p.enterMode(bus, modeVBlank)
			bus.SetBit(regIF, 0) // V-blank interrupt
			p.windowLine = 0
			p.frame++
			p.frameReady = true
		} else if p.line > lastLine {
			p.line = 0
			p.enterMode(bus, modeOAM)
		} else if p.line < screenHeight {
			p.enterMode(bus, modeOAM)
		}
		// lines 145-153 stay in V-blank mode; only LY advances.

		bus.writeRaw(regLY, byte(p.line))
		p.checkCoincidence(bus)
	}
}

func (p *PPU) enterMode(bus *Bus, m mode) {
	p.mode = m
	stat := bus.Read(regSTAT)
	stat = stat&0xFC | byte(m)
	bus.writeRaw(regSTAT, stat)

	var sel byte
	switch m {
	case modeHBlank:
		sel = statHBlankIntSel
	case modeVBlank:
		sel = statVBlankIntSel
	case modeOAM:
		sel = statOAMIntSel
	}
	if sel != 0 && stat&sel != 0 {
		bus.SetBit(regIF, 1) // LCD-STAT interrupt
	}
}

func (p *PPU) checkCoincidence(bus *Bus) {
	stat := bus.Read(regSTAT)
	ly := bus.Read(regLY)
	lyc := bus.Read(regLYC)

	if ly == lyc {
		stat |= statCoincidence
		if stat&statLYCIntSel != 0 {
			bus.SetBit(regIF, 1)
		}
	} else {
		stat &^= statCoincidence
	}
	bus.writeRaw(regSTAT, stat)
}

// renderLine composites background, window and sprites for the scanline
// that is finishing its drawing phase, matching the hardware's scanline
// renderer (it draws a whole line once per line rather than pixel-by-pixel
// across real time, which this core's Non-goals explicitly permit).
func (p *PPU) renderLine(bus *Bus) {
	ly := p.line
	if ly >= screenHeight {
		return
	}

	lcdc := bus.Read(regLCDC)
	bgp := bus.Read(regBGP)

	var raw [screenWidth]byte // pre-palette color index 0-3, needed for sprite BG-priority checks
	var row [screenWidth]byte // final palette-mapped shade

	if lcdc&lcdcBGEnable != 0 {
		p.renderBackground(bus, lcdc, bgp, ly, &raw, &row)
	}

	if lcdc&lcdcWinEnable != 0 {
		p.renderWindow(bus, lcdc, bgp, ly, &raw, &row)
	}

	if lcdc&lcdcOBJEnable != 0 {
		p.renderSprites(bus, lcdc, ly, &raw, &row)
	}

	copy(p.framebuffer[ly][:], row[:])
}

func (p *PPU) renderBackground(bus *Bus, lcdc, bgp byte, ly int, raw, row *[screenWidth]byte) {
	scy := bus.Read(regSCY)
	scx := bus.Read(regSCX)

	mapBase := uint16(0x9800)
	if lcdc&lcdcBGMap != 0 {
		mapBase = 0x9C00
	}

	bgy := (int(scy) + ly) & 0xFF
	ty := bgy / 8
	withinY := bgy % 8

	for x := 0; x < screenWidth; x++ {
		bgx := (int(scx) + x) & 0xFF
		tx := bgx / 8
		withinX := bgx % 8

		tileIdx := bus.Read(mapBase + uint16(ty*32+tx))
		lo, hi := p.tileRowBytes(bus, lcdc, tileIdx, withinY)

		colorIdx := pixelFromRow(lo, hi, withinX)
		raw[x] = colorIdx
		row[x] = paletteLookup(bgp, colorIdx)
	}
}

func (p *PPU) renderWindow(bus *Bus, lcdc, bgp byte, ly int, raw, row *[screenWidth]byte) {
	wy := int(bus.Read(regWY))
	wx := int(bus.Read(regWX)) - 7

	if ly < wy {
		return
	}

	visible := false
	for x := 0; x < screenWidth; x++ {
		if x >= wx {
			visible = true
			break
		}
	}
	if !visible {
		return
	}

	mapBase := uint16(0x9800)
	if lcdc&lcdcWinMap != 0 {
		mapBase = 0x9C00
	}

	wly := p.windowLine
	ty := wly / 8
	withinY := wly % 8

	used := false
	for x := 0; x < screenWidth; x++ {
		wxPix := x - wx
		if wxPix < 0 {
			continue
		}
		used = true

		tx := wxPix / 8
		withinX := wxPix % 8

		tileIdx := bus.Read(mapBase + uint16(ty*32+tx))
		lo, hi := p.tileRowBytes(bus, lcdc, tileIdx, withinY)

		colorIdx := pixelFromRow(lo, hi, withinX)
		raw[x] = colorIdx
		row[x] = paletteLookup(bgp, colorIdx)
	}

	if used {
		p.windowLine++
	}
}

func (p *PPU) renderSprites(bus *Bus, lcdc byte, ly int, raw, row *[screenWidth]byte) {
	height := 8
	if lcdc&lcdcOBJSize != 0 {
		height = 16
	}

	var candidates []spriteEntry
	for i := 0; i < 40 && len(candidates) < 10; i++ {
		base := uint16(i * 4)
		y := int(bus.oam[base]) - 16
		if ly < y || ly >= y+height {
			continue
		}
		candidates = append(candidates, spriteEntry{
			y:        bus.oam[base],
			x:        bus.oam[base+1],
			tile:     bus.oam[base+2],
			flags:    bus.oam[base+3],
			oamIndex: i,
		})
	}

	// Priority: smaller X first, ties broken by OAM index (already ascending).
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].x < candidates[j-1].x; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	// Draw in reverse priority order so the highest-priority sprite's pixel
	// is the last one written for any given x.
	for i := len(candidates) - 1; i >= 0; i-- {
		s := candidates[i]
		spriteY := int(s.y) - 16
		spriteX := int(s.x) - 8

		tile := s.tile
		if height == 16 {
			tile &^= 1
		}

		lineInSprite := ly - spriteY
		flipY := s.flags&0x40 != 0
		if flipY {
			lineInSprite = height - 1 - lineInSprite
		}

		tileAddr := uint16(0x8000) + uint16(tile)*16 + uint16(lineInSprite)*2
		lo := bus.Read(tileAddr)
		hi := bus.Read(tileAddr + 1)

		flipX := s.flags&0x20 != 0
		palette := bus.Read(regOBP0)
		if s.flags&0x10 != 0 {
			palette = bus.Read(regOBP1)
		}
		bgPriority := s.flags&0x80 != 0

		for px := 0; px < 8; px++ {
			x := spriteX + px
			if x < 0 || x >= screenWidth {
				continue
			}

			bit := px
			if flipX {
				bit = 7 - px
			}
			colorIdx := pixelFromRow(lo, hi, bit)
			if colorIdx == 0 {
				continue // transparent
			}
			if bgPriority && raw[x] != 0 {
				continue // behind non-zero background
			}

			row[x] = paletteLookup(palette, colorIdx)
		}
	}
}

// tileRowBytes fetches the two bytes encoding one 8-pixel row of a tile,
// resolving the LCDC-bit-4 pattern table selection (unsigned @0x8000 vs
// signed @0x9000) described in the background data model.
func (p *PPU) tileRowBytes(bus *Bus, lcdc, tileIdx byte, withinY int) (lo, hi byte) {
	var base uint16
	if lcdc&lcdcBGWinTiles != 0 {
		base = 0x8000 + uint16(tileIdx)*16
	} else {
		base = uint16(int32(0x9000) + int32(int8(tileIdx))*16)
	}
	addr := base + uint16(withinY*2)
	return bus.Read(addr), bus.Read(addr + 1)
}

// pixelFromRow extracts the 2-bit color index for column bit (0 = leftmost)
// from a tile row's two bytes.
func pixelFromRow(lo, hi byte, bit int) byte {
	shift := uint(7 - bit)
	loBit := (lo >> shift) & 1
	hiBit := (hi >> shift) & 1
	return hiBit<<1 | loBit
}

// paletteLookup resolves a raw 2-bit color index through a palette register
// (BGP/OBP0/OBP1), each of which packs four 2-bit shades.
func paletteLookup(palette, idx byte) byte {
	return (palette >> (idx * 2)) & 0x03
}

// Framebuffer returns the most recently completed frame as 160x144 bytes,
// row-major, each in {0,1,2,3}.
func (p *PPU) Framebuffer() []byte {
	out := make([]byte, screenWidth*screenHeight)
	for y := 0; y < screenHeight; y++ {
		copy(out[y*screenWidth:(y+1)*screenWidth], p.framebuffer[y][:])
	}
	return out
}
