package ppu

// Scanline timing: 456 dots per line, 144 visible lines followed by 10
// V-blank lines, one dot per master-clock cycle. Within a visible line the
// mode machine runs OAM-scan (80 dots) -> pixel-transfer (172 dots) ->
// H-blank (204 dots); the scanline's pixels are composited in one shot at
// the transition into H-blank rather than dot by dot, which the hardware's
// observable mode timing permits.
const (
	DotsPerScanline  = 456
	OAMScanDots      = 80
	TransferDots     = 172
	VisibleScanlines = 144
	TotalScanlines   = 154

	maxSpritesPerScanline = 10
)

// Advance steps the PPU by cycles master-clock cycles.
func (p *PPU) Advance(cycles uint8) {
	for i := uint8(0); i < cycles; i++ {
		p.tickDot()
	}
}

func (p *PPU) tickDot() {
	if !p.displayOn() {
		return
	}

	if p.LY < VisibleScanlines {
		switch p.dot {
		case 0:
			p.enterMode(ModeOAM)
		case OAMScanDots:
			p.enterMode(ModeTransfer)
		case OAMScanDots + TransferDots:
			p.renderScanline()
			p.enterMode(ModeHBlank)
		}
	} else if p.LY == VisibleScanlines && p.dot == 0 {
		p.enterMode(ModeVBlank)
		p.deliverFrame()
	}

	p.dot++
	if p.dot >= DotsPerScanline {
		p.dot = 0
		p.LY++
		if p.LY >= TotalScanlines {
			p.LY = 0
			p.windowLine = 0
		}
		p.checkLYC()
	}
}

func (p *PPU) enterMode(mode uint8) {
	p.mode = mode
	p.updateSTATMode()

	switch mode {
	case ModeOAM:
		if p.STAT&0x20 != 0 {
			p.requestInterrupt(InterruptLCD)
		}
	case ModeHBlank:
		if p.STAT&0x08 != 0 {
			p.requestInterrupt(InterruptLCD)
		}
	case ModeVBlank:
		if p.STAT&0x10 != 0 {
			p.requestInterrupt(InterruptLCD)
		}
		p.requestInterrupt(InterruptVBlank)
	}
}

func (p *PPU) checkLYC() {
	if p.LY == p.LYC {
		p.STAT |= 0x04
		if p.STAT&0x40 != 0 {
			p.requestInterrupt(InterruptLCD)
		}
	} else {
		p.STAT &^= 0x04
	}
}

func (p *PPU) deliverFrame() {
	p.frameCounter++
	if p.OnFrame != nil {
		p.OnFrame(p.FrameBuffer)
	}
}

// renderScanline composites background, window and sprites for the
// current LY into FrameBuffer.
func (p *PPU) renderScanline() {
	row := int(p.LY)
	for x := range p.bgColorIndex {
		p.bgColorIndex[x] = 0
	}

	if p.LCDC&0x01 != 0 {
		p.renderBackground(row)
		if p.LCDC&0x20 != 0 && int(p.WY) <= row && p.WX <= 166 {
			p.renderWindow(row)
		}
	} else {
		for x := 0; x < ScreenWidth; x++ {
			p.FrameBuffer[row*ScreenWidth+x] = 0
		}
	}

	if p.LCDC&0x02 != 0 {
		p.renderSprites(row)
	}
}

func (p *PPU) renderBackground(row int) {
	mapY := (row + int(p.SCY)) & 0xFF
	tileRow := mapY / 8
	rowInTile := mapY & 7

	mapBase := uint16(0x9800)
	if p.LCDC&0x08 != 0 {
		mapBase = 0x9C00
	}

	var strip [21 * 8]uint8
	for i := 0; i < 21; i++ {
		tileCol := (int(p.SCX)/8 + i) & 31
		tileIndex := p.VRAM[mapBase-0x8000+uint16(tileRow*32+tileCol)]
		lo, hi := p.tileRowBytes(tileIndex, rowInTile)
		for bit := 0; bit < 8; bit++ {
			colorIndex := (((hi >> (7 - bit)) & 1) << 1) | ((lo >> (7 - bit)) & 1)
			strip[i*8+bit] = colorIndex
		}
	}

	shift := int(p.SCX) & 7
	for x := 0; x < ScreenWidth; x++ {
		colorIndex := strip[shift+x]
		p.bgColorIndex[x] = colorIndex
		p.FrameBuffer[row*ScreenWidth+x] = p.shade(p.BGP, colorIndex)
	}
}

func (p *PPU) renderWindow(row int) {
	startX := int(p.WX) - 7
	if startX >= ScreenWidth {
		return
	}

	mapBase := uint16(0x9800)
	if p.LCDC&0x40 != 0 {
		mapBase = 0x9C00
	}

	tileRow := p.windowLine / 8
	rowInTile := p.windowLine & 7

	drew := false
	for col := 0; ; col++ {
		x := startX + col*8
		if x >= ScreenWidth {
			break
		}
		tileIndex := p.VRAM[mapBase-0x8000+uint16(tileRow*32+col)]
		lo, hi := p.tileRowBytes(tileIndex, rowInTile)
		for bit := 0; bit < 8; bit++ {
			px := x + bit
			if px < 0 || px >= ScreenWidth {
				continue
			}
			colorIndex := (((hi >> (7 - bit)) & 1) << 1) | ((lo >> (7 - bit)) & 1)
			p.bgColorIndex[px] = colorIndex
			p.FrameBuffer[row*ScreenWidth+px] = p.shade(p.BGP, colorIndex)
			drew = true
		}
	}

	if drew {
		p.windowLine++
	}
}

// tileRowBytes fetches the two bytes encoding one 8-pixel row of tileIndex,
// honoring LCDC.bg_win_tile_data's unsigned-0x8000 vs signed-0x9000 base.
func (p *PPU) tileRowBytes(tileIndex uint8, rowInTile int) (lo, hi uint8) {
	var addr uint16
	if p.LCDC&0x10 != 0 {
		addr = 0x8000 + uint16(tileIndex)*16
	} else {
		addr = uint16(int32(0x9000) + int32(int8(tileIndex))*16)
	}
	addr += uint16(rowInTile * 2)
	lo = p.VRAM[addr-0x8000]
	hi = p.VRAM[addr-0x8000+1]
	return
}

type spriteEntry struct {
	y, x, tile, attr uint8
	oamIndex         int
}

func (p *PPU) renderSprites(row int) {
	height := 8
	if p.LCDC&0x04 != 0 {
		height = 16
	}

	var candidates []spriteEntry
	for i := 0; i < 40 && len(candidates) < maxSpritesPerScanline; i++ {
		y := int(p.OAM[i*4+0]) - 16
		if row < y || row >= y+height {
			continue
		}
		candidates = append(candidates, spriteEntry{
			y: p.OAM[i*4+0], x: p.OAM[i*4+1], tile: p.OAM[i*4+2], attr: p.OAM[i*4+3], oamIndex: i,
		})
	}

	for x := 0; x < ScreenWidth; x++ {
		var best *spriteEntry
		for i := range candidates {
			s := &candidates[i]
			sx := int(s.x) - 8
			if x < sx || x >= sx+8 {
				continue
			}
			if best == nil || int(s.x) < int(best.x) || (int(s.x) == int(best.x) && s.oamIndex < best.oamIndex) {
				best = s
			}
		}
		if best == nil {
			continue
		}
		p.drawSpritePixel(row, x, best, height)
	}
}

func (p *PPU) drawSpritePixel(row, x int, s *spriteEntry, height int) {
	sy := int(s.y) - 16
	sx := int(s.x) - 8

	lineInSprite := row - sy
	if s.attr&0x40 != 0 {
		lineInSprite = height - 1 - lineInSprite
	}

	tile := s.tile
	if height == 16 {
		tile &^= 0x01
	}
	tileOffset := tile
	if height == 16 && lineInSprite >= 8 {
		tileOffset = tile + 1
		lineInSprite -= 8
	}

	pixelInSprite := x - sx
	if s.attr&0x20 != 0 {
		pixelInSprite = 7 - pixelInSprite
	}

	addr := uint16(0x8000) + uint16(tileOffset)*16 + uint16(lineInSprite*2)
	lo := p.VRAM[addr-0x8000]
	hi := p.VRAM[addr-0x8000+1]
	colorIndex := (((hi >> (7 - pixelInSprite)) & 1) << 1) | ((lo >> (7 - pixelInSprite)) & 1)
	if colorIndex == 0 {
		return
	}

	if s.attr&0x80 != 0 && p.bgColorIndex[x] != 0 {
		return
	}

	palette := p.OBP0
	if s.attr&0x10 != 0 {
		palette = p.OBP1
	}
	p.FrameBuffer[row*ScreenWidth+x] = p.shade(palette, colorIndex)
}

func (p *PPU) shade(palette, colorIndex uint8) uint8 {
	return (palette >> (colorIndex * 2)) & 0x03
}
