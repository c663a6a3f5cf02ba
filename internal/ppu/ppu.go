// Package ppu implements the DMG picture processing unit: VRAM/OAM storage,
// the LCDC/STAT/SCX/SCY/LY/LYC/BGP/OBP0/OBP1/WY/WX register file, and the
// scanline mode machine that composites background, window and sprites into
// a 160x144 framebuffer of 2-bit shade indices.
package ppu

import "github.com/dmgcore/dmgcore/internal/debug"

const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// Mode values occupy STAT bits 1-0.
const (
	ModeHBlank = 0
	ModeVBlank = 1
	ModeOAM    = 2
	ModeTransfer = 3
)

// IF bits this PPU requests.
const (
	InterruptVBlank = uint8(0x01)
	InterruptLCD    = uint8(0x02)
)

// PPU owns video RAM, OAM, the LCD register file and the mode/scanline
// machine. Reads and writes arrive already address-decoded by the MMU but
// still carry the full CPU address, since VRAM/OAM gating and register
// selection both depend on it.
type PPU struct {
	VRAM [0x2000]uint8
	OAM  [0xA0]uint8

	LCDC, STAT           uint8
	SCY, SCX             uint8
	LY, LYC              uint8
	BGP, OBP0, OBP1      uint8
	WY, WX               uint8
	dmaReg               uint8

	mode         uint8
	dot          int
	windowLine   int
	frameCounter uint64

	FrameBuffer [ScreenWidth * ScreenHeight]uint8

	// bgColorIndex holds this scanline's raw (pre-palette) background color
	// index per pixel, consulted by sprite rendering for the BG-priority rule.
	bgColorIndex [ScreenWidth]uint8

	// OnFrame is invoked with the completed framebuffer on entering V-blank.
	OnFrame func(frame [ScreenWidth * ScreenHeight]uint8)

	RequestInterrupt func(bit uint8)

	logger *debug.Logger
}

// New creates a PPU with all registers at zero and the mode machine at its
// power-on state: scanline 0, OAM-scan mode.
func New() *PPU {
	p := &PPU{mode: ModeOAM}
	p.updateSTATMode()
	return p
}

// SetLogger attaches a debug logger for PPU tracing.
func (p *PPU) SetLogger(logger *debug.Logger) {
	p.logger = logger
}

// Reset returns the PPU to its post-power-on state.
func (p *PPU) Reset() {
	*p = PPU{OnFrame: p.OnFrame, RequestInterrupt: p.RequestInterrupt, logger: p.logger, mode: ModeOAM}
}

// GetScanline implements debug.PPUStateReader.
func (p *PPU) GetScanline() int { return int(p.LY) }

// GetMode implements debug.PPUStateReader.
func (p *PPU) GetMode() int { return int(p.mode) }

// GetFrameCounter implements debug.PPUStateReader.
func (p *PPU) GetFrameCounter() uint64 { return p.frameCounter }

// Framebuffer returns the most recently rendered (or in-progress) frame.
func (p *PPU) Framebuffer() [ScreenWidth * ScreenHeight]uint8 { return p.FrameBuffer }

func (p *PPU) displayOn() bool { return p.LCDC&0x80 != 0 }

// Read returns the byte at addr: VRAM (0x8000-0x9FFF), OAM (0xFE00-0xFE9F),
// or a register (0xFF40-0xFF4B). VRAM is inaccessible during mode 3 and OAM
// during modes 2-3, both only while the display is on; a blocked read
// returns 0xFF exactly as real hardware does.
func (p *PPU) Read(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr < 0xA000:
		if p.displayOn() && p.mode == ModeTransfer {
			return 0xFF
		}
		return p.VRAM[addr-0x8000]

	case addr >= 0xFE00 && addr < 0xFEA0:
		if p.displayOn() && (p.mode == ModeOAM || p.mode == ModeTransfer) {
			return 0xFF
		}
		return p.OAM[addr-0xFE00]

	default:
		return p.readRegister(addr)
	}
}

// WriteOAMDMA stores v directly into OAM at offset, bypassing the mode
// gating Write applies: OAM DMA has bus priority over the PPU and must
// land every byte regardless of the current mode.
func (p *PPU) WriteOAMDMA(offset uint8, v uint8) {
	p.OAM[offset] = v
}

// Write stores v at addr, gated identically to Read for VRAM/OAM.
func (p *PPU) Write(addr uint16, v uint8) {
	switch {
	case addr >= 0x8000 && addr < 0xA000:
		if p.displayOn() && p.mode == ModeTransfer {
			return
		}
		p.VRAM[addr-0x8000] = v

	case addr >= 0xFE00 && addr < 0xFEA0:
		if p.displayOn() && (p.mode == ModeOAM || p.mode == ModeTransfer) {
			return
		}
		p.OAM[addr-0xFE00] = v

	default:
		p.writeRegister(addr, v)
	}
}

func (p *PPU) readRegister(addr uint16) uint8 {
	switch addr {
	case 0xFF40:
		return p.LCDC
	case 0xFF41:
		if !p.displayOn() {
			return (p.STAT &^ 0x03) | 0x80
		}
		return p.STAT | 0x80
	case 0xFF42:
		return p.SCY
	case 0xFF43:
		return p.SCX
	case 0xFF44:
		return p.LY
	case 0xFF45:
		return p.LYC
	case 0xFF46:
		return p.dmaReg
	case 0xFF47:
		return p.BGP
	case 0xFF48:
		return p.OBP0
	case 0xFF49:
		return p.OBP1
	case 0xFF4A:
		return p.WY
	case 0xFF4B:
		return p.WX
	default:
		return 0xFF
	}
}

func (p *PPU) writeRegister(addr uint16, v uint8) {
	switch addr {
	case 0xFF40:
		wasOn := p.displayOn()
		p.LCDC = v
		if wasOn && !p.displayOn() {
			p.LY = 0
			p.dot = 0
			p.windowLine = 0
			p.mode = ModeHBlank
			p.updateSTATMode()
		}
	case 0xFF41:
		p.STAT = (p.STAT & 0x07) | (v & 0x78)
	case 0xFF42:
		p.SCY = v
	case 0xFF43:
		p.SCX = v
	case 0xFF44:
		p.LY = 0
	case 0xFF45:
		p.LYC = v
	case 0xFF46:
		p.dmaReg = v
	case 0xFF47:
		p.BGP = v
	case 0xFF48:
		p.OBP0 = v
	case 0xFF49:
		p.OBP1 = v
	case 0xFF4A:
		p.WY = v
	case 0xFF4B:
		p.WX = v
	}
	if p.logger != nil && p.logger.IsComponentEnabled(debug.ComponentPPU) {
		p.logger.LogPPU(debug.LogLevelDebug, "register write", map[string]interface{}{"addr": addr, "value": v})
	}
}

func (p *PPU) updateSTATMode() {
	p.STAT = (p.STAT &^ 0x03) | (p.mode & 0x03)
}

func (p *PPU) requestInterrupt(bit uint8) {
	if p.RequestInterrupt != nil {
		p.RequestInterrupt(bit)
	}
}
