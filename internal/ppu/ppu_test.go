package ppu

import "testing"

func newTestPPU() *PPU {
	p := New()
	p.LCDC = 0x91 // LCD on, BG on, unsigned tile data, tile map 0x9800
	p.BGP = 0xE4  // identity palette: 3,2,1,0
	return p
}

// advanceDots steps p by n dots in chunks that fit Advance's uint8 argument.
func advanceDots(p *PPU, n int) {
	for n > 0 {
		step := n
		if step > 255 {
			step = 255
		}
		p.Advance(uint8(step))
		n -= step
	}
}

func TestModeSequenceWithinOneScanline(t *testing.T) {
	p := newTestPPU()
	if p.GetMode() != ModeOAM {
		t.Fatalf("initial mode: expected OAM (%d), got %d", ModeOAM, p.GetMode())
	}

	p.Advance(OAMScanDots - 1)
	if p.GetMode() != ModeOAM {
		t.Fatalf("before 80 dots: expected still OAM, got %d", p.GetMode())
	}
	p.Advance(1)
	if p.GetMode() != ModeTransfer {
		t.Fatalf("at 80 dots: expected Transfer, got %d", p.GetMode())
	}

	p.Advance(TransferDots - 1)
	if p.GetMode() != ModeTransfer {
		t.Fatalf("before 252 dots: expected still Transfer, got %d", p.GetMode())
	}
	p.Advance(1)
	if p.GetMode() != ModeHBlank {
		t.Fatalf("at 252 dots: expected HBlank, got %d", p.GetMode())
	}

	p.Advance(DotsPerScanline - (OAMScanDots + TransferDots))
	if p.GetScanline() != 1 {
		t.Fatalf("after 456 dots: expected LY=1, got %d", p.GetScanline())
	}
	if p.GetMode() != ModeOAM {
		t.Fatalf("start of next line: expected OAM, got %d", p.GetMode())
	}
}

func TestVBlankEntryRequestsInterruptAndDeliversFrame(t *testing.T) {
	p := newTestPPU()
	var requested []uint8
	p.RequestInterrupt = func(bit uint8) { requested = append(requested, bit) }
	delivered := false
	p.OnFrame = func(frame [ScreenWidth * ScreenHeight]uint8) { delivered = true }

	advanceDots(p, DotsPerScanline*VisibleScanlines)

	if p.GetScanline() != VisibleScanlines {
		t.Fatalf("expected LY=%d entering vblank, got %d", VisibleScanlines, p.GetScanline())
	}
	if p.GetMode() != ModeVBlank {
		t.Fatalf("expected mode VBlank, got %d", p.GetMode())
	}
	if !delivered {
		t.Fatalf("expected OnFrame to fire on entering vblank")
	}
	found := false
	for _, b := range requested {
		if b == InterruptVBlank {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected VBlank interrupt requested, got %v", requested)
	}
}

func TestFullFrameWrapsLYBackToZero(t *testing.T) {
	p := newTestPPU()
	advanceDots(p, DotsPerScanline*TotalScanlines)
	if p.GetScanline() != 0 {
		t.Fatalf("after full frame: expected LY=0, got %d", p.GetScanline())
	}
	if p.GetFrameCounter() != 1 {
		t.Fatalf("expected frame counter 1, got %d", p.GetFrameCounter())
	}
}

func TestLYCCoincidenceRequestsLCDInterrupt(t *testing.T) {
	p := newTestPPU()
	p.LYC = 1
	p.STAT = 0x40 // enable LYC interrupt
	var requested []uint8
	p.RequestInterrupt = func(bit uint8) { requested = append(requested, bit) }

	advanceDots(p, DotsPerScanline)

	if p.Read(0xFF41)&0x04 == 0 {
		t.Fatalf("expected STAT coincidence flag set at LY==LYC")
	}
	found := false
	for _, b := range requested {
		if b == InterruptLCD {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected LCD interrupt on LYC match, got %v", requested)
	}
}

func TestVRAMBlockedDuringTransferMode(t *testing.T) {
	p := newTestPPU()
	p.Write(0x8000, 0x42)
	p.Advance(OAMScanDots) // now in mode 3
	if got := p.Read(0x8000); got != 0xFF {
		t.Fatalf("VRAM read during mode 3: expected 0xFF, got 0x%02X", got)
	}
	p.Write(0x8000, 0x99) // should be dropped
	p.Advance(TransferDots)
	if got := p.Read(0x8000); got != 0x42 {
		t.Fatalf("VRAM after mode 3: expected write during transfer dropped, got 0x%02X", got)
	}
}

func TestOAMBlockedDuringOAMAndTransferModes(t *testing.T) {
	p := newTestPPU()
	if got := p.Read(0xFE00); got != 0xFF {
		t.Fatalf("OAM read during mode 2: expected 0xFF, got 0x%02X", got)
	}
}

func TestDisplayOffHoldsLYAtZero(t *testing.T) {
	p := newTestPPU()
	p.LCDC = 0x01 // display off
	advanceDots(p, DotsPerScanline*10)
	if p.GetScanline() != 0 {
		t.Fatalf("display off: expected LY held at 0, got %d", p.GetScanline())
	}
	if p.Read(0xFF41)&0x03 != ModeHBlank {
		t.Fatalf("display off: expected STAT mode 0, got %d", p.Read(0xFF41)&0x03)
	}
}

func TestWriteToLYForcesZero(t *testing.T) {
	p := newTestPPU()
	advanceDots(p, DotsPerScanline*5)
	p.Write(0xFF44, 0x50)
	if p.Read(0xFF44) != 0 {
		t.Fatalf("write to LY: expected forced to 0, got %d", p.Read(0xFF44))
	}
}

func TestBackgroundTileRendersExpectedShades(t *testing.T) {
	p := newTestPPU()
	// tile 0 at tilemap (0,0): tilemap byte at 0x9800 = 0 (tile index 0)
	p.VRAM[0x9800-0x8000] = 0x00
	// tile data for tile 0, row 0: low=0b10000000 hi=0b11000000 -> pixel0 colorIndex=3 (hi=1,lo=1), pixel1 colorIndex=2(hi=1,lo=0)
	p.VRAM[0x8000-0x8000+0] = 0x80 // low byte, row 0
	p.VRAM[0x8000-0x8000+1] = 0xC0 // high byte, row 0

	p.renderScanline()

	if got := p.FrameBuffer[0]; got != 3 {
		t.Errorf("pixel 0: expected shade 3, got %d", got)
	}
	if got := p.FrameBuffer[1]; got != 2 {
		t.Errorf("pixel 1: expected shade 2, got %d", got)
	}
}

func TestSpritePriorityOverBackgroundColorZero(t *testing.T) {
	p := newTestPPU()
	p.OBP0 = 0xE4
	// sprite 0 at OAM index 0: y=16 (screen row 0), x=8 (screen col 0), tile 1, attr 0
	p.OAM[0] = 16
	p.OAM[1] = 8
	p.OAM[2] = 1
	p.OAM[3] = 0
	// tile 1 row 0: all pixels color index 1 (lo=0xFF, hi=0x00)
	p.VRAM[0x8000 - 0x8000 + 16] = 0xFF
	p.VRAM[0x8000 - 0x8000 + 17] = 0x00
	p.LCDC |= 0x02 // obj enable

	p.renderScanline()

	if got := p.FrameBuffer[0]; got != 1 {
		t.Fatalf("sprite pixel 0: expected shade 1, got %d", got)
	}
}

func TestSpriteSameXLowerOAMIndexWins(t *testing.T) {
	p := newTestPPU()
	p.LCDC |= 0x02
	p.OBP0 = 0xE4
	// sprite A: oam index 0, x=8 (screen 0), tile 1 all color 1
	p.OAM[0] = 16
	p.OAM[1] = 8
	p.OAM[2] = 1
	p.OAM[3] = 0
	// sprite B: oam index 1, overlapping x=8 too (tie), tile 2 all color 2
	p.OAM[4] = 16
	p.OAM[5] = 8
	p.OAM[6] = 2
	p.OAM[7] = 0
	p.VRAM[16] = 0xFF // tile 1 row0: color index 1 everywhere
	p.VRAM[17] = 0x00
	p.VRAM[32] = 0x00 // tile 2 row0: color index 2 everywhere
	p.VRAM[33] = 0xFF

	p.renderScanline()

	// Both sprites occupy the same X; the lower OAM index (sprite A, tile 1,
	// shade 1) must win over sprite B (tile 2, shade 2).
	if got := p.FrameBuffer[0]; got != 1 {
		t.Fatalf("overlapping same-X sprites: expected lower OAM index's shade (1), got %d", got)
	}
}
