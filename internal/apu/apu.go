// Package apu models the DMG sound register file as a passive bank: the
// channel, wave and control registers (NR10-NR52, 0xFF10-0xFF3F) are
// readable and writable with the correct unused-bit masking, but no sample
// is ever generated.
package apu

import "github.com/dmgcore/dmgcore/internal/debug"

const baseAddr = 0xFF10
const regCount = 0x30

// readMask ORs in the unused/write-only bits each register reads back as
// set, matching the well-known DMG open-bus behavior for the sound
// register block.
var readMask = [regCount]uint8{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14 (FF10-FF14)
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // FF15 (unused), NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // FF1F (unused), NR41-NR44
	0x00, 0x00, 0x70, 0xFF, 0xFF, // NR50-NR52, FF27-FF28 (unused)
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // FF29-FF2D (unused)
	0xFF, 0xFF, // FF2E-FF2F (unused)
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // wave RAM FF30-FF3F
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// APU is a plain register bank for the DMG sound hardware: it accepts every
// write a program would make to set up channels, envelopes and the wave
// table, and reads them back with hardware-accurate masking, but produces
// no audio.
type APU struct {
	regs [regCount]uint8

	logger *debug.Logger
}

// New creates an APU with every register at its power-on value of zero.
func New() *APU {
	return &APU{}
}

// SetLogger attaches a debug logger for register-write tracing.
func (a *APU) SetLogger(logger *debug.Logger) {
	a.logger = logger
}

// Reset clears every register.
func (a *APU) Reset() {
	for i := range a.regs {
		a.regs[i] = 0
	}
}

// Read returns the register at addr (0xFF10-0xFF3F) with its unused bits
// forced high.
func (a *APU) Read(addr uint16) uint8 {
	i := addr - baseAddr
	if i >= regCount {
		return 0xFF
	}
	return a.regs[i] | readMask[i]
}

// Write stores v at addr. NR52 (0xFF26) bit 7 is the master sound enable;
// when cleared, real hardware locks out writes to every other register
// except the wave table, so this bank honors the same gate.
func (a *APU) Write(addr uint16, v uint8) {
	i := addr - baseAddr
	if i >= regCount {
		return
	}

	const nr52 = 0xFF26 - baseAddr
	isWaveRAM := addr >= 0xFF30 && addr <= 0xFF3F
	if a.regs[nr52]&0x80 == 0 && i != nr52 && !isWaveRAM {
		return
	}

	a.regs[i] = v
	if a.logger != nil && a.logger.IsComponentEnabled(debug.ComponentAPU) {
		a.logger.LogAPU(debug.LogLevelDebug, "register write", map[string]interface{}{"addr": addr, "value": v})
	}
}
