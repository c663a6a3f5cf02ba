// Package mmu implements the DMG 64 KiB address space: cartridge ROM/RAM
// routing, work RAM and its echo mirror, the PPU/APU/timer/joypad I/O
// windows, OAM DMA, and high RAM.
package mmu

import "github.com/dmgcore/dmgcore/internal/debug"

// CartridgeInterface is the narrow contract the MMU needs from a loaded
// cartridge: bank-aware reads/writes over the full ROM and external-RAM
// windows.
type CartridgeInterface interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// VideoUnit is implemented by the PPU: it owns VRAM, OAM, and its own
// register block, addressed by full CPU address.
type VideoUnit interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)

	// WriteOAMDMA stores a byte directly into OAM, bypassing the mode
	// gating Write applies: OAM DMA has bus priority over the PPU.
	WriteOAMDMA(offset uint8, v uint8)
}

// SoundUnit is implemented by the APU register file.
type SoundUnit interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// TimerUnit is implemented by the DIV/TIMA/TMA/TAC timer.
type TimerUnit interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// JoypadUnit is implemented by the input controller's single register.
type JoypadUnit interface {
	Read() uint8
	Write(v uint8)
}

// MMU routes every CPU memory access to the right backing store or
// peripheral, exposing the single flat cpu.MemoryInterface the core CPU
// expects.
type MMU struct {
	Cartridge CartridgeInterface
	PPU       VideoUnit
	APU       SoundUnit
	Timer     TimerUnit
	Input     JoypadUnit

	WRAM [0x2000]uint8
	HRAM [0x7F]uint8

	IF uint8
	IE uint8

	BootROM       []byte
	bootROMActive bool

	logger *debug.Logger
}

// New creates an MMU with no peripherals attached; wire Cartridge/PPU/APU/
// Timer/Input before use.
func New() *MMU {
	return &MMU{}
}

// SetLogger attaches a debug logger for memory-access tracing.
func (m *MMU) SetLogger(logger *debug.Logger) {
	m.logger = logger
}

// SetBootROM installs a boot ROM image; while active it shadows
// 0x0000-0x00FF (DMG boot ROMs are 256 bytes) until the program writes a
// nonzero value to 0xFF50.
func (m *MMU) SetBootROM(data []byte) {
	m.BootROM = data
	m.bootROMActive = len(data) > 0
}

// Read returns the byte at addr, routing through the DMG memory map.
func (m *MMU) Read(addr uint16) uint8 {
	switch {
	case m.bootROMActive && addr < uint16(len(m.BootROM)) && addr < 0x0100:
		return m.BootROM[addr]

	case addr < 0x8000:
		return m.readCartridge(addr)

	case addr < 0xA000: // VRAM
		return m.readPPU(addr)

	case addr < 0xC000: // external RAM
		return m.readCartridge(addr)

	case addr < 0xE000: // WRAM
		return m.WRAM[addr-0xC000]

	case addr < 0xFE00: // echo RAM, mirrors 0xC000-0xDDFF
		return m.WRAM[addr-0xE000]

	case addr < 0xFEA0: // OAM
		return m.readPPU(addr)

	case addr < 0xFF00: // unusable
		return 0xFF

	case addr < 0xFF80: // I/O registers
		return m.readIO(addr)

	case addr < 0xFFFF: // HRAM
		return m.HRAM[addr-0xFF80]

	default: // 0xFFFF: IE
		return m.IE
	}
}

// Write stores v at addr, routing through the DMG memory map.
func (m *MMU) Write(addr uint16, v uint8) {
	switch {
	case addr < 0x8000:
		m.writeCartridge(addr, v)

	case addr < 0xA000:
		m.writePPU(addr, v)

	case addr < 0xC000:
		m.writeCartridge(addr, v)

	case addr < 0xE000:
		m.WRAM[addr-0xC000] = v

	case addr < 0xFE00:
		m.WRAM[addr-0xE000] = v

	case addr < 0xFEA0:
		m.writePPU(addr, v)

	case addr < 0xFF00:
		// unusable, writes discarded

	case addr < 0xFF80:
		m.writeIO(addr, v)

	case addr < 0xFFFF:
		m.HRAM[addr-0xFF80] = v

	default:
		m.IE = v
	}
}

func (m *MMU) readCartridge(addr uint16) uint8 {
	if m.Cartridge == nil {
		return 0xFF
	}
	return m.Cartridge.Read(addr)
}

func (m *MMU) writeCartridge(addr uint16, v uint8) {
	if m.Cartridge != nil {
		m.Cartridge.Write(addr, v)
	}
}

func (m *MMU) readPPU(addr uint16) uint8 {
	if m.PPU == nil {
		return 0xFF
	}
	return m.PPU.Read(addr)
}

func (m *MMU) writePPU(addr uint16, v uint8) {
	if m.PPU != nil {
		m.PPU.Write(addr, v)
	}
}

// readIO dispatches the 0xFF00-0xFF7F register window to the owning
// peripheral.
func (m *MMU) readIO(addr uint16) uint8 {
	switch {
	case addr == 0xFF00:
		if m.Input != nil {
			return m.Input.Read()
		}
		return 0xFF
	case addr >= 0xFF04 && addr <= 0xFF07:
		if m.Timer != nil {
			return m.Timer.Read(addr)
		}
		return 0xFF
	case addr == 0xFF0F:
		return m.IF | 0xE0
	case addr >= 0xFF10 && addr <= 0xFF3F:
		if m.APU != nil {
			return m.APU.Read(addr)
		}
		return 0xFF
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return m.readPPU(addr)
	case addr == 0xFF50:
		if m.bootROMActive {
			return 0x00
		}
		return 0x01
	default:
		return 0xFF
	}
}

// writeIO dispatches the 0xFF00-0xFF7F register window, including the
// 0xFF46 OAM DMA trigger and the 0xFF50 boot ROM unmap.
func (m *MMU) writeIO(addr uint16, v uint8) {
	switch {
	case addr == 0xFF00:
		if m.Input != nil {
			m.Input.Write(v)
		}
	case addr >= 0xFF04 && addr <= 0xFF07:
		if m.Timer != nil {
			m.Timer.Write(addr, v)
		}
	case addr == 0xFF0F:
		m.IF = v & 0x1F
	case addr >= 0xFF10 && addr <= 0xFF3F:
		if m.APU != nil {
			m.APU.Write(addr, v)
		}
	case addr == 0xFF46:
		m.runDMA(v)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		m.writePPU(addr, v)
	case addr == 0xFF50:
		if v != 0 {
			m.bootROMActive = false
		}
	}
}

// runDMA copies 160 bytes from src*0x100 into OAM. Real hardware spreads
// this over 160 machine cycles during which the CPU can only touch HRAM;
// this core performs the copy immediately and relies on the scheduler not
// granting the CPU extra time, since StepFrame interleaves at instruction
// granularity rather than t-state granularity for this transfer. OAM DMA
// has bus priority over the PPU, so the copy goes through WriteOAMDMA
// rather than the mode-gated Write a CPU store would use: a transfer
// triggered mid-scanline must still land every byte.
func (m *MMU) runDMA(src uint8) {
	base := uint16(src) << 8
	for i := uint16(0); i < 0xA0; i++ {
		if m.PPU != nil {
			m.PPU.WriteOAMDMA(uint8(i), m.Read(base+i))
		}
	}
	if m.logger != nil && m.logger.IsComponentEnabled(debug.ComponentMemory) {
		m.logger.LogMemory(debug.LogLevelDebug, "OAM DMA", map[string]interface{}{"src": base})
	}
}

// RequestInterrupt sets the given bit in IF, used by the PPU, timer and
// joypad peripherals to signal a pending interrupt.
func (m *MMU) RequestInterrupt(bit uint8) {
	m.IF |= bit
}
