package emulator

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/dmgcore/dmgcore/internal/cartridge"
	"github.com/dmgcore/dmgcore/internal/cpu"
	"github.com/dmgcore/dmgcore/internal/input"
)

func init() {
	gob.Register(cpu.Registers{})
	gob.Register(cartridge.RTCSnapshot{})
}

// saveStateVersion identifies the SaveState encoding; LoadState rejects any
// other version rather than guessing at a layout change.
const saveStateVersion = 1

// SaveState is a snapshot of a Machine's registers and RAM. The PPU's
// position within the current scanline (dot counter, mode, window line) is
// not captured, so a restored machine resumes at the same LY but not
// necessarily the same dot.
type SaveState struct {
	Version uint16

	CPU       CPUState
	MMU       MMUState
	PPU       PPUState
	APU       APUState
	Timer     TimerState
	Input     InputState
	Cartridge CartridgeState
}

// InputState is the last button snapshot delivered to the joypad plus which
// row it last had selected, since a row selection made mid-frame survives a
// save independent of whatever snapshot SetInput installs next.
type InputState struct {
	Buttons         input.State
	SelectDirection bool
	SelectAction    bool
}

// CPUState is the register file plus the interrupt/HALT machinery that
// doesn't live in Registers.
type CPUState struct {
	Reg     cpu.Registers
	IME     bool
	EIDelay uint8
	Halted  bool
	Cycles  uint64
}

// MMUState is everything the MMU owns directly: work RAM, high RAM, and the
// interrupt flag/enable registers. Cartridge ROM is not part of a save
// state; the host is expected to reload the same image before restoring.
type MMUState struct {
	WRAM [0x2000]uint8
	HRAM [0x7F]uint8
	IF   uint8
	IE   uint8
}

// PPUState is video RAM, OAM and every LCD register. The mode machine's dot
// counter and window line counter are not part of it.
type PPUState struct {
	VRAM [0x2000]uint8
	OAM  [0xA0]uint8

	LCDC, STAT      uint8
	SCY, SCX        uint8
	LY, LYC         uint8
	BGP, OBP0, OBP1 uint8
	WY, WX          uint8
}

// APUState is the NR10-NR52 register bank as read back through the register
// interface (unused bits read as 1); no synthesis state exists to
// capture since this core never generates audio.
type APUState struct {
	Registers [0x30]uint8
}

// TimerState is the free-running divider (all 16 bits, not just the upper
// byte 0xFF04 exposes) plus the gated TIMA/TMA/TAC counter.
type TimerState struct {
	Divider uint16
	TIMA    uint8
	TMA     uint8
	TAC     uint8
}

// CartridgeState is external RAM plus, for an MBC3+RTC cartridge, the
// real-time-clock register file (live and latched).
type CartridgeState struct {
	RAM    []byte
	HasRTC bool
	RTC    cartridge.RTCSnapshot
}

// Snapshot captures the machine's state as a SaveState value; encoding it to
// bytes is left to SaveStateToBytes.
func (m *Machine) Snapshot() SaveState {
	s := SaveState{
		Version: saveStateVersion,
		CPU: CPUState{
			Reg:     m.CPU.Reg,
			IME:     m.CPU.IME,
			EIDelay: m.CPU.EIDelay(),
			Halted:  m.CPU.Halted,
			Cycles:  m.CPU.Cycles,
		},
		MMU: MMUState{
			WRAM: m.MMU.WRAM,
			HRAM: m.MMU.HRAM,
			IF:   m.MMU.IF,
			IE:   m.MMU.IE,
		},
		PPU: PPUState{
			VRAM: m.PPU.VRAM,
			OAM:  m.PPU.OAM,
			LCDC: m.PPU.LCDC, STAT: m.PPU.STAT,
			SCY: m.PPU.SCY, SCX: m.PPU.SCX,
			LY: m.PPU.LY, LYC: m.PPU.LYC,
			BGP: m.PPU.BGP, OBP0: m.PPU.OBP0, OBP1: m.PPU.OBP1,
			WY: m.PPU.WY, WX: m.PPU.WX,
		},
	}

	for i := 0; i < 0x30; i++ {
		s.APU.Registers[i] = m.APU.Read(uint16(0xFF10 + i))
	}

	s.Timer.TIMA = m.Timer.Read(0xFF05)
	s.Timer.TMA = m.Timer.Read(0xFF06)
	s.Timer.TAC = m.Timer.Read(0xFF07)
	s.Timer.Divider = m.Timer.Divider()

	s.Input.Buttons = m.Input.CurrentState()
	s.Input.SelectDirection, s.Input.SelectAction = m.Input.RowSelect()

	if m.Cartridge != nil {
		s.Cartridge.RAM = m.Cartridge.SaveRAM()
		if rtc, ok := m.Cartridge.RTC(); ok {
			s.Cartridge.HasRTC = true
			s.Cartridge.RTC = rtc
		}
	}

	return s
}

// Restore installs a previously captured SaveState. The machine must
// already have the same cartridge loaded (LoadCartridge) since ROM content
// is not part of the snapshot.
func (m *Machine) Restore(s SaveState) error {
	if s.Version != saveStateVersion {
		return fmt.Errorf("emulator: unsupported save state version %d (expected %d)", s.Version, saveStateVersion)
	}

	m.CPU.Reg = s.CPU.Reg
	m.CPU.IME = s.CPU.IME
	m.CPU.SetEIDelay(s.CPU.EIDelay)
	m.CPU.Halted = s.CPU.Halted
	m.CPU.Cycles = s.CPU.Cycles
	m.CPU.Fault = nil

	m.MMU.WRAM = s.MMU.WRAM
	m.MMU.HRAM = s.MMU.HRAM
	m.MMU.IF = s.MMU.IF
	m.MMU.IE = s.MMU.IE

	m.PPU.VRAM = s.PPU.VRAM
	m.PPU.OAM = s.PPU.OAM
	m.PPU.LCDC = s.PPU.LCDC
	m.PPU.STAT = s.PPU.STAT
	m.PPU.SCY, m.PPU.SCX = s.PPU.SCY, s.PPU.SCX
	m.PPU.LY, m.PPU.LYC = s.PPU.LY, s.PPU.LYC
	m.PPU.BGP, m.PPU.OBP0, m.PPU.OBP1 = s.PPU.BGP, s.PPU.OBP0, s.PPU.OBP1
	m.PPU.WY, m.PPU.WX = s.PPU.WY, s.PPU.WX

	m.APU.Write(0xFF26, 0x80) // power on so FF10-FF25 accept the saved values
	for i, v := range s.APU.Registers {
		m.APU.Write(uint16(0xFF10+i), v)
	}

	m.Timer.SetDivider(s.Timer.Divider)
	m.Timer.Write(0xFF06, s.Timer.TMA)
	m.Timer.Write(0xFF07, s.Timer.TAC)
	m.Timer.Write(0xFF05, s.Timer.TIMA)

	m.Input.SetRowSelect(s.Input.SelectDirection, s.Input.SelectAction)
	m.Input.SetState(s.Input.Buttons)

	if m.Cartridge != nil {
		m.Cartridge.LoadRAM(s.Cartridge.RAM)
		if s.Cartridge.HasRTC {
			m.Cartridge.SetRTC(s.Cartridge.RTC)
		}
	}

	return nil
}

// SaveStateToBytes encodes a Snapshot with gob, suitable for writing to a
// save-state file or handing to a host's own persistence layer.
func (m *Machine) SaveStateToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m.Snapshot()); err != nil {
		return nil, fmt.Errorf("emulator: encode save state: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadStateFromBytes decodes and restores a save state produced by
// SaveStateToBytes.
func (m *Machine) LoadStateFromBytes(data []byte) error {
	var s SaveState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("emulator: decode save state: %w", err)
	}
	return m.Restore(s)
}

// SaveStateToFile encodes and writes a save state to filename.
func (m *Machine) SaveStateToFile(filename string) error {
	data, err := m.SaveStateToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// LoadStateFromFile reads and restores a save state previously written by
// SaveStateToFile.
func (m *Machine) LoadStateFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("emulator: read save state file: %w", err)
	}
	return m.LoadStateFromBytes(data)
}
