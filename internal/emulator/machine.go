// Package emulator wires the CPU, MMU, cartridge and peripherals into a
// runnable DMG machine: cartridge/boot-ROM loading, frame-at-a-time
// execution, input delivery and save-state round-tripping.
package emulator

import (
	"fmt"

	"github.com/dmgcore/dmgcore/internal/apu"
	"github.com/dmgcore/dmgcore/internal/cartridge"
	"github.com/dmgcore/dmgcore/internal/clock"
	"github.com/dmgcore/dmgcore/internal/cpu"
	"github.com/dmgcore/dmgcore/internal/debug"
	"github.com/dmgcore/dmgcore/internal/input"
	"github.com/dmgcore/dmgcore/internal/mmu"
	"github.com/dmgcore/dmgcore/internal/ppu"
	"github.com/dmgcore/dmgcore/internal/timer"
)

// LoadError is returned when a boot ROM or cartridge image cannot be
// accepted: the wrong size, an unreadable header, or an unsupported mapper.
type LoadError struct {
	Reason string
}

func (e *LoadError) Error() string { return fmt.Sprintf("emulator: %s", e.Reason) }

// Machine is a complete DMG: CPU, MMU, cartridge slot and the PPU/APU/timer/
// joypad peripherals the MMU routes to, run frame by frame by a MasterClock.
type Machine struct {
	CPU       *cpu.CPU
	MMU       *mmu.MMU
	Cartridge *cartridge.Cartridge
	PPU       *ppu.PPU
	APU       *apu.APU
	Timer     *timer.Timer
	Input     *input.Joypad
	Logger    *debug.Logger

	Clock *clock.MasterClock

	CycleLogger *debug.CycleLogger

	frameReady bool
	lastFrame  [ppu.ScreenWidth * ppu.ScreenHeight]uint8
	bootROMSet bool
}

// NewMachine creates a Machine with every peripheral wired to the MMU and
// the MMU wired to the CPU, ready to accept LoadBootROM and/or LoadCartridge.
func NewMachine() *Machine {
	return NewMachineWithLogger(nil)
}

// NewMachineWithLogger creates a Machine and attaches logger to every
// peripheral that supports component-scoped tracing.
func NewMachineWithLogger(logger *debug.Logger) *Machine {
	bus := mmu.New()
	video := ppu.New()
	sound := apu.New()
	tim := timer.New()
	joy := input.New()

	bus.PPU = video
	bus.APU = sound
	bus.Timer = tim
	bus.Input = joy

	video.RequestInterrupt = bus.RequestInterrupt
	tim.RequestInterrupt = bus.RequestInterrupt
	joy.RequestInterrupt = bus.RequestInterrupt

	level := cpu.CPULogNone
	if logger != nil {
		level = cpu.CPULogInstructions
	}
	cpuLogger := cpu.NewCPULoggerAdapter(logger, level)
	core := cpu.NewCPU(bus, cpuLogger)

	m := &Machine{
		CPU:    core,
		MMU:    bus,
		PPU:    video,
		APU:    sound,
		Timer:  tim,
		Input:  joy,
		Logger: logger,
		Clock:  clock.NewMasterClock(),
	}

	video.OnFrame = func(frame [ppu.ScreenWidth * ppu.ScreenHeight]uint8) {
		m.lastFrame = frame
		m.frameReady = true
	}

	m.Clock.CPUStep = core.Step
	m.Clock.PPUStep = video.Advance
	m.Clock.TimerStep = tim.Advance

	if logger != nil {
		bus.SetLogger(logger)
		video.SetLogger(logger)
		sound.SetLogger(logger)
		tim.SetLogger(logger)
		joy.SetLogger(logger)
	}

	return m
}

// LoadCartridge parses a ROM image and its header, provisions the matching
// memory bank controller, and, when no boot ROM has been loaded, installs
// documented post-boot register values (entry point 0x0100, A=0x01 F=0xB0
// ..., LCDC=0x91, BGP=0xFC, OBP0=OBP1=0xFF). With a boot ROM loaded the
// registers are left for the boot ROM to set up.
func (m *Machine) LoadCartridge(data []byte) error {
	cart, err := cartridge.Load(data)
	if err != nil {
		return err
	}

	m.Cartridge = cart
	m.MMU.Cartridge = cart

	if !m.bootROMSet {
		m.powerUpWithoutBootROM()
	}
	return nil
}

// LoadBootROM installs a 256-byte DMG boot ROM image, which runs from
// 0x0000 until the program writes 1 to 0xFF50, at which point cartridge
// bank 0 is exposed in its place. The CPU's PC is set to 0x0000 to begin
// execution there instead of at the documented post-boot entry point.
func (m *Machine) LoadBootROM(data []byte) error {
	if len(data) != 256 {
		return &LoadError{Reason: fmt.Sprintf("boot ROM must be exactly 256 bytes, got %d", len(data))}
	}
	m.MMU.SetBootROM(data)
	m.bootROMSet = true
	m.CPU.Reset()
	m.CPU.Reg.PC = 0x0000
	return nil
}

// powerUpWithoutBootROM installs the register and I/O defaults a real DMG
// would have after its internal boot ROM finishes, used when the host
// skips boot ROM emulation entirely.
func (m *Machine) powerUpWithoutBootROM() {
	m.CPU.Reset()
	m.CPU.Reg.PowerUp()
	m.Timer.Write(0xFF05, 0x00)
	m.Timer.Write(0xFF06, 0x00)
	m.Timer.Write(0xFF07, 0x00)
	m.PPU.LCDC = 0x91
	m.PPU.BGP = 0xFC
	m.PPU.OBP0 = 0xFF
	m.PPU.OBP1 = 0xFF
	m.MMU.IE = 0x00
}

// StepFrame runs the machine until the PPU completes a frame and returns its
// 160x144 framebuffer of 2-bit shade indices. Each loop iteration runs one
// CPU instruction boundary (an executed instruction, a serviced interrupt,
// or one HALT tick) and fans its cycle cost out to the PPU and timer, so
// memory writes observed by the PPU are always sequenced before the PPU
// advance that follows the instruction that made them.
func (m *Machine) StepFrame() ([ppu.ScreenWidth * ppu.ScreenHeight]uint8, error) {
	m.frameReady = false
	for !m.frameReady {
		m.Clock.Step()
		if m.CPU.Fault != nil {
			return m.lastFrame, m.CPU.Fault
		}
		if m.CycleLogger != nil && m.CycleLogger.IsEnabled() {
			m.CycleLogger.LogCycle(&debug.CPUStateSnapshot{
				A: m.CPU.Reg.A, F: m.CPU.Reg.F,
				B: m.CPU.Reg.B, C: m.CPU.Reg.C,
				D: m.CPU.Reg.D, E: m.CPU.Reg.E,
				H: m.CPU.Reg.H, L: m.CPU.Reg.L,
				SP: m.CPU.Reg.SP, PC: m.CPU.Reg.PC,
				IME: m.CPU.IME, HALT: m.CPU.Halted,
				Cycles: m.CPU.Cycles,
			})
		}
	}
	return m.lastFrame, nil
}

// SetInput installs the host's button snapshot for the frame about to run.
func (m *Machine) SetInput(state input.State) {
	m.Input.SetState(state)
}

// SetInputMask installs the host's button snapshot from an eight-bit
// bitmask (bit 0 Right, 1 Left, 2 Up, 3 Down, 4 A, 5 B, 6 Select, 7 Start).
func (m *Machine) SetInputMask(mask uint8) {
	m.SetInput(input.State{
		Right:  mask&0x01 != 0,
		Left:   mask&0x02 != 0,
		Up:     mask&0x04 != 0,
		Down:   mask&0x08 != 0,
		A:      mask&0x10 != 0,
		B:      mask&0x20 != 0,
		Select: mask&0x40 != 0,
		Start:  mask&0x80 != 0,
	})
}

// SaveRAM returns a copy of the loaded cartridge's external RAM, suitable
// for persisting battery-backed saves across sessions.
func (m *Machine) SaveRAM() []byte {
	if m.Cartridge == nil {
		return nil
	}
	return m.Cartridge.SaveRAM()
}

// LoadRAM restores the loaded cartridge's external RAM from a previously
// saved image.
func (m *Machine) LoadRAM(data []byte) {
	if m.Cartridge != nil {
		m.Cartridge.LoadRAM(data)
	}
}

// TickRTC advances the loaded cartridge's MBC3 real-time clock, a no-op for
// any other cartridge type or when no cartridge is loaded.
func (m *Machine) TickRTC(dt float64) {
	if m.Cartridge != nil {
		m.Cartridge.TickRTC(dt)
	}
}
