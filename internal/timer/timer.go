// Package timer implements the DMG's free-running divider and the
// programmable TIMA/TMA/TAC timer, both clocked directly off the master
// cycle count the CPU reports each step.
package timer

import "github.com/dmgcore/dmgcore/internal/debug"

// InterruptBit is the IF/IE bit this timer requests on TIMA overflow.
const InterruptBit = uint8(0x04)

// tacRates maps TAC's two clock-select bits to the number of master cycles
// per TIMA tick: {4096 Hz, 262144 Hz, 65536 Hz, 16384 Hz} at a 4.194304 MHz
// master clock.
var tacRates = [4]uint16{1024, 16, 64, 256}

// Timer owns DIV (exposed as the upper byte of a free-running 16-bit
// counter) and the gated TIMA/TMA/TAC counter, and requests a Timer
// interrupt through RequestInterrupt on overflow.
type Timer struct {
	divider uint16
	tima    uint8
	tma     uint8
	tac     uint8

	RequestInterrupt func(bit uint8)

	logger *debug.Logger
}

// New creates a Timer with DIV and TAC at their post-reset values.
func New() *Timer {
	return &Timer{}
}

// SetLogger attaches a debug logger for timer tracing.
func (t *Timer) SetLogger(logger *debug.Logger) {
	t.logger = logger
}

// Reset clears the divider and the TIMA/TMA/TAC registers.
func (t *Timer) Reset() {
	t.divider = 0
	t.tima = 0
	t.tma = 0
	t.tac = 0
}

// Divider returns the full 16-bit free-running counter, including the low
// byte that 0xFF04 never exposes to the CPU; a save state needs it to
// resume ticking from the exact same phase.
func (t *Timer) Divider() uint16 { return t.divider }

// SetDivider restores the full 16-bit free-running counter, bypassing the
// CPU-visible write behavior where any store to 0xFF04 resets it to zero.
func (t *Timer) SetDivider(v uint16) { t.divider = v }

// Read returns the register at addr (0xFF04-0xFF07).
func (t *Timer) Read(addr uint16) uint8 {
	switch addr {
	case 0xFF04:
		return uint8(t.divider >> 8)
	case 0xFF05:
		return t.tima
	case 0xFF06:
		return t.tma
	case 0xFF07:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

// Write handles a CPU write to addr (0xFF04-0xFF07). A write to DIV resets
// the entire 16-bit counter, not just its visible upper byte.
func (t *Timer) Write(addr uint16, v uint8) {
	switch addr {
	case 0xFF04:
		t.divider = 0
	case 0xFF05:
		t.tima = v
	case 0xFF06:
		t.tma = v
	case 0xFF07:
		t.tac = v & 0x07
	}
}

// Advance runs the divider and, if TAC enables it, the TIMA counter forward
// by cycles master cycles, requesting a Timer interrupt on TIMA overflow.
func (t *Timer) Advance(cycles uint8) {
	for i := uint8(0); i < cycles; i++ {
		t.divider++
		if t.tac&0x04 == 0 {
			continue
		}
		rate := tacRates[t.tac&0x03]
		if t.divider%rate == 0 {
			t.tickTIMA()
		}
	}
}

func (t *Timer) tickTIMA() {
	if t.tima == 0xFF {
		t.tima = t.tma
		if t.RequestInterrupt != nil {
			t.RequestInterrupt(InterruptBit)
		}
		if t.logger != nil && t.logger.IsComponentEnabled(debug.ComponentTimer) {
			t.logger.LogTimer(debug.LogLevelDebug, "TIMA overflow", map[string]interface{}{"tma": t.tma})
		}
		return
	}
	t.tima++
}
