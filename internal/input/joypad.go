// Package input implements the DMG joypad register: a host-facing button
// snapshot latched once per frame and read by the CPU through a single
// select/data register at 0xFF00.
package input

import "github.com/dmgcore/dmgcore/internal/debug"

// Button identifies one of the eight physical buttons, used as an index
// into a State snapshot.
type Button uint8

const (
	ButtonRight Button = iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// State is a single frame's snapshot of all eight buttons, true meaning
// pressed. The host collaborator pushes one of these per frame.
type State struct {
	Right, Left, Up, Down bool
	A, B, Select, Start   bool
}

func (s State) pressed(b Button) bool {
	switch b {
	case ButtonRight:
		return s.Right
	case ButtonLeft:
		return s.Left
	case ButtonUp:
		return s.Up
	case ButtonDown:
		return s.Down
	case ButtonA:
		return s.A
	case ButtonB:
		return s.B
	case ButtonSelect:
		return s.Select
	case ButtonStart:
		return s.Start
	default:
		return false
	}
}

// Joypad owns the current button snapshot and the CPU-visible select/data
// register. Selecting a row and reading back the low nibble is the only
// way software observes button state; a 1->0 transition on any selected
// line requests a Joypad interrupt.
type Joypad struct {
	state State

	selectDirection bool // bit 4 written 0: direction row selected
	selectAction    bool // bit 5 written 0: action row selected

	RequestInterrupt func(bit uint8)

	logger *debug.Logger
}

// InterruptBit is the IF/IE bit this joypad requests on a button edge.
const InterruptBit = uint8(0x10)

// New creates a Joypad with no buttons pressed and neither row selected.
func New() *Joypad {
	return &Joypad{}
}

// SetLogger attaches a debug logger for joypad tracing.
func (j *Joypad) SetLogger(logger *debug.Logger) {
	j.logger = logger
}

// SetState installs the host's button snapshot for the current frame,
// requesting a Joypad interrupt for any observed button that is newly
// pressed on a currently-selected row.
func (j *Joypad) SetState(next State) {
	prev := j.state
	j.state = next

	for b := Button(0); b <= ButtonStart; b++ {
		if j.rowSelectedFor(b) && !prev.pressed(b) && next.pressed(b) {
			if j.RequestInterrupt != nil {
				j.RequestInterrupt(InterruptBit)
			}
			if j.logger != nil && j.logger.IsComponentEnabled(debug.ComponentInput) {
				j.logger.LogInput(debug.LogLevelDebug, "joypad edge", map[string]interface{}{"button": uint8(b)})
			}
		}
	}
}

// CurrentState returns the last button snapshot installed by SetState, for a
// host capturing a save state.
func (j *Joypad) CurrentState() State { return j.state }

// RowSelect returns the two row-select latches written to the joypad
// register (direction, action), for a host capturing a save state.
func (j *Joypad) RowSelect() (direction, action bool) {
	return j.selectDirection, j.selectAction
}

// SetRowSelect restores the row-select latches captured by RowSelect,
// bypassing the button-edge interrupt logic in SetState.
func (j *Joypad) SetRowSelect(direction, action bool) {
	j.selectDirection = direction
	j.selectAction = action
}

func (j *Joypad) rowSelectedFor(b Button) bool {
	if b <= ButtonDown {
		return j.selectDirection
	}
	return j.selectAction
}

// Read returns the joypad register: bits 5-4 echo the last row selection,
// bits 3-0 are the inverted state of the selected row's four buttons (0
// means pressed); with neither row selected the low nibble reads all 1s.
func (j *Joypad) Read() uint8 {
	v := uint8(0xC0)
	if !j.selectDirection {
		v |= 1 << 4
	}
	if !j.selectAction {
		v |= 1 << 5
	}

	low := uint8(0x0F)
	if j.selectDirection {
		low &= j.rowNibble(ButtonRight, ButtonLeft, ButtonUp, ButtonDown)
	}
	if j.selectAction {
		low &= j.rowNibble(ButtonA, ButtonB, ButtonSelect, ButtonStart)
	}
	return v | low
}

func (j *Joypad) rowNibble(b0, b1, b2, b3 Button) uint8 {
	n := uint8(0x0F)
	if j.state.pressed(b0) {
		n &^= 1 << 0
	}
	if j.state.pressed(b1) {
		n &^= 1 << 1
	}
	if j.state.pressed(b2) {
		n &^= 1 << 2
	}
	if j.state.pressed(b3) {
		n &^= 1 << 3
	}
	return n
}

// Write handles a CPU write to the joypad register, updating which row
// (direction, action, neither, or both) is selected for the next Read.
func (j *Joypad) Write(v uint8) {
	j.selectDirection = v&(1<<4) == 0
	j.selectAction = v&(1<<5) == 0
}
