package cpu

import (
	"fmt"

	"github.com/dmgcore/dmgcore/internal/debug"
)

// CPULogLevel represents granular logging levels for CPU tracing.
type CPULogLevel int

const (
	CPULogNone         CPULogLevel = iota // No CPU logging
	CPULogErrors                          // Only errors
	CPULogBranches                        // Branches, calls and returns
	CPULogRegisters                       // Register changes and branches
	CPULogInstructions                    // All instructions
	CPULogTrace                           // Full trace (every cycle)
)

// CPULoggerAdapter adapts the debug.Logger to the CPU's LoggerInterface.
type CPULoggerAdapter struct {
	logger    *debug.Logger
	level     CPULogLevel
	enabled   bool
	lastState Registers
}

// NewCPULoggerAdapter creates a new CPU logger adapter.
func NewCPULoggerAdapter(logger *debug.Logger, level CPULogLevel) *CPULoggerAdapter {
	return &CPULoggerAdapter{
		logger:  logger,
		level:   level,
		enabled: true,
	}
}

// SetLevel sets the CPU logging level.
func (a *CPULoggerAdapter) SetLevel(level CPULogLevel) {
	a.level = level
}

// SetEnabled enables or disables CPU logging.
func (a *CPULoggerAdapter) SetEnabled(enabled bool) {
	a.enabled = enabled
}

var branchOpcodes = map[uint8]bool{
	0x18: true, 0x20: true, 0x28: true, 0x30: true, 0x38: true, // JR, JR cc
	0xC0: true, 0xC8: true, 0xD0: true, 0xD8: true, // RET cc
	0xC2: true, 0xC3: true, 0xCA: true, 0xD2: true, 0xDA: true, // JP, JP cc
	0xC4: true, 0xCC: true, 0xCD: true, 0xD4: true, 0xDC: true, // CALL, CALL cc
	0xC9: true, 0xD9: true, 0xE9: true, // RET, RETI, JP HL
}

// LogCPU implements LoggerInterface.LogCPU.
func (a *CPULoggerAdapter) LogCPU(pc uint16, opcode uint8, reg Registers, cycles uint8) {
	if !a.enabled || a.logger == nil || a.level == CPULogNone {
		return
	}

	var logLevel debug.LogLevel
	var data map[string]interface{}

	switch a.level {
	case CPULogErrors:
		return

	case CPULogBranches:
		if !branchOpcodes[opcode] {
			return
		}
		logLevel = debug.LogLevelInfo
		data = a.stateData(pc, opcode, reg, cycles)

	case CPULogRegisters:
		changed := a.registersChanged(reg)
		if !changed && !branchOpcodes[opcode] {
			return
		}
		logLevel = debug.LogLevelInfo
		data = a.stateData(pc, opcode, reg, cycles)
		if changed {
			data["registers_changed"] = true
		}

	case CPULogInstructions:
		logLevel = debug.LogLevelDebug
		data = a.stateData(pc, opcode, reg, cycles)

	case CPULogTrace:
		logLevel = debug.LogLevelTrace
		data = a.stateData(pc, opcode, reg, cycles)
		data["trace"] = true
	}

	message := fmt.Sprintf("%s @ PC:%04X", mnemonicFor(opcode), pc)
	a.lastState = reg
	a.logger.LogCPU(logLevel, message, data)
}

// mnemonicFor gives a coarse name for an opcode, good enough for a log
// line; the opcode tables in opcodes.go remain the source of truth for
// actual semantics.
func mnemonicFor(opcode uint8) string {
	if branchOpcodes[opcode] {
		return "BRANCH"
	}
	if opcode == 0xCB {
		return "PREFIX CB"
	}
	return fmt.Sprintf("OP%02X", opcode)
}

func (a *CPULoggerAdapter) stateData(pc uint16, opcode uint8, reg Registers, cycles uint8) map[string]interface{} {
	return map[string]interface{}{
		"pc":     fmt.Sprintf("%04X", pc),
		"opcode": fmt.Sprintf("%02X", opcode),
		"cycles": cycles,
		"af":     fmt.Sprintf("%04X", reg.AF()),
		"bc":     fmt.Sprintf("%04X", reg.BC()),
		"de":     fmt.Sprintf("%04X", reg.DE()),
		"hl":     fmt.Sprintf("%04X", reg.HL()),
		"sp":     fmt.Sprintf("%04X", reg.SP),
		"flags":  fmt.Sprintf("%08b", reg.F),
	}
}

func (a *CPULoggerAdapter) registersChanged(reg Registers) bool {
	return reg.AF() != a.lastState.AF() ||
		reg.BC() != a.lastState.BC() ||
		reg.DE() != a.lastState.DE() ||
		reg.HL() != a.lastState.HL() ||
		reg.SP != a.lastState.SP
}
