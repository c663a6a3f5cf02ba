// Package cpu implements the DMG CPU: fetch-decode-execute over the base
// and 0xCB-prefixed opcode tables, interrupt dispatch, and the HALT/IME
// state machine.
package cpu

import "fmt"

// MemoryInterface is the narrow contract the CPU uses to reach the 64 KiB
// address space. It is total and infallible: every address has a defined
// read and write, enforced by the MMU that implements it.
type MemoryInterface interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// LoggerInterface lets the CPU emit trace entries without importing the
// debug package directly, matching the host-collaborator boundary used
// throughout this core.
type LoggerInterface interface {
	LogCPU(pc uint16, opcode uint8, reg Registers, cycles uint8)
}

// DecodeError is returned when the CPU fetches a byte with no assigned
// opcode. Real hardware would lock up; this core surfaces it as a fatal,
// reportable fault to aid development.
type DecodeError struct {
	PC     uint16
	Opcode uint8
	Prefix bool
}

func (e *DecodeError) Error() string {
	if e.Prefix {
		return fmt.Sprintf("cpu: unrecognized opcode 0xCB 0x%02X at PC=0x%04X", e.Opcode, e.PC)
	}
	return fmt.Sprintf("cpu: unrecognized opcode 0x%02X at PC=0x%04X", e.Opcode, e.PC)
}

// CPU is the emulated DMG processor.
type CPU struct {
	Reg Registers
	Mem MemoryInterface
	Log LoggerInterface

	IME     bool
	eiDelay uint8 // counts down to 0; IME is set true the step it reaches 0
	Halted  bool
	Cycles  uint64

	// Fault holds the first decode error encountered; once set, Step
	// stops advancing and keeps returning 0 cycles. The scheduler is
	// expected to check this after every Step call.
	Fault error
}

// NewCPU creates a CPU wired to the given memory and optional logger.
func NewCPU(mem MemoryInterface, log LoggerInterface) *CPU {
	return &CPU{Mem: mem, Log: log}
}

// Reset clears interrupt/HALT state but does not touch the register file;
// callers that want documented post-boot values call Reg.PowerUp()
// separately.
func (c *CPU) Reset() {
	c.IME = false
	c.eiDelay = 0
	c.Halted = false
	c.Cycles = 0
	c.Fault = nil
}

// Step executes exactly one instruction boundary's worth of work: it may
// service a pending interrupt (20 cycles), tick a halted CPU (4 cycles), or
// fetch-decode-execute one instruction. It returns the number of t-states
// consumed, always a multiple of 4.
func (c *CPU) Step() uint8 {
	if c.Fault != nil {
		return 0
	}

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.IME = true
		}
	}

	if c.Halted && c.pendingInterrupts() != 0 {
		c.Halted = false
	}

	if cycles, serviced := c.serviceInterrupt(); serviced {
		c.Cycles += uint64(cycles)
		return cycles
	}

	if c.Halted {
		c.Cycles += 4
		return 4
	}

	pc := c.Reg.PC
	opcode := c.fetch8()
	cycles := c.execute(opcode)
	if c.Fault != nil {
		return 0
	}
	if c.Log != nil {
		c.Log.LogCPU(pc, opcode, c.Reg, cycles)
	}
	c.Cycles += uint64(cycles)
	return cycles
}

// requestEI arms the delayed-IME-enable used by the EI instruction: IME
// becomes true after the instruction following EI has executed, never
// during EI itself or between EI and that instruction.
func (c *CPU) requestEI() {
	c.eiDelay = 2
}

// EIDelay and SetEIDelay expose the pending-IME-enable countdown so a host
// can capture and restore it across a save state; mid-delay saves are rare
// but the countdown is otherwise invisible outside this package.
func (c *CPU) EIDelay() uint8     { return c.eiDelay }
func (c *CPU) SetEIDelay(n uint8) { c.eiDelay = n }

// fetch8 reads the byte at PC and advances PC.
func (c *CPU) fetch8() uint8 {
	v := c.Mem.Read(c.Reg.PC)
	c.Reg.PC++
	return v
}

// fetch16 reads a little-endian word at PC and advances PC by two.
func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

// push16 pushes a 16-bit value onto the stack, SP-- twice, high byte first.
func (c *CPU) push16(v uint16) {
	c.Reg.SP--
	c.Mem.Write(c.Reg.SP, uint8(v>>8))
	c.Reg.SP--
	c.Mem.Write(c.Reg.SP, uint8(v))
}

// pop16 pops a 16-bit value off the stack.
func (c *CPU) pop16() uint16 {
	lo := c.Mem.Read(c.Reg.SP)
	c.Reg.SP++
	hi := c.Mem.Read(c.Reg.SP)
	c.Reg.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// r8 reads an 8-bit register operand by the standard opcode encoding
// index: 0=B 1=C 2=D 3=E 4=H 5=L 6=(HL) 7=A.
func (c *CPU) r8(i uint8) uint8 {
	switch i {
	case 0:
		return c.Reg.B
	case 1:
		return c.Reg.C
	case 2:
		return c.Reg.D
	case 3:
		return c.Reg.E
	case 4:
		return c.Reg.H
	case 5:
		return c.Reg.L
	case 6:
		return c.Mem.Read(c.Reg.HL())
	default:
		return c.Reg.A
	}
}

// setR8 writes an 8-bit register operand by the standard opcode encoding
// index (see r8).
func (c *CPU) setR8(i uint8, v uint8) {
	switch i {
	case 0:
		c.Reg.B = v
	case 1:
		c.Reg.C = v
	case 2:
		c.Reg.D = v
	case 3:
		c.Reg.E = v
	case 4:
		c.Reg.H = v
	case 5:
		c.Reg.L = v
	case 6:
		c.Mem.Write(c.Reg.HL(), v)
	default:
		c.Reg.A = v
	}
}

// r16sp reads a 16-bit register pair by the "SP group" encoding index:
// 0=BC 1=DE 2=HL 3=SP. Used by LD rr,nn / INC rr / DEC rr / ADD HL,rr.
func (c *CPU) r16sp(i uint8) uint16 {
	switch i {
	case 0:
		return c.Reg.BC()
	case 1:
		return c.Reg.DE()
	case 2:
		return c.Reg.HL()
	default:
		return c.Reg.SP
	}
}

func (c *CPU) setR16sp(i uint8, v uint16) {
	switch i {
	case 0:
		c.Reg.SetBC(v)
	case 1:
		c.Reg.SetDE(v)
	case 2:
		c.Reg.SetHL(v)
	default:
		c.Reg.SP = v
	}
}

// r16stk reads a 16-bit register pair by the "stack group" encoding index:
// 0=BC 1=DE 2=HL 3=AF. Used by PUSH/POP.
func (c *CPU) r16stk(i uint8) uint16 {
	if i == 3 {
		return c.Reg.AF()
	}
	return c.r16sp(i)
}

func (c *CPU) setR16stk(i uint8, v uint16) {
	if i == 3 {
		c.Reg.SetAF(v)
		return
	}
	c.setR16sp(i, v)
}

// condition evaluates one of the four branch conditions: 0=NZ 1=Z 2=NC 3=C.
func (c *CPU) condition(i uint8) bool {
	switch i {
	case 0:
		return !c.Reg.Flag(FlagZ)
	case 1:
		return c.Reg.Flag(FlagZ)
	case 2:
		return !c.Reg.Flag(FlagC)
	default:
		return c.Reg.Flag(FlagC)
	}
}
