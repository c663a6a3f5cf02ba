package cpu

import "testing"

// TestIncOverflowWrapsAndSetsHalfCarry tests INC wrapping 0xFF to 0x00,
// setting Z and H, and preserving C.
func TestIncOverflowWrapsAndSetsHalfCarry(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.B = 0xFF
	c.Reg.SetFlag(FlagC, true)
	mem.loadProgram(0x0000, 0x04) // INC B
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())

	if c.Reg.B != 0x00 {
		t.Errorf("INC B: expected wrap to 0x00, got 0x%02X", c.Reg.B)
	}
	if !c.Reg.Flag(FlagZ) {
		t.Errorf("INC B: expected Z set")
	}
	if !c.Reg.Flag(FlagH) {
		t.Errorf("INC B: expected H set")
	}
	if !c.Reg.Flag(FlagC) {
		t.Errorf("INC B: expected C preserved as true")
	}
}

// TestDecZeroWrapsAndSetsHalfCarry tests DEC wrapping 0x00 to 0xFF.
func TestDecZeroWrapsAndSetsHalfCarry(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.C = 0x00
	mem.loadProgram(0x0000, 0x0D) // DEC C
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())

	if c.Reg.C != 0xFF {
		t.Errorf("DEC C: expected wrap to 0xFF, got 0x%02X", c.Reg.C)
	}
	if c.Reg.Flag(FlagZ) {
		t.Errorf("DEC C: expected Z clear")
	}
	if !c.Reg.Flag(FlagH) {
		t.Errorf("DEC C: expected H set on borrow from bit 4")
	}
	if !c.Reg.Flag(FlagN) {
		t.Errorf("DEC C: expected N set")
	}
}

// TestAddAAWithHighBitSetsCarryAndZero tests ADD A,A with A=0x80: result
// wraps to 0x00 and both Z and C are set.
func TestAddAAWithHighBitSetsCarryAndZero(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.A = 0x80
	mem.loadProgram(0x0000, 0x87) // ADD A,A
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())

	if c.Reg.A != 0x00 {
		t.Errorf("ADD A,A: expected 0x00, got 0x%02X", c.Reg.A)
	}
	if !c.Reg.Flag(FlagZ) || !c.Reg.Flag(FlagC) {
		t.Errorf("ADD A,A: expected Z and C set, F=0x%02X", c.Reg.F)
	}
}

// TestDAAAfterDoubleAdd tests the textbook DAA case: 0x45 + 0x45 in BCD
// should read 90 after correction.
func TestDAAAfterDoubleAdd(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.A = 0x45
	c.Reg.B = 0x45
	mem.loadProgram(0x0000, 0x80, 0x27) // ADD A,B ; DAA
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())
	if c.Reg.A != 0x8A {
		t.Fatalf("ADD A,B: expected raw sum 0x8A, got 0x%02X", c.Reg.A)
	}
	c.execute(c.fetch8())

	if c.Reg.A != 0x90 {
		t.Errorf("DAA: expected BCD 0x90, got 0x%02X", c.Reg.A)
	}
	if c.Reg.Flag(FlagZ) {
		t.Errorf("DAA: expected Z clear for nonzero result")
	}
}

// TestSLABoundaryShiftsOutBit7 tests SLA B with bit 7 set feeding carry.
func TestSLABoundaryShiftsOutBit7(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.B = 0x80
	mem.loadProgram(0x0000, 0xCB, 0x20) // SLA B
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())

	if c.Reg.B != 0x00 {
		t.Errorf("SLA B: expected 0x00, got 0x%02X", c.Reg.B)
	}
	if !c.Reg.Flag(FlagC) {
		t.Errorf("SLA B: expected carry out of bit 7")
	}
	if !c.Reg.Flag(FlagZ) {
		t.Errorf("SLA B: expected Z set")
	}
}

// TestSRLBoundaryClearsBit7 tests SRL preserves no sign bit, unlike SRA.
func TestSRLBoundaryClearsBit7(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.B = 0x81
	mem.loadProgram(0x0000, 0xCB, 0x38) // SRL B
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())

	if c.Reg.B != 0x40 {
		t.Errorf("SRL B: expected 0x40, got 0x%02X", c.Reg.B)
	}
	if !c.Reg.Flag(FlagC) {
		t.Errorf("SRL B: expected carry out of bit 0")
	}
}

// TestSRAPreservesSignBit tests that SRA keeps bit 7 intact.
func TestSRAPreservesSignBit(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.B = 0x81
	mem.loadProgram(0x0000, 0xCB, 0x28) // SRA B
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())

	if c.Reg.B != 0xC0 {
		t.Errorf("SRA B: expected 0xC0 (sign preserved), got 0x%02X", c.Reg.B)
	}
	if !c.Reg.Flag(FlagC) {
		t.Errorf("SRA B: expected carry out of bit 0")
	}
}

// TestLDHLSPPlusOffsetMax tests LD HL,SP+e8 with the largest positive
// offset, verifying flags are computed on the low byte only.
func TestLDHLSPPlusOffsetMax(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.SP = 0xFFF8
	mem.loadProgram(0x0000, 0xF8, 0x7F) // LD HL,SP+0x7F
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())

	if c.Reg.HL() != 0x0077 {
		t.Errorf("LD HL,SP+0x7F: expected HL=0x0077, got 0x%04X", c.Reg.HL())
	}
	if c.Reg.Flag(FlagZ) || c.Reg.Flag(FlagN) {
		t.Errorf("LD HL,SP+e8: expected Z and N clear, F=0x%02X", c.Reg.F)
	}
}

// TestBitInstructionSetsZOnly tests BIT b,r sets Z without touching the
// tested register, and always sets H and clears N.
func TestBitInstructionSetsZOnly(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.D = 0x00
	c.Reg.SetFlag(FlagN, true)
	mem.loadProgram(0x0000, 0xCB, 0x5A) // BIT 3,D
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())

	if !c.Reg.Flag(FlagZ) {
		t.Errorf("BIT 3,D: expected Z set since bit 3 of 0x00 is clear")
	}
	if c.Reg.Flag(FlagN) {
		t.Errorf("BIT 3,D: expected N cleared")
	}
	if !c.Reg.Flag(FlagH) {
		t.Errorf("BIT 3,D: expected H set")
	}
	if c.Reg.D != 0x00 {
		t.Errorf("BIT 3,D: expected D unchanged, got 0x%02X", c.Reg.D)
	}
}

// TestResAndSetBits test that RES and SET only ever touch one bit.
func TestResAndSetBits(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.A = 0xFF
	mem.loadProgram(0x0000, 0xCB, 0x87) // RES 0,A
	c.Reg.PC = 0x0000
	c.execute(c.fetch8())
	if c.Reg.A != 0xFE {
		t.Errorf("RES 0,A: expected 0xFE, got 0x%02X", c.Reg.A)
	}

	c.Reg.A = 0x00
	mem.loadProgram(0x0002, 0xCB, 0xC7) // SET 0,A
	c.Reg.PC = 0x0002
	c.execute(c.fetch8())
	if c.Reg.A != 0x01 {
		t.Errorf("SET 0,A: expected 0x01, got 0x%02X", c.Reg.A)
	}
}

// TestDecodeErrorOnIllegalOpcode tests that fetching an unassigned opcode
// sets CPU.Fault instead of panicking or silently continuing.
func TestDecodeErrorOnIllegalOpcode(t *testing.T) {
	c, mem := newTestCPU()
	mem.loadProgram(0x0000, 0xD3) // illegal
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())

	if c.Fault == nil {
		t.Fatalf("expected Fault to be set for illegal opcode 0xD3")
	}
	if _, ok := c.Fault.(*DecodeError); !ok {
		t.Errorf("expected *DecodeError, got %T", c.Fault)
	}
}
