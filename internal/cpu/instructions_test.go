package cpu

import "testing"

// TestLDImmediate8 tests LD r,n loading an immediate byte.
func TestLDImmediate8(t *testing.T) {
	c, mem := newTestCPU()
	mem.loadProgram(0x0000, 0x3E, 0x42) // LD A,0x42
	c.Reg.PC = 0x0000

	cycles := c.execute(c.fetch8())

	if c.Reg.A != 0x42 {
		t.Errorf("LD A,n: expected A=0x42, got 0x%02X", c.Reg.A)
	}
	if cycles != 8 {
		t.Errorf("LD A,n: expected 8 cycles, got %d", cycles)
	}
}

// TestLDRegisterToRegister tests the 0x40-0x7F LD r,r' block.
func TestLDRegisterToRegister(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.B = 0x99
	mem.loadProgram(0x0000, 0x78) // LD A,B
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())

	if c.Reg.A != 0x99 {
		t.Errorf("LD A,B: expected A=0x99, got 0x%02X", c.Reg.A)
	}
}

// TestLDToMemoryViaHL tests loading through (HL) costs extra cycles.
func TestLDToMemoryViaHL(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.SetHL(0xC000)
	c.Reg.B = 0x55
	mem.loadProgram(0x0000, 0x70) // LD (HL),B
	c.Reg.PC = 0x0000

	cycles := c.execute(c.fetch8())

	if mem.Read(0xC000) != 0x55 {
		t.Errorf("LD (HL),B: expected memory 0x55, got 0x%02X", mem.Read(0xC000))
	}
	if cycles != 8 {
		t.Errorf("LD (HL),B: expected 8 cycles, got %d", cycles)
	}
}

// TestLDHLIncrementsAndDecrements tests LD A,(HL+) and LD A,(HL-) side effects.
func TestLDHLIncrementsAndDecrements(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.SetHL(0xC000)
	mem.Write(0xC000, 0x11)
	mem.loadProgram(0x0000, 0x2A) // LD A,(HL+)
	c.Reg.PC = 0x0000

	c.execute(c.fetch8())

	if c.Reg.A != 0x11 {
		t.Errorf("LD A,(HL+): expected A=0x11, got 0x%02X", c.Reg.A)
	}
	if c.Reg.HL() != 0xC001 {
		t.Errorf("LD A,(HL+): expected HL incremented to 0xC001, got 0x%04X", c.Reg.HL())
	}
}

// TestJRRelativeBackward tests a negative JR offset moves PC backward.
func TestJRRelativeBackward(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.PC = 0x0010
	mem.loadProgram(0x0010, 0x18, 0xFE) // JR -2 (infinite loop back to self)

	c.execute(c.fetch8())

	if c.Reg.PC != 0x0010 {
		t.Errorf("JR -2: expected PC=0x0010, got 0x%04X", c.Reg.PC)
	}
}

// TestJRConditionalNotTakenCostsLess tests JR cc,e costs 8 cycles untaken
// vs 12 taken.
func TestJRConditionalNotTakenCostsLess(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.SetFlag(FlagZ, false)
	mem.loadProgram(0x0000, 0x28, 0x10) // JR Z,+16, not taken since Z clear
	c.Reg.PC = 0x0000

	cycles := c.execute(c.fetch8())

	if cycles != 8 {
		t.Errorf("JR Z (not taken): expected 8 cycles, got %d", cycles)
	}
	if c.Reg.PC != 0x0002 {
		t.Errorf("JR Z (not taken): expected PC unchanged at 0x0002, got 0x%04X", c.Reg.PC)
	}
}

// TestCallAndRetRoundTrip tests CALL pushes the return address and RET
// restores it.
func TestCallAndRetRoundTrip(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.SP = 0xFFFE
	c.Reg.PC = 0x0100
	mem.loadProgram(0x0100, 0xCD, 0x00, 0x02) // CALL 0x0200
	mem.loadProgram(0x0200, 0xC9)             // RET

	cycles := c.execute(c.fetch8())
	if cycles != 24 {
		t.Errorf("CALL: expected 24 cycles, got %d", cycles)
	}
	if c.Reg.PC != 0x0200 {
		t.Errorf("CALL: expected PC=0x0200, got 0x%04X", c.Reg.PC)
	}

	cycles = c.execute(c.fetch8())
	if cycles != 16 {
		t.Errorf("RET: expected 16 cycles, got %d", cycles)
	}
	if c.Reg.PC != 0x0103 {
		t.Errorf("RET: expected PC=0x0103 (after CALL instruction), got 0x%04X", c.Reg.PC)
	}
	if c.Reg.SP != 0xFFFE {
		t.Errorf("RET: expected SP restored to 0xFFFE, got 0x%04X", c.Reg.SP)
	}
}

// TestRSTPushesAndJumps tests that RST 0x38 pushes PC and jumps to the
// fixed vector.
func TestRSTPushesAndJumps(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.SP = 0xFFFE
	c.Reg.PC = 0x0050
	mem.loadProgram(0x0050, 0xFF) // RST 0x38

	c.execute(c.fetch8())

	if c.Reg.PC != 0x0038 {
		t.Errorf("RST 0x38: expected PC=0x0038, got 0x%04X", c.Reg.PC)
	}
	if c.pop16() != 0x0051 {
		t.Errorf("RST 0x38: expected pushed return address 0x0051")
	}
}

// TestHaltStopsFetchUntilInterrupt tests that a halted CPU burns cycles
// without advancing PC, and resumes once an interrupt is pending.
func TestHaltStopsFetchUntilInterrupt(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.PC = 0x0000
	mem.loadProgram(0x0000, 0x76) // HALT
	c.IME = false

	c.Step() // executes HALT
	if !c.Halted {
		t.Fatalf("expected CPU halted after HALT opcode")
	}

	cycles := c.Step()
	if cycles != 4 {
		t.Errorf("halted tick: expected 4 cycles, got %d", cycles)
	}
	if c.Reg.PC != 0x0001 {
		t.Errorf("halted tick: expected PC unchanged, got 0x%04X", c.Reg.PC)
	}

	mem.Write(RegIE, IntVBlank)
	mem.Write(RegIF, IntVBlank)
	c.Step()
	if c.Halted {
		t.Errorf("expected HALT to clear once an interrupt is pending")
	}
}

// TestStopConsumesTrailingByte tests that STOP reads and discards the byte
// that follows it, matching the documented two-byte encoding.
func TestStopConsumesTrailingByte(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.PC = 0x0000
	mem.loadProgram(0x0000, 0x10, 0x00, 0x3E, 0x07) // STOP 0 ; LD A,7

	c.execute(c.fetch8())
	if c.Reg.PC != 0x0002 {
		t.Errorf("STOP: expected PC advanced past trailing byte to 0x0002, got 0x%04X", c.Reg.PC)
	}

	c.execute(c.fetch8())
	if c.Reg.A != 0x07 {
		t.Errorf("expected instruction after STOP to execute normally, A=0x%02X", c.Reg.A)
	}
}
