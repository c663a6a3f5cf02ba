package cpu

import "testing"

// TestRETIRestoresPCAndIME tests that RETI returns to the saved address
// and immediately re-enables interrupts, without EI's delay.
func TestRETIRestoresPCAndIME(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.SP = 0xFFFC
	mem.Write(0xFFFC, 0x02)
	mem.Write(0xFFFD, 0x81) // return address 0x8102
	c.Reg.PC = 0x0040
	mem.loadProgram(0x0040, 0xD9) // RETI

	cycles := c.execute(c.fetch8())

	if cycles != 16 {
		t.Errorf("RETI: expected 16 cycles, got %d", cycles)
	}
	if c.Reg.PC != 0x8102 {
		t.Errorf("RETI: expected PC=0x8102, got 0x%04X", c.Reg.PC)
	}
	if !c.IME {
		t.Errorf("RETI: expected IME immediately true")
	}
	if c.Reg.SP != 0xFFFE {
		t.Errorf("RETI: expected SP restored to 0xFFFE, got 0x%04X", c.Reg.SP)
	}
}

// TestInterruptThenRETIRoundTrip dispatches an interrupt from a running
// program and confirms RETI returns execution to the interrupted
// instruction stream.
func TestInterruptThenRETIRoundTrip(t *testing.T) {
	c, mem := newTestCPU()
	c.Reg.PC = 0x0150
	c.Reg.SP = 0xFFFE
	c.IME = true
	mem.Write(RegIE, IntVBlank)
	mem.Write(RegIF, IntVBlank)
	mem.loadProgram(VectorVBlank, 0xD9) // handler is just RETI

	cycles, serviced := c.serviceInterrupt()
	if !serviced {
		t.Fatalf("expected dispatch")
	}
	if cycles != 20 {
		t.Errorf("expected 20 cycles for dispatch, got %d", cycles)
	}
	if c.IME {
		t.Errorf("expected IME false while handler runs")
	}

	handlerCycles := c.execute(c.fetch8())
	if handlerCycles != 16 {
		t.Errorf("expected RETI to cost 16 cycles, got %d", handlerCycles)
	}
	if c.Reg.PC != 0x0150 {
		t.Errorf("expected return to 0x0150, got 0x%04X", c.Reg.PC)
	}
	if !c.IME {
		t.Errorf("expected IME restored true after RETI")
	}
}
