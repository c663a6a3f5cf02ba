package debug

import (
	"fmt"
	"os"
	"sync"
)

// PPUStateReader reads PPU state for logging (avoids an import cycle on internal/ppu).
type PPUStateReader interface {
	GetScanline() int
	GetMode() int
	GetFrameCounter() uint64
}

// CPUStateSnapshot is the CPU register file captured for one instruction boundary.
type CPUStateSnapshot struct {
	A, F       uint8
	B, C       uint8
	D, E       uint8
	H, L       uint8
	SP, PC     uint16
	IME, HALT  bool
	Cycles     uint64
}

// CycleLogger writes one line per CPU instruction boundary to a trace file.
// This is the ring-buffer/trace contract the core exposes to a host debugger;
// it is opt-in and off by default.
type CycleLogger struct {
	file         *os.File
	maxCycles    uint64
	startCycle   uint64
	currentCycle uint64
	totalCycles  uint64
	enabled      bool
	mu           sync.Mutex

	ppu PPUStateReader
}

// NewCycleLogger creates a new cycle logger writing to filename.
// maxCycles == 0 means unlimited; startCycle defers logging until that many
// instructions have executed.
func NewCycleLogger(filename string, maxCycles, startCycle uint64, ppu PPUStateReader) (*CycleLogger, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create cycle log file: %w", err)
	}

	logger := &CycleLogger{
		file:       file,
		maxCycles:  maxCycles,
		startCycle: startCycle,
		enabled:    true,
		ppu:        ppu,
	}

	fmt.Fprintf(file, "Cycle-by-cycle CPU trace\n")
	fmt.Fprintf(file, "========================\n\n")
	if startCycle > 0 {
		fmt.Fprintf(file, "Start instruction offset: %d\n", startCycle)
	}
	if maxCycles > 0 {
		fmt.Fprintf(file, "Max instructions to log: %d\n", maxCycles)
	}
	fmt.Fprintf(file, "\nFormat: step | PC | AF BC DE HL | SP | IME HALT | PPU mode/scanline | t-states\n\n")

	return logger, nil
}

// LogCycle logs one instruction boundary's CPU state.
func (c *CycleLogger) LogCycle(s *CPUStateSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}

	c.totalCycles++
	if c.totalCycles < c.startCycle {
		return
	}
	if c.maxCycles > 0 && c.currentCycle >= c.maxCycles {
		c.enabled = false
		return
	}
	c.currentCycle++

	mode, scanline := -1, -1
	if c.ppu != nil {
		mode = c.ppu.GetMode()
		scanline = c.ppu.GetScanline()
	}

	fmt.Fprintf(c.file, "%8d | PC:%04X | AF:%02X%02X BC:%02X%02X DE:%02X%02X HL:%02X%02X | SP:%04X | IME:%v HALT:%v | mode:%d line:%d | %d\n",
		c.totalCycles, s.PC,
		s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L,
		s.SP, s.IME, s.HALT, mode, scanline, s.Cycles)
}

// SetEnabled enables or disables logging.
func (c *CycleLogger) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// Toggle flips the enabled state.
func (c *CycleLogger) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = !c.enabled
}

// Close flushes and closes the log file.
func (c *CycleLogger) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled = false
	if c.file != nil {
		fmt.Fprintf(c.file, "\n\nLog complete. Total instructions logged: %d\n", c.currentCycle)
		err := c.file.Close()
		c.file = nil
		return err
	}
	return nil
}

// IsEnabled reports whether logging is currently active.
func (c *CycleLogger) IsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled && (c.maxCycles == 0 || c.currentCycle < c.maxCycles)
}

// GetStatus returns the logger's current counters.
func (c *CycleLogger) GetStatus() (enabled bool, currentCycle, totalCycles, maxCycles uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled, c.currentCycle, c.totalCycles, c.maxCycles
}
