// Package cartridge parses Game Boy ROM headers and implements the memory
// bank controllers that map cartridge ROM and external RAM into the CPU's
// address space.
package cartridge

import "fmt"

// LoadError is returned when a ROM image cannot be parsed or is internally
// inconsistent (bad header, declared size mismatch, unsupported mapper).
type LoadError struct {
	Reason string
}

func (e *LoadError) Error() string { return fmt.Sprintf("cartridge: %s", e.Reason) }

// Cartridge owns the ROM image, external RAM, and the bank controller that
// interprets control writes into 0x0000-0x7FFF.
type Cartridge struct {
	Header Header
	mbc    mbc
	ram    []byte
}

// Load parses a raw ROM image and constructs the cartridge type its header
// declares.
func Load(data []byte) (*Cartridge, error) {
	header, err := parseHeader(data)
	if err != nil {
		return nil, &LoadError{Reason: err.Error()}
	}

	banks, err := romBankCount(header.ROMSizeCode)
	if err != nil {
		return nil, &LoadError{Reason: err.Error()}
	}
	wantSize := banks * 0x4000
	if len(data) < wantSize {
		return nil, &LoadError{Reason: fmt.Sprintf("ROM image is %d bytes, header declares %d", len(data), wantSize)}
	}
	rom := make([]byte, wantSize)
	copy(rom, data[:wantSize])

	ramSize, err := ramSizeBytes(header.RAMSizeCode)
	if err != nil {
		return nil, &LoadError{Reason: err.Error()}
	}

	c := &Cartridge{Header: header}

	switch {
	case header.CartType == 0x00 || header.CartType == 0x08 || header.CartType == 0x09:
		ram := make([]byte, ramSize)
		c.ram = ram
		c.mbc = newMBC0(rom, ram)

	case header.CartType >= 0x01 && header.CartType <= 0x03:
		ram := make([]byte, ramSize)
		c.ram = ram
		c.mbc = newMBC1(rom, ram)

	case header.CartType == 0x05 || header.CartType == 0x06:
		m := newMBC2(rom)
		c.ram = m.ram[:]
		c.mbc = m

	case header.CartType >= 0x0F && header.CartType <= 0x13:
		ram := make([]byte, ramSize)
		c.ram = ram
		c.mbc = newMBC3(rom, ram)

	case header.CartType >= 0x19 && header.CartType <= 0x1E:
		ram := make([]byte, ramSize)
		c.ram = ram
		c.mbc = newMBC5(rom, ram)

	default:
		return nil, &LoadError{Reason: fmt.Sprintf("unsupported cartridge type 0x%02X", header.CartType)}
	}

	return c, nil
}

// Read reads a byte from ROM (0x0000-0x7FFF) or external RAM (0xA000-0xBFFF).
func (c *Cartridge) Read(addr uint16) uint8 { return c.mbc.Read(addr) }

// Write handles bank-control writes (0x0000-0x7FFF) and external RAM writes
// (0xA000-0xBFFF).
func (c *Cartridge) Write(addr uint16, v uint8) { c.mbc.Write(addr, v) }

// HasBatteryRAM reports whether this cartridge's RAM should be persisted
// across sessions, per its declared cartridge type.
func (c *Cartridge) HasBatteryRAM() bool {
	switch c.Header.CartType {
	case 0x03, 0x06, 0x09, 0x0D, 0x0F, 0x10, 0x13, 0x1B, 0x1E:
		return true
	default:
		return false
	}
}

// SaveRAM returns a copy of external RAM suitable for persisting to disk.
func (c *Cartridge) SaveRAM() []byte {
	out := make([]byte, len(c.ram))
	copy(out, c.ram)
	return out
}

// LoadRAM restores external RAM from a previously saved image, ignoring a
// length mismatch by copying only the overlapping portion.
func (c *Cartridge) LoadRAM(data []byte) {
	copy(c.ram, data)
}

// TickRTC advances the MBC3 real-time clock by dt seconds of emulated
// time, a no-op for any other cartridge type.
func (c *Cartridge) TickRTC(dt float64) {
	if m3, ok := c.mbc.(*mbc3); ok {
		m3.rtc.Tick(dt)
	}
}

// RTCSnapshot is the persisted form of an MBC3 real-time clock: the live
// counters plus the last-latched readable copy, saved alongside external
// RAM so a restored session keeps counting from where it left off.
type RTCSnapshot struct {
	Seconds, Minutes, Hours uint8
	Days                    uint16
	Halt, DayCarry          bool
	Latched                 [5]uint8
	LatchPending            bool
	SubSeconds              float64
}

// RTC returns this cartridge's real-time-clock state and true, or a zero
// value and false if it is not an MBC3+RTC cartridge.
func (c *Cartridge) RTC() (RTCSnapshot, bool) {
	m3, ok := c.mbc.(*mbc3)
	if !ok {
		return RTCSnapshot{}, false
	}
	return RTCSnapshot{
		Seconds:      m3.rtc.seconds,
		Minutes:      m3.rtc.minutes,
		Hours:        m3.rtc.hours,
		Days:         m3.rtc.days,
		Halt:         m3.rtc.halt,
		DayCarry:     m3.rtc.dayCarry,
		Latched:      m3.rtc.latched,
		LatchPending: m3.rtc.latchPending,
		SubSeconds:   m3.rtc.subSeconds,
	}, true
}

// SetRTC restores a previously captured real-time-clock state, a no-op for
// any cartridge type other than MBC3+RTC.
func (c *Cartridge) SetRTC(s RTCSnapshot) {
	m3, ok := c.mbc.(*mbc3)
	if !ok {
		return
	}
	m3.rtc.seconds = s.Seconds
	m3.rtc.minutes = s.Minutes
	m3.rtc.hours = s.Hours
	m3.rtc.days = s.Days
	m3.rtc.halt = s.Halt
	m3.rtc.dayCarry = s.DayCarry
	m3.rtc.latched = s.Latched
	m3.rtc.latchPending = s.LatchPending
	m3.rtc.subSeconds = s.SubSeconds
}
