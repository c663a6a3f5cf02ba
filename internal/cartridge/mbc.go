package cartridge

// mbc is the memory bank controller interface every cartridge type
// implements. addr is the full CPU-visible address (0x0000-0x7FFF for ROM
// reads and control writes, 0xA000-0xBFFF for external RAM).
type mbc interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// mbc0 is a fixed 32 KiB ROM with no bank switching, optionally paired with
// a small fixed external RAM.
type mbc0 struct {
	rom []byte
	ram []byte
}

func newMBC0(rom, ram []byte) *mbc0 { return &mbc0{rom: rom, ram: ram} }

func (m *mbc0) Read(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr >= 0xA000 && addr < 0xC000:
		off := int(addr) - 0xA000
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *mbc0) Write(addr uint16, v uint8) {
	if addr >= 0xA000 && addr < 0xC000 {
		off := int(addr) - 0xA000
		if off < len(m.ram) {
			m.ram[off] = v
		}
	}
}

// mbc1 implements the MBC1 bank-switching scheme: a 5-bit ROM bank
// register, a 2-bit secondary register used either to extend the ROM bank
// or to select a RAM bank, and a mode select that picks which role the
// secondary register plays.
type mbc1 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	bank1      uint8 // low 5 bits of the ROM bank
	bank2      uint8 // high 2 bits: extends ROM bank or selects RAM bank
	mode       uint8 // 0 = ROM banking mode, 1 = RAM banking mode

	romBanks int
}

func newMBC1(rom, ram []byte) *mbc1 {
	return &mbc1{rom: rom, ram: ram, bank1: 1, romBanks: len(rom) / 0x4000}
}

func (m *mbc1) zeroBankIndex() int {
	if m.mode == 1 && m.romBanks > 0 {
		return (int(m.bank2) << 5) % m.romBanks
	}
	return 0
}

func (m *mbc1) highBankIndex() int {
	bank := int(m.bank1)
	if bank == 0 {
		bank = 1
	}
	bank |= int(m.bank2) << 5
	if m.romBanks > 0 {
		bank %= m.romBanks
	}
	return bank
}

func (m *mbc1) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		off := m.zeroBankIndex()*0x4000 + int(addr)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr < 0x8000:
		off := m.highBankIndex()*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		bank := 0
		if m.mode == 1 {
			bank = int(m.bank2)
		}
		off := bank*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *mbc1) Write(addr uint16, v uint8) {
	switch {
	case addr < 0x2000: // RAM enable
		m.ramEnabled = v&0x0F == 0x0A
	case addr < 0x4000: // ROM bank low 5 bits
		bank := v & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.bank1 = bank
	case addr < 0x6000: // RAM bank / ROM bank high bits
		m.bank2 = v & 0x03
	case addr < 0x8000: // banking mode select
		m.mode = v & 0x01
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		bank := 0
		if m.mode == 1 {
			bank = int(m.bank2)
		}
		off := bank*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			m.ram[off] = v
		}
	}
}

// mbc2 bank-switches ROM in 16 KiB windows via a 4-bit register and carries
// 512x4-bit built-in RAM; only the low nibble of each RAM byte is
// meaningful, matching real hardware.
type mbc2 struct {
	rom []byte
	ram [512]byte

	ramEnabled bool
	romBank    uint8
	romBanks   int
}

func newMBC2(rom []byte) *mbc2 {
	return &mbc2{rom: rom, romBank: 1, romBanks: len(rom) / 0x4000}
}

func (m *mbc2) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank)
		if m.romBanks > 0 {
			bank %= m.romBanks
		}
		off := bank*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr < 0xA200:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[addr-0xA000] | 0xF0
	default:
		return 0xFF
	}
}

func (m *mbc2) Write(addr uint16, v uint8) {
	switch {
	case addr < 0x4000:
		if addr&0x0100 != 0 { // bit 8 of the address selects bank vs enable
			bank := v & 0x0F
			if bank == 0 {
				bank = 1
			}
			m.romBank = bank
		} else {
			m.ramEnabled = v&0x0F == 0x0A
		}
	case addr >= 0xA000 && addr < 0xA200:
		if m.ramEnabled {
			m.ram[addr-0xA000] = v & 0x0F
		}
	}
}

// rtc holds the MBC3 real-time-clock register file. Latching freezes a
// readable snapshot into latched while live continues counting; this core
// drives live from the host wall clock only indirectly, through Tick.
type rtc struct {
	seconds, minutes, hours uint8
	days                    uint16
	halt                    bool
	dayCarry                bool

	latched      [5]uint8
	latchPending bool
	subSeconds   float64
}

// Tick advances the RTC by dt seconds of emulated time.
func (r *rtc) Tick(dt float64) {
	if r.halt {
		return
	}
	r.subSeconds += dt
	for r.subSeconds >= 1.0 {
		r.subSeconds -= 1.0
		r.seconds++
		if r.seconds >= 60 {
			r.seconds = 0
			r.minutes++
		}
		if r.minutes >= 60 {
			r.minutes = 0
			r.hours++
		}
		if r.hours >= 24 {
			r.hours = 0
			r.days++
			if r.days > 0x1FF {
				r.days = 0
				r.dayCarry = true
			}
		}
	}
}

func (r *rtc) latch() {
	r.latched[0] = r.seconds
	r.latched[1] = r.minutes
	r.latched[2] = r.hours
	r.latched[3] = uint8(r.days)
	flags := uint8(r.days>>8) & 0x01
	if r.halt {
		flags |= 0x40
	}
	if r.dayCarry {
		flags |= 0x80
	}
	r.latched[4] = flags
}

// mbc3 implements the MBC3 scheme: a 7-bit ROM bank register, a RAM/RTC
// select register (0x00-0x03 select a RAM bank, 0x08-0x0C select an RTC
// register), and the 0x00-then-0x01 latch sequence on 0x6000-0x7FFF.
type mbc3 struct {
	rom []byte
	ram []byte
	rtc rtc

	ramEnabled bool
	romBank    uint8
	ramSelect  uint8
	romBanks   int

	lastLatchWrite uint8
}

func newMBC3(rom, ram []byte) *mbc3 {
	return &mbc3{rom: rom, ram: ram, romBank: 1, romBanks: len(rom) / 0x4000, lastLatchWrite: 0xFF}
}

func (m *mbc3) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank)
		if m.romBanks > 0 {
			bank %= m.romBanks
		}
		off := bank*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.ramSelect <= 0x03 {
			off := int(m.ramSelect)*0x2000 + int(addr-0xA000)
			if off < len(m.ram) {
				return m.ram[off]
			}
			return 0xFF
		}
		switch m.ramSelect {
		case 0x08:
			return m.rtc.latched[0]
		case 0x09:
			return m.rtc.latched[1]
		case 0x0A:
			return m.rtc.latched[2]
		case 0x0B:
			return m.rtc.latched[3]
		case 0x0C:
			return m.rtc.latched[4]
		default:
			return 0xFF
		}
	default:
		return 0xFF
	}
}

func (m *mbc3) Write(addr uint16, v uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = v&0x0F == 0x0A
	case addr < 0x4000:
		bank := v & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr < 0x6000:
		m.ramSelect = v
	case addr < 0x8000:
		if m.lastLatchWrite == 0x00 && v == 0x01 {
			m.rtc.latch()
		}
		m.lastLatchWrite = v
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled {
			return
		}
		if m.ramSelect <= 0x03 {
			off := int(m.ramSelect)*0x2000 + int(addr-0xA000)
			if off < len(m.ram) {
				m.ram[off] = v
			}
			return
		}
		switch m.ramSelect {
		case 0x08:
			m.rtc.seconds = v
		case 0x09:
			m.rtc.minutes = v
		case 0x0A:
			m.rtc.hours = v
		case 0x0B:
			m.rtc.days = (m.rtc.days & 0x100) | uint16(v)
		case 0x0C:
			m.rtc.days = (m.rtc.days & 0xFF) | (uint16(v&0x01) << 8)
			m.rtc.halt = v&0x40 != 0
			m.rtc.dayCarry = v&0x80 != 0
		}
	}
}

// mbc5 implements the MBC5 scheme: a 9-bit ROM bank register split across
// two write targets and a 4-bit RAM bank register, with no mode select.
type mbc5 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBankLo  uint8
	romBankHi  uint8
	ramBank    uint8
	romBanks   int
}

func newMBC5(rom, ram []byte) *mbc5 {
	return &mbc5{rom: rom, ram: ram, romBankLo: 1, romBanks: len(rom) / 0x4000}
}

func (m *mbc5) bank() int {
	bank := int(m.romBankHi&0x01)<<8 | int(m.romBankLo)
	if m.romBanks > 0 {
		bank %= m.romBanks
	}
	return bank
}

func (m *mbc5) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		off := m.bank()*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.ramBank)*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *mbc5) Write(addr uint16, v uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = v&0x0F == 0x0A
	case addr < 0x3000:
		m.romBankLo = v
	case addr < 0x4000:
		m.romBankHi = v & 0x01
	case addr < 0x6000:
		m.ramBank = v & 0x0F
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		off := int(m.ramBank)*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			m.ram[off] = v
		}
	}
}
