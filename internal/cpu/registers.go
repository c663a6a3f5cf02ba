package cpu

// Flag bits within F. The low nibble of F is always observed as zero.
const (
	FlagZ = uint8(1 << 7) // Zero
	FlagN = uint8(1 << 6) // Subtract
	FlagH = uint8(1 << 5) // Half-carry
	FlagC = uint8(1 << 4) // Carry
)

// Registers is the DMG register file: four 8-bit pairs aliased as 16-bit
// pairs (AF, BC, DE, HL), plus SP and PC.
type Registers struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16
}

// AF returns the combined A/F pair.
func (r *Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F) }

// SetAF writes the combined A/F pair; the low nibble of F is always masked
// to zero.
func (r *Registers) SetAF(v uint16) {
	r.A = uint8(v >> 8)
	r.F = uint8(v) & 0xF0
}

// BC returns the combined B/C pair.
func (r *Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }

// SetBC writes the combined B/C pair.
func (r *Registers) SetBC(v uint16) {
	r.B = uint8(v >> 8)
	r.C = uint8(v)
}

// DE returns the combined D/E pair.
func (r *Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }

// SetDE writes the combined D/E pair.
func (r *Registers) SetDE(v uint16) {
	r.D = uint8(v >> 8)
	r.E = uint8(v)
}

// HL returns the combined H/L pair.
func (r *Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

// SetHL writes the combined H/L pair.
func (r *Registers) SetHL(v uint16) {
	r.H = uint8(v >> 8)
	r.L = uint8(v)
}

// Flag reports whether the given flag bit is set in F.
func (r *Registers) Flag(mask uint8) bool { return r.F&mask != 0 }

// SetFlag sets or clears the given flag bit in F, keeping the low nibble
// pinned to zero.
func (r *Registers) SetFlag(mask uint8, set bool) {
	if set {
		r.F |= mask
	} else {
		r.F &^= mask
	}
	r.F &= 0xF0
}

// PowerUp installs the documented post-boot-ROM register values, used when
// no boot ROM is supplied.
func (r *Registers) PowerUp() {
	r.SetAF(0x01B0)
	r.SetBC(0x0013)
	r.SetDE(0x00D8)
	r.SetHL(0x014D)
	r.SP = 0xFFFE
	r.PC = 0x0100
}
