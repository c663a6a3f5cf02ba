package cpu

// opcodes_cb.go implements the 0xCB-prefixed instruction set: eight shift/
// rotate ops, BIT, RES and SET, each applied uniformly across the eight r8
// operands.

// executeCB fetches the second byte of a 0xCB-prefixed instruction and
// runs it, returning the total cycle cost including the prefix fetch.
func (c *CPU) executeCB() uint8 {
	opcode := c.fetch8()
	r := opcode & 0x07
	group := opcode >> 6
	isHL := r == 6

	switch group {
	case 0: // rotate/shift/swap block, op selects which of the 8
		op := (opcode >> 3) & 0x07
		v := c.r8(r)
		var result uint8
		var cOut bool
		switch op {
		case 0:
			result, cOut = rlc(v)
		case 1:
			result, cOut = rrc(v)
		case 2:
			result, cOut = rl(v, c.Reg.Flag(FlagC))
		case 3:
			result, cOut = rr(v, c.Reg.Flag(FlagC))
		case 4:
			result, cOut = sla(v)
		case 5:
			result, cOut = sra(v)
		case 6:
			result = swap(v)
			cOut = false
		default:
			result, cOut = srl(v)
		}
		c.setR8(r, result)
		c.Reg.SetFlag(FlagZ, result == 0)
		c.Reg.SetFlag(FlagN, false)
		c.Reg.SetFlag(FlagH, false)
		c.Reg.SetFlag(FlagC, cOut)

	case 1: // BIT b,r
		b := (opcode >> 3) & 0x07
		z := bitTest(c.r8(r), b)
		c.Reg.SetFlag(FlagZ, z)
		c.Reg.SetFlag(FlagN, false)
		c.Reg.SetFlag(FlagH, true)
		if isHL {
			return 12
		}
		return 8

	case 2: // RES b,r
		b := (opcode >> 3) & 0x07
		c.setR8(r, c.r8(r)&^(1<<b))

	default: // SET b,r
		b := (opcode >> 3) & 0x07
		c.setR8(r, c.r8(r)|(1<<b))
	}

	if isHL {
		return 16
	}
	return 8
}
