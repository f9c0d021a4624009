package gb

// executeCB dispatches a CB-prefixed opcode. The CB table is fully regular:
// bits 7:6 select the operation class (rotate/shift, BIT, RES, SET), bits
// 5:3 select the sub-operation or bit index, and bits 2:0 select the r8
// operand — so the whole 256-entry table collapses to four arithmetic
// cases, same idea as the base table's pattern groups.
func (c *CPU) executeCB(bus *Bus, sub byte) (uint8, error) {
	class := sub >> 6
	i := sub & 7
	n := uint((sub >> 3) & 7)

	cycles := uint8(8)
	if i == 6 {
		cycles = 16
	}

	switch class {
	case 0: // rotate/shift group
		v := c.r8(bus, i)
		var result byte
		var carry bool
		switch n {
		case 0:
			result, carry = rlc(v)
		case 1:
			result, carry = rrc(v)
		case 2:
			result, carry = rl(v, c.has(flagC))
		case 3:
			result, carry = rr(v, c.has(flagC))
		case 4:
			result, carry = sla(v)
		case 5:
			result, carry = sra(v)
		case 6:
			result, carry = swap(v), false
			c.setR8(bus, i, result)
			c.setFlags(result == 0, false, false, false)
			return cycles, nil
		case 7:
			result, carry = srl(v)
		}
		c.setR8(bus, i, result)
		c.setFlags(result == 0, false, false, carry)
		return cycles, nil

	case 1: // BIT n,r
		v := c.r8(bus, i)
		zero := v&(1<<n) == 0
		c.set(flagZ, zero)
		c.set(flagN, false)
		c.set(flagH, true)
		if i == 6 {
			return 12, nil
		}
		return 8, nil

	case 2: // RES n,r
		v := c.r8(bus, i)
		c.setR8(bus, i, v&^(1<<n))
		return cycles, nil

	default: // SET n,r
		v := c.r8(bus, i)
		c.setR8(bus, i, v|(1<<n))
		return cycles, nil
	}
}
