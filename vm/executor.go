package vm

import "fmt"

// execute dispatches one pre-decoded instruction against the current core
// state and returns its mnemonic (for the optional instruction-mix
// statistics) or an error for any condition the hardware would trap on:
// an unrecognized opcode/funct3/funct7 combination, a negative fsqrt
// operand, or an exhausted input stream on in/fin.
func (c *Core) execute(d DecodedInstruction) (string, error) {
	switch d.Type {
	case TypeI:
		return c.executeI(d)
	case TypeR:
		return c.executeR(d)
	case TypeS:
		return c.executeS(d)
	case TypeB:
		return c.executeB(d)
	case TypeJ:
		return c.executeJ(d)
	case TypeU:
		return c.executeU(d)
	default:
		return c.executeOther(d)
	}
}

func (c *Core) executeOther(d DecodedInstruction) (string, error) {
	if d.Op == OpOther {
		c.halted = true
		return "end", nil
	}
	return "", fmt.Errorf("illegal instruction word at pc=0x%08x", c.PC)
}

func (c *Core) executeI(d DecodedInstruction) (string, error) {
	switch d.Op {
	case OpLW:
		addr := uint32(c.ReadIntRegister(d.Rs1) + d.Imm)
		v, err := c.loadWord(addr)
		if err != nil {
			return "", err
		}
		c.Int.Set(d.Rd, v)
		c.LoadDest = &RegRef{Bank: BankInt, Index: d.Rd}
		c.PC += 4
		return "lw", nil

	case OpFLW:
		addr := uint32(c.ReadIntRegister(d.Rs1) + d.Imm)
		v, err := c.loadWord(addr)
		if err != nil {
			return "", err
		}
		c.Float.Set(d.Rd, NewFloatingPoint(uint32(v)))
		c.LoadDest = &RegRef{Bank: BankFloat, Index: d.Rd}
		c.PC += 4
		return "flw", nil

	case OpJALR:
		from := c.PC
		target := uint32(c.ReadIntRegister(d.Rs1) + d.Imm<<2)
		c.Int.Set(d.Rd, int32(c.PC+4))
		c.PC = target
		c.FlushCounter++
		c.recordEdge(from, c.PC)
		return "jalr", nil

	case OpIO:
		return c.executeIO(d)

	case OpALUI:
		return c.executeALUI(d)

	default:
		return "", fmt.Errorf("unrecognized I-type opcode %d at pc=0x%08x", d.Op, c.PC)
	}
}

func (c *Core) executeALUI(d DecodedInstruction) (string, error) {
	rs1 := c.ReadIntRegister(d.Rs1)
	var result int32
	var name string
	switch d.Funct3 {
	case Funct3ADDI:
		result, name = rs1+d.Imm, "addi"
	case Funct3SLTI:
		result, name = boolToInt32(rs1 < d.Imm), "slti"
	case Funct3XORI:
		result, name = rs1^d.Imm, "xori"
	case Funct3ORI:
		result, name = rs1|d.Imm, "ori"
	case Funct3ANDI:
		result, name = rs1&d.Imm, "andi"
	case Funct3SLLI:
		result, name = rs1<<ShiftAmount(uint32(d.Imm)), "slli"
	case Funct3SRI:
		shamt := ShiftAmount(uint32(d.Imm))
		if uint32(d.Imm)&ShiftArithBit != 0 {
			result, name = rs1>>shamt, "srai"
		} else {
			result, name = int32(uint32(rs1)>>shamt), "srli"
		}
	default:
		return "", fmt.Errorf("unrecognized ALUI funct3 %d at pc=0x%08x", d.Funct3, c.PC)
	}
	c.Int.Set(d.Rd, result)
	c.PC += 4
	return name, nil
}

func (c *Core) executeIO(d DecodedInstruction) (string, error) {
	switch d.Funct3 {
	case Funct3In:
		tok, err := c.nextToken("in")
		if err != nil {
			return "", err
		}
		v, err := parseToken(tok)
		if err != nil {
			return "", err
		}
		c.Int.Set(d.Rd, v)
		c.PC += 4
		return "in", nil

	case Funct3Fin:
		tok, err := c.nextToken("fin")
		if err != nil {
			return "", err
		}
		v, err := parseFloatToken(tok)
		if err != nil {
			return "", err
		}
		c.Float.Set(d.Rd, v)
		c.PC += 4
		return "fin", nil

	case Funct3OutChar:
		v := c.ReadIntRegister(d.Rs1)
		c.Output = append(c.Output, byte(v))
		c.PC += 4
		return "outchar", nil

	case Funct3OutInt:
		v := c.ReadIntRegister(d.Rs1)
		c.Output = append(c.Output, []byte(fmt.Sprintf("%d", v))...)
		c.PC += 4
		return "outint", nil

	default:
		return "", fmt.Errorf("unrecognized IO funct3 %d at pc=0x%08x", d.Funct3, c.PC)
	}
}

func (c *Core) executeR(d DecodedInstruction) (string, error) {
	switch d.Op {
	case OpALUR:
		return c.executeALUR(d)
	case OpFALU:
		return c.executeFALU(d)
	default:
		return "", fmt.Errorf("unrecognized R-type opcode %d at pc=0x%08x", d.Op, c.PC)
	}
}

func (c *Core) executeALUR(d DecodedInstruction) (string, error) {
	rs1 := c.ReadIntRegister(d.Rs1)
	rs2 := c.ReadIntRegister(d.Rs2)
	alt := d.Funct7&ALUAltBit != 0
	var result int32
	var name string
	switch d.Funct3 {
	case Funct3ADDSUB:
		if alt {
			result, name = rs1-rs2, "sub"
		} else {
			result, name = rs1+rs2, "add"
		}
	case Funct3SLL:
		result, name = rs1<<ShiftAmount(uint32(rs2)), "sll"
	case Funct3SLT:
		result, name = boolToInt32(rs1 < rs2), "slt"
	case Funct3XOR:
		result, name = rs1^rs2, "xor"
	case Funct3SRLSRA:
		shamt := ShiftAmount(uint32(rs2))
		if alt {
			result, name = rs1>>shamt, "sra"
		} else {
			result, name = int32(uint32(rs1)>>shamt), "srl"
		}
	case Funct3OR:
		result, name = rs1|rs2, "or"
	case Funct3AND:
		result, name = rs1&rs2, "and"
	default:
		return "", fmt.Errorf("unrecognized ALUR funct3 %d at pc=0x%08x", d.Funct3, c.PC)
	}
	c.Int.Set(d.Rd, result)
	c.PC += 4
	return name, nil
}

func (c *Core) executeFALU(d DecodedInstruction) (string, error) {
	switch d.Funct7 {
	case Funct7FADD:
		a, b := c.ReadFloatRegister(d.Rs1), c.ReadFloatRegister(d.Rs2)
		c.Float.Set(d.Rd, a.Add(b))
		c.FPUStallCounter += FAddStall
		c.PC += 4
		return "fadd", nil

	case Funct7FSUB:
		a, b := c.ReadFloatRegister(d.Rs1), c.ReadFloatRegister(d.Rs2)
		c.Float.Set(d.Rd, a.Sub(b))
		c.FPUStallCounter += FSubStall
		c.PC += 4
		return "fsub", nil

	case Funct7FMUL:
		a, b := c.ReadFloatRegister(d.Rs1), c.ReadFloatRegister(d.Rs2)
		c.Float.Set(d.Rd, a.Mul(b))
		c.FPUStallCounter += FMulStall
		c.PC += 4
		return "fmul", nil

	case Funct7FDIV:
		a, b := c.ReadFloatRegister(d.Rs1), c.ReadFloatRegister(d.Rs2)
		c.Float.Set(d.Rd, a.Div(b, c.Inv))
		c.FPUStallCounter += FDivStall
		c.PC += 4
		return "fdiv", nil

	case Funct7FSQRT:
		a := c.ReadFloatRegister(d.Rs1)
		v, err := a.Sqrt(c.Sqrt)
		if err != nil {
			return "", fmt.Errorf("pc=0x%08x: %w", c.PC, err)
		}
		c.Float.Set(d.Rd, v)
		c.FPUStallCounter += FSqrtStall
		c.PC += 4
		return "fsqrt", nil

	case Funct7FSGNJ:
		a, b := c.ReadFloatRegister(d.Rs1), c.ReadFloatRegister(d.Rs2)
		var name string
		var v FloatingPoint
		switch d.Funct3 {
		case Funct3FSGNJ:
			v, name = a.FSgnj(b), "fsgnj"
		case Funct3FSGNJN:
			v, name = a.FSgnjn(b), "fsgnjn"
		case Funct3FSGNJX:
			v, name = a.FSgnjx(b), "fsgnjx"
		default:
			return "", fmt.Errorf("unrecognized fsgnj funct3 %d at pc=0x%08x", d.Funct3, c.PC)
		}
		c.Float.Set(d.Rd, v)
		c.PC += 4
		return name, nil

	case Funct7FCmp:
		a, b := c.ReadFloatRegister(d.Rs1), c.ReadFloatRegister(d.Rs2)
		var result bool
		var name string
		switch d.Funct3 {
		case Funct3FEQ:
			result, name = a.Eq(b), "feq"
		case Funct3FLT:
			result, name = a.Less(b), "flt"
		case Funct3FLE:
			result, name = a.LessEqual(b), "fle"
		default:
			return "", fmt.Errorf("unrecognized fcmp funct3 %d at pc=0x%08x", d.Funct3, c.PC)
		}
		c.Int.Set(d.Rd, boolToInt32(result))
		c.FPUStallCounter += FCmpStall
		c.PC += 4
		return name, nil

	case Funct7FCVTWS:
		a := c.ReadFloatRegister(d.Rs1)
		c.Int.Set(d.Rd, a.ToInt32())
		c.FPUStallCounter += FCvtStall
		c.PC += 4
		return "fcvt.w.s", nil

	case Funct7FCVTSW:
		a := c.ReadIntRegister(d.Rs1)
		c.Float.Set(d.Rd, FromInt32(a))
		c.FPUStallCounter += FCvtStall
		c.PC += 4
		return "fcvt.s.w", nil

	default:
		return "", fmt.Errorf("unrecognized FALU funct7 %d at pc=0x%08x", d.Funct7, c.PC)
	}
}

func (c *Core) executeS(d DecodedInstruction) (string, error) {
	switch d.Op {
	case OpSW:
		addr := uint32(c.ReadIntRegister(d.Rs1) + d.Imm)
		v := c.ReadIntRegister(d.Rs2)
		if err := c.storeWord(addr, v); err != nil {
			return "", err
		}
		c.PC += 4
		return "sw", nil

	case OpFSW:
		addr := uint32(c.ReadIntRegister(d.Rs1) + d.Imm)
		v := c.ReadFloatRegister(d.Rs2)
		if err := c.storeWord(addr, int32(v.Bits)); err != nil {
			return "", err
		}
		c.PC += 4
		return "fsw", nil

	default:
		return "", fmt.Errorf("unrecognized S-type opcode %d at pc=0x%08x", d.Op, c.PC)
	}
}

func (c *Core) executeB(d DecodedInstruction) (string, error) {
	switch d.Op {
	case OpBr:
		rs1, rs2 := c.ReadIntRegister(d.Rs1), c.ReadIntRegister(d.Rs2)
		var taken bool
		var name string
		switch d.Funct3 {
		case Funct3BEQ:
			taken, name = rs1 == rs2, "beq"
		case Funct3BNE:
			taken, name = rs1 != rs2, "bne"
		case Funct3BLT:
			taken, name = rs1 < rs2, "blt"
		case Funct3BGE:
			taken, name = rs1 >= rs2, "bge"
		default:
			return "", fmt.Errorf("unrecognized branch funct3 %d at pc=0x%08x", d.Funct3, c.PC)
		}
		c.branch(taken, d.Imm)
		return name, nil

	case OpFBr:
		rs1, rs2 := c.ReadFloatRegister(d.Rs1), c.ReadFloatRegister(d.Rs2)
		var taken bool
		var name string
		switch d.Funct3 {
		case Funct3BEQ:
			taken, name = rs1.Eq(rs2), "fbeq"
		case Funct3BNE:
			taken, name = !rs1.Eq(rs2), "fbne"
		case Funct3BLT:
			taken, name = rs1.Less(rs2), "fblt"
		case Funct3BGE:
			taken, name = rs1.LessEqual(rs2), "fble"
		default:
			return "", fmt.Errorf("unrecognized float branch funct3 %d at pc=0x%08x", d.Funct3, c.PC)
		}
		c.branch(taken, d.Imm)
		return name, nil

	default:
		return "", fmt.Errorf("unrecognized B-type opcode %d at pc=0x%08x", d.Op, c.PC)
	}
}

func (c *Core) branch(taken bool, imm int32) {
	c.FlushCounter++
	if taken {
		from := c.PC
		c.PC = uint32(int32(c.PC) + imm<<2)
		c.recordEdge(from, c.PC)
	} else {
		c.PC += 4
	}
}

func (c *Core) executeJ(d DecodedInstruction) (string, error) {
	if d.Op != OpJAL {
		return "", fmt.Errorf("unrecognized J-type opcode %d at pc=0x%08x", d.Op, c.PC)
	}
	from := c.PC
	c.Int.Set(d.Rd, int32(c.PC+4))
	c.PC = uint32(int32(c.PC) + d.Imm<<2)
	c.FlushCounter++
	c.recordEdge(from, c.PC)
	return "jal", nil
}

func (c *Core) executeU(d DecodedInstruction) (string, error) {
	if d.Op != OpLUI {
		return "", fmt.Errorf("unrecognized U-type opcode %d at pc=0x%08x", d.Op, c.PC)
	}
	c.Int.Set(d.Rd, int32(uint32(d.Imm)<<13))
	c.PC += 4
	return "lui", nil
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
