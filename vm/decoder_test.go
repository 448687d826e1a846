package vm

import "testing"

func encodeI(op, rd, funct3, rs1 uint32, imm uint32) uint32 {
	return op | rd<<4 | funct3<<10 | rs1<<13 | (imm&0x1FFF)<<19
}

func encodeR(op, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return op | rd<<4 | funct3<<10 | rs1<<13 | rs2<<19 | funct7<<25
}

func encodeS(op, funct3, rs1, rs2 uint32, imm uint32) uint32 {
	low := imm & 0x3F
	high := (imm >> 6) & 0x7F
	return op | low<<4 | funct3<<10 | rs1<<13 | rs2<<19 | high<<25
}

func encodeB(op, funct3, rs1, rs2 uint32, imm uint32) uint32 {
	bit11 := (imm >> 11) & 1
	bit4_0 := imm & 0x1F
	bit10_5 := (imm >> 5) & 0x3F
	bit12 := (imm >> 12) & 1
	return op | bit11<<4 | bit4_0<<5 | funct3<<10 | rs1<<13 | rs2<<19 | bit10_5<<25 | bit12<<31
}

func encodeJ(op, rd uint32, imm uint32) uint32 {
	word := op | rd<<4
	word |= ((imm >> 10) & 0xFF) << 13
	word |= ((imm >> 9) & 1) << 21
	word |= (imm & 0x1FF) << 22
	word |= ((imm >> 18) & 1) << 31
	return word
}

func encodeU(op, rd, imm uint32) uint32 {
	return op | rd<<4 | imm<<13
}

func TestDecodeALUIAddi(t *testing.T) {
	word := encodeI(OpALUI, 5, Funct3ADDI, 1, 0x1FFF) // imm = -1 (13-bit all ones)
	d := Decode(word)
	if d.Type != TypeI {
		t.Fatalf("expected TypeI, got %v", d.Type)
	}
	if d.Op != OpALUI || d.Rd != 5 || d.Rs1 != 1 || d.Funct3 != Funct3ADDI {
		t.Fatalf("unexpected fields: %+v", d)
	}
	if d.Imm != -1 {
		t.Fatalf("expected sign-extended imm -1, got %d", d.Imm)
	}
}

func TestDecodeALURFields(t *testing.T) {
	word := encodeR(OpALUR, 3, Funct3ADDSUB, 4, 5, ALUAltBit)
	d := Decode(word)
	if d.Type != TypeR {
		t.Fatalf("expected TypeR, got %v", d.Type)
	}
	if d.Rd != 3 || d.Rs1 != 4 || d.Rs2 != 5 || d.Funct7 != ALUAltBit {
		t.Fatalf("unexpected fields: %+v", d)
	}
}

func TestDecodeSWImmediate(t *testing.T) {
	word := encodeS(OpSW, 0, 2, 3, 0x1FFF) // -1
	d := Decode(word)
	if d.Type != TypeS {
		t.Fatalf("expected TypeS, got %v", d.Type)
	}
	if d.Imm != -1 {
		t.Fatalf("expected sign-extended imm -1, got %d", d.Imm)
	}
	if d.Rs1 != 2 || d.Rs2 != 3 {
		t.Fatalf("unexpected fields: %+v", d)
	}
}

func TestDecodeBranchPositiveOffset(t *testing.T) {
	// branch forward by 2 words (imm = 2, positive, fits in 13 bits)
	word := encodeB(OpBr, Funct3BEQ, 5, 6, 2)
	d := Decode(word)
	if d.Type != TypeB {
		t.Fatalf("expected TypeB, got %v", d.Type)
	}
	if d.Imm != 2 {
		t.Fatalf("expected imm 2, got %d", d.Imm)
	}
}

func TestDecodeUImmNotSignExtended(t *testing.T) {
	// U-imm is a plain 19-bit value, never sign-extended, even with the top bit set.
	word := encodeU(OpLUI, 7, 0x7FFFF)
	d := Decode(word)
	if d.Type != TypeU {
		t.Fatalf("expected TypeU, got %v", d.Type)
	}
	if d.Imm != 0x7FFFF {
		t.Fatalf("expected unsigned 0x7FFFF, got %d", d.Imm)
	}
}

func TestDecodeJALImmediate(t *testing.T) {
	word := encodeJ(OpJAL, 1, 100)
	d := Decode(word)
	if d.Type != TypeJ {
		t.Fatalf("expected TypeJ, got %v", d.Type)
	}
	if d.Imm != 100 || d.Rd != 1 {
		t.Fatalf("unexpected fields: %+v", d)
	}
}

func TestDecodeZeroWordIsOther(t *testing.T) {
	d := Decode(0)
	if d.Type != TypeOther {
		t.Fatalf("expected TypeOther for zero word, got %v", d.Type)
	}
}

func TestDecodeEndOpcodeIsOther(t *testing.T) {
	d := Decode(OpOther)
	if d.Type != TypeOther || d.Op != OpOther {
		t.Fatalf("expected Other with op 15, got %+v", d)
	}
}
