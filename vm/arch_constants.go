package vm

// ============================================================================
// Instruction Encoding Architecture Constants
// ============================================================================
// These constants define the 32-bit instruction encoding shared by the
// decoder and executor. The opcode occupies the low nibble of every
// instruction word; every other field is positioned relative to it. Register
// fields are 6 bits wide (64-entry banks), double the width of the RV32I
// encoding this format is derived from. Field layout (LSB-first):
//
//	opcode:  bits [0..4)
//	rd:      bits [4..10)   6 bits
//	funct3:  bits [10..13)  3 bits
//	rs1:     bits [13..19)  6 bits
//	rs2:     bits [19..25)  6 bits
//	funct7:  bits [25..32)  7 bits
//
// A raw word of zero decodes as Other (trap); the end instruction is encoded
// with opcode 15, which also decodes as Other since it carries no operands.

const (
	RegFieldMask    = 0x3F
	Funct3FieldMask = 0x07
	OpFieldMask     = 0x0F
)

// Opcode assignments. Every value is one of the six slots decoder.rs
// classifies as I-type, one of the two R-type slots, one of the three
// S-type slots, the lone J-type slot, one of the two B-type slots, or the
// lone U-type slot.
const (
	OpLW    = 0  // I: lw rd, imm(rs1)
	OpALUI  = 1  // I: addi/slti/xori/ori/andi/slli/srli/srai, selected by funct3
	OpSW    = 2  // S: sw rs2, imm(rs1)
	OpALUR  = 3  // R: add/sub/sll/slt/xor/srl/sra/or/and, selected by funct3/funct7
	OpLUI   = 4  // U: lui rd, imm
	OpBr    = 5  // B: beq/bne/blt/bge, selected by funct3
	OpFLW   = 6  // I: flw rd, imm(rs1)
	OpJAL   = 7  // J: jal rd, imm
	OpFSW   = 10 // S: fsw rs2, imm(rs1)
	OpFALU  = 9  // R: float ALU family, selected by funct7/funct3
	OpIO    = 8  // I: in/fin/outchar/outint, selected by funct3
	OpFBr   = 13 // B: fbeq/fbne/fblt/fble, selected by funct3
	OpJALR  = 14 // I: jalr rd, imm(rs1)
	OpOther = 15 // Other: end (and the zero word)
)

// funct3 values for OpALUI and OpALUR (RV32I-style assignment).
const (
	Funct3ADDI = 0b000
	Funct3SLLI = 0b001
	Funct3SLTI = 0b010
	Funct3XORI = 0b100
	Funct3SRI  = 0b101 // srli/srai, disambiguated by the arithmetic-shift bit below
	Funct3ORI  = 0b110
	Funct3ANDI = 0b111
)

// The arithmetic-shift flag for srli/srai reuses bit 6 of the raw 13-bit
// I-immediate field (instruction bit 25), mirroring how RV32I reuses a bit
// of imm[11:5] for the same purpose.
const ShiftArithBit = 0x40

// funct3/funct7-top-bit values for OpALUR.
const (
	Funct3ADDSUB = 0b000 // funct7 top bit distinguishes add (0) from sub (1)
	Funct3SLL    = 0b001
	Funct3SLT    = 0b010
	Funct3XOR    = 0b100
	Funct3SRLSRA = 0b101 // funct7 top bit distinguishes srl (0) from sra (1)
	Funct3OR     = 0b110
	Funct3AND    = 0b111
)

// ALUAltBit is the funct7 bit (bit 5 of the 7-bit field, matching RV32I's
// funct7[5]) selecting sub over add and sra over srl.
const ALUAltBit = 0x20

// funct3 values for OpIO.
const (
	Funct3In      = 0
	Funct3Fin     = 1
	Funct3OutChar = 2
	Funct3OutInt  = 3
)

// funct3 values for OpBr and OpFBr.
const (
	Funct3BEQ = 0b000
	Funct3BNE = 0b001
	Funct3BLT = 0b100
	Funct3BGE = 0b101
)

// funct7 values for OpFALU, matching the real RV32F encoding this ISA
// derives from (funct3 selects within the sign-injection and compare
// families; rs2 is not used to select an operation).
const (
	Funct7FADD    = 0b0000000
	Funct7FSUB    = 0b0000100
	Funct7FMUL    = 0b0001000
	Funct7FDIV    = 0b0001100
	Funct7FSQRT   = 0b0101100
	Funct7FSGNJ   = 0b0010000 // funct3 000/001/010 = fsgnj/fsgnjn/fsgnjx
	Funct7FCmp    = 0b1010000 // funct3 010/001/000 = feq/flt/fle
	Funct7FCVTWS  = 0b1100000 // float -> int
	Funct7FCVTSW  = 0b1101000 // int -> float
)

const (
	Funct3FSGNJ  = 0b000
	Funct3FSGNJN = 0b001
	Funct3FSGNJX = 0b010
	Funct3FEQ    = 0b010
	Funct3FLT    = 0b001
	Funct3FLE    = 0b000
)
