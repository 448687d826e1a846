package vm

// InstructionType tags which fixed layout a 32-bit word was decoded under.
type InstructionType int

const (
	TypeOther InstructionType = iota
	TypeI
	TypeR
	TypeS
	TypeB
	TypeJ
	TypeU
)

// DecodedInstruction is the pre-decoded form of one instruction-memory
// slot, produced once at load time so the fetch loop never re-decodes.
type DecodedInstruction struct {
	Type   InstructionType
	Op     uint32
	Rd     uint8
	Rs1    uint8
	Rs2    uint8
	Funct3 uint32
	Funct7 uint32
	Imm    int32
}

func typeOf(op uint32) InstructionType {
	switch op {
	case OpLW, OpALUI, OpFLW, OpIO, OpJALR:
		return TypeI
	case OpALUR, OpFALU:
		return TypeR
	case OpSW, OpFSW:
		return TypeS
	case OpJAL:
		return TypeJ
	case OpBr, OpFBr:
		return TypeB
	case OpLUI:
		return TypeU
	default:
		return TypeOther
	}
}

// Decode classifies a raw instruction word and extracts its fields. A raw
// word of zero decodes to Other (the trap case); the opcode 15 used for
// `end` also falls through to Other since it carries no fields.
func Decode(word uint32) DecodedInstruction {
	if word == 0 {
		return DecodedInstruction{Type: TypeOther}
	}
	op := word & OpFieldMask
	switch typeOf(op) {
	case TypeI:
		return DecodedInstruction{
			Type:   TypeI,
			Op:     op,
			Imm:    SignExtend(word>>19, 13),
			Rs1:    uint8((word >> 13) & RegFieldMask),
			Funct3: (word >> 10) & Funct3FieldMask,
			Rd:     uint8((word >> 4) & RegFieldMask),
		}
	case TypeR:
		return DecodedInstruction{
			Type:   TypeR,
			Op:     op,
			Funct7: word >> 25,
			Rs2:    uint8((word >> 19) & RegFieldMask),
			Rs1:    uint8((word >> 13) & RegFieldMask),
			Funct3: (word >> 10) & Funct3FieldMask,
			Rd:     uint8((word >> 4) & RegFieldMask),
		}
	case TypeS:
		imm := ((word >> 25) << 6) | ((word >> 4) & RegFieldMask)
		return DecodedInstruction{
			Type:   TypeS,
			Op:     op,
			Imm:    SignExtend(imm, 13),
			Rs2:    uint8((word >> 19) & RegFieldMask),
			Rs1:    uint8((word >> 13) & RegFieldMask),
			Funct3: (word >> 10) & Funct3FieldMask,
		}
	case TypeJ:
		imm := ((word >> 31) << 18) | (((word >> 13) & 0xFF) << 10) | (((word >> 21) & 1) << 9) | ((word >> 22) & 0x1FF)
		return DecodedInstruction{
			Type: TypeJ,
			Op:   op,
			Imm:  SignExtend(imm, 19),
			Rd:   uint8((word >> 4) & RegFieldMask),
		}
	case TypeB:
		imm := ((word >> 31) << 12) | (((word >> 4) & 1) << 11) | (((word >> 25) & 0x3F) << 5) | ((word >> 5) & 0x1F)
		return DecodedInstruction{
			Type:   TypeB,
			Op:     op,
			Imm:    SignExtend(imm, 13),
			Rs2:    uint8((word >> 19) & RegFieldMask),
			Rs1:    uint8((word >> 13) & RegFieldMask),
			Funct3: (word >> 10) & Funct3FieldMask,
		}
	case TypeU:
		return DecodedInstruction{
			Type: TypeU,
			Op:   op,
			Imm:  int32(word >> 13),
			Rd:   uint8((word >> 4) & RegFieldMask),
		}
	default:
		return DecodedInstruction{Type: TypeOther, Op: op}
	}
}
