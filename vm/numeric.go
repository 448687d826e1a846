package vm

// Numeric utilities shared by the decoder, executor, and FPU model.
//
// Go's native int32(uint32) and uint32(int32) conversions are exact
// two's-complement bit reinterpretation, so the manual arithmetic
// workarounds the reference implementation needed are unnecessary here.

// SignExtend sign-extends the low bitWidth bits of value to a full int32.
func SignExtend(value uint32, bitWidth uint) int32 {
	shift := 32 - bitWidth
	return int32(value<<shift) >> shift
}

// ShiftAmount returns the low 5 bits of value, the shift amount this ISA
// uses for sll/srl/sra and their immediate forms.
func ShiftAmount(value uint32) uint32 {
	return value & 0x1F
}
