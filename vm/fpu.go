package vm

import (
	"math"
	"math/bits"
)

// Bit-exact IEEE-754 single-precision arithmetic, implemented purely by bit
// manipulation so results are identical across host architectures and do
// not depend on the host FPU's rounding behavior. Every operation mirrors
// the hardware's own algorithm rather than delegating to Go's native
// float32, which would round differently in the edge cases this ISA's
// float unit handles (denormals, the custom guard/round/sticky tie-break,
// and the LUT-based division and square root below).

// FloatingPoint wraps a raw 32-bit IEEE-754 bit pattern.
type FloatingPoint struct {
	Bits uint32
}

// NewFloatingPoint wraps a raw bit pattern.
func NewFloatingPoint(bits uint32) FloatingPoint {
	return FloatingPoint{Bits: bits}
}

// FromFloat32 converts a host float32 into its bit pattern. Used to seed the
// LUT builders, to store the value parsed from a fin token, and in tests; no
// arithmetic goes through the host float32.
func FromFloat32(v float32) FloatingPoint {
	return FloatingPoint{Bits: math.Float32bits(v)}
}

// ToFloat32 converts the bit pattern to a host float32, for display and
// tests.
func (f FloatingPoint) ToFloat32() float32 {
	return math.Float32frombits(f.Bits)
}

func (f FloatingPoint) sign() uint32 {
	return (f.Bits & 0x80000000) >> 31
}

func (f FloatingPoint) exp() uint32 {
	return (f.Bits & 0x7f800000) >> 23
}

func (f FloatingPoint) fraction() uint32 {
	return f.Bits & 0x7fffff
}

// parts returns the (sign, biased-exponent, fraction) triple used
// throughout the arithmetic below.
func (f FloatingPoint) parts() (uint32, uint32, uint32) {
	return f.sign(), f.exp(), f.fraction()
}

func toNBits32(num uint32, n uint) uint32 {
	return num & ((1 << n) - 1)
}

func toNBits64(num uint64, n uint) uint64 {
	return num & ((1 << n) - 1)
}

// Add implements single-precision addition directly on the bit patterns:
// align the smaller operand's 25-bit significand (implicit leading bit
// included) against the larger by the exponent difference, add or subtract
// depending on matching signs, renormalize on carry-out or leading zeros,
// then round to nearest with ties to even using the guard/round/sticky
// bits tracked through the shift.
func (f FloatingPoint) Add(other FloatingPoint) FloatingPoint {
	s1, e1, m1 := f.parts()
	s2, e2, m2 := other.parts()

	m1a, e1a := toNBits32(m1, 25), e1
	if e1 == 0 {
		e1a = 1
	} else {
		m1a = toNBits32(m1|0x800000, 25)
	}
	m2a, e2a := toNBits32(m2, 25), e2
	if e2 == 0 {
		e2a = 1
	} else {
		m2a = toNBits32(m2|0x800000, 25)
	}

	var ce, tde uint32
	if e1a > e2a {
		ce, tde = 0, toNBits32(e1a-e2a, 8)
	} else {
		ce, tde = 1, toNBits32(e2a-e1a, 8)
	}
	de := uint32(31)
	if tde>>5 == 0 {
		de = toNBits32(tde, 5)
	}
	sel := ce
	if de == 0 {
		if m1a > m2a {
			sel = 0
		} else {
			sel = 1
		}
	}

	var ms, mi, es, ss uint32
	if sel == 0 {
		ms, mi, es, ss = m1a, m2a, e1a, s1
	} else {
		ms, mi, es, ss = m2a, m1a, e2a, s2
	}

	mie := toNBits64(uint64(mi)<<31, 56)
	mia := toNBits64(mie>>uint64(de), 56)
	var tstck uint32
	if toNBits64(mia, 29) != 0 {
		tstck = 1
	}
	var mye uint64
	if s1 == s2 {
		mye = toNBits64((uint64(ms)<<2)+(mia>>29), 27)
	} else {
		mye = toNBits64((uint64(ms)<<2)-(mia>>29), 27)
	}

	esi := toNBits32(es+1, 8)
	var eyd, stck uint32
	var myd uint64
	if mye&(1<<26) != 0 {
		if esi == 255 {
			eyd, myd, stck = 255, 1<<25, 0
		} else {
			eyd = esi
			myd = toNBits64(mye>>1, 27)
			stck = tstck | uint32(mye&1)
		}
	} else {
		eyd, myd, stck = es, mye, tstck
	}

	seLZ := leadingZeros64(toNBits64(myd, 26)) - 38
	eyf := int64(eyd) - int64(seLZ)
	var myf uint64
	var eyr uint32
	if eyf > 0 {
		myf = toNBits64(myd<<seLZ, 56)
		eyr = uint32(eyf) & 0xFF
	} else {
		myf = toNBits64(myd<<((eyd&31)-1), 56)
		eyr = 0
	}

	roundUp := (myf&0b10 != 0 && myf&0b1 != 0) ||
		(myf&0b10 != 0 && stck == 0 && myf&0b100 != 0) ||
		(myf&0b10 != 0 && s1 == s2 && stck == 1)
	var myr uint64
	if roundUp {
		myr = toNBits64(toNBits64(myf>>2, 25)+1, 25)
	} else {
		myr = toNBits64(myf>>2, 25)
	}

	eyri := toNBits32(eyr+1, 8)
	var ey, my uint32
	if (myr>>24)&1 != 0 {
		ey, my = eyri, 0
	} else if toNBits64(myr, 24) == 0 {
		ey, my = 0, 0
	} else {
		ey, my = eyr, uint32(toNBits64(myr, 23))
	}

	sy := ss
	if ey == 0 && my == 0 {
		sy = s1 & s2
	}

	nzm1 := uint32(0)
	if toNBits32(m1, 23) != 0 {
		nzm1 = 1
	}
	nzm2 := uint32(0)
	if toNBits32(m2, 23) != 0 {
		nzm2 = 1
	}

	var y uint32
	switch {
	case e1 == 255 && e2 != 255:
		y = (s1 << 31) + (255 << 23) + (nzm1 << 22) + toNBits32(m1, 22)
	case e1 != 255 && e2 == 255:
		y = (s2 << 31) + (255 << 23) + (nzm2 << 22) + toNBits32(m2, 22)
	case e1 == 255 && e2 == 255 && nzm1 == 1:
		y = (s1 << 31) + (255 << 23) + (1 << 22) + toNBits32(m1, 22)
	case e1 == 255 && e2 == 255 && nzm2 == 1:
		y = (s2 << 31) + (255 << 23) + (1 << 22) + toNBits32(m2, 22)
	case e1 == 255 && e2 == 255 && s1 == s2:
		y = (s1 << 31) + (255 << 23)
	case e1 == 255 && e2 == 255:
		y = (1 << 31) + (255 << 23) + (1 << 22)
	default:
		y = (sy << 31) | (ey << 23) | my
	}
	return FloatingPoint{Bits: y}
}

// Sub computes self - other as self + (-other), flipping other's sign bit.
func (f FloatingPoint) Sub(other FloatingPoint) FloatingPoint {
	return f.Add(FloatingPoint{Bits: other.Bits ^ 0x80000000})
}

// Neg flips the sign bit.
func (f FloatingPoint) Neg() FloatingPoint {
	return FloatingPoint{Bits: f.Bits ^ 0x80000000}
}

// Mul implements single-precision multiplication via a 13-bit/11-bit split
// of each 23-bit significand (with the implicit leading bit folded in),
// avoiding any 46-bit-plus host multiply by composing three partial
// products (high*high, high*low, low*high; the low*low term is dropped).
func (f FloatingPoint) Mul(other FloatingPoint) FloatingPoint {
	s1, e1, m1 := f.parts()
	s2, e2, m2 := other.parts()

	h1, h2 := m1>>11, m2>>11
	l1, l2 := m1&0x7ff, m2&0x7ff
	h1i := h1 | 0x1000
	h2i := h2 | 0x1000
	h1h2 := uint64(h1i) * uint64(h2i)
	h1l2 := uint64(h1i) * uint64(l2)
	l1h2 := uint64(l1) * uint64(h2i)
	sy := s1 ^ s2
	eys := e1 + e2 + 129
	m1m2 := h1h2 + (h1l2 >> 11) + (l1h2 >> 11) + 2
	eysi := eys + 1

	var ey uint32
	switch {
	case e1 == 0 || e2 == 0 || (eys>>8)&1 == 0:
		ey = 0
	case m1m2&(1<<25) != 0:
		ey = toNBits32(eysi, 8)
	default:
		ey = toNBits32(eys, 8)
	}

	var my uint64
	switch {
	case ey == 0:
		my = 0
	case m1m2&(1<<25) != 0:
		my = toNBits64(m1m2>>2, 23)
	default:
		my = toNBits64(m1m2>>1, 23)
	}

	y := (sy << 31) | (ey << 23) | uint32(my)
	return FloatingPoint{Bits: y}
}

// FSgnj returns self with its sign replaced by other's.
func (f FloatingPoint) FSgnj(other FloatingPoint) FloatingPoint {
	_, e1, m1 := f.parts()
	s2, _, _ := other.parts()
	return FloatingPoint{Bits: (s2 << 31) | (e1 << 23) | m1}
}

// FSgnjn returns self with its sign replaced by other's, negated.
func (f FloatingPoint) FSgnjn(other FloatingPoint) FloatingPoint {
	_, e1, m1 := f.parts()
	s2, _, _ := other.parts()
	return FloatingPoint{Bits: ((s2 ^ 1) << 31) | (e1 << 23) | m1}
}

// FSgnjx returns self with its sign XORed with other's.
func (f FloatingPoint) FSgnjx(other FloatingPoint) FloatingPoint {
	s1, e1, m1 := f.parts()
	s2, _, _ := other.parts()
	return FloatingPoint{Bits: ((s1 ^ s2) << 31) | (e1 << 23) | m1}
}

// Eq follows the hardware's equality rule: any two zero-exponent patterns
// compare equal regardless of sign or fraction (flushing subnormals to a
// single zero class), otherwise bit patterns must match exactly.
func (f FloatingPoint) Eq(other FloatingPoint) bool {
	s1, e1, m1 := f.parts()
	s2, e2, m2 := other.parts()
	if e1 == 0 && e2 == 0 {
		return true
	}
	return s1 == s2 && e1 == e2 && m1 == m2
}

// Less implements the hardware's total order: both zero-exponent compares
// equal (not less), differing signs order by sign, same sign orders by
// (exponent, fraction) with negatives reversed.
func (f FloatingPoint) Less(other FloatingPoint) bool {
	return f.Compare(other) < 0
}

// LessEqual implements <= under the same total order as Less.
func (f FloatingPoint) LessEqual(other FloatingPoint) bool {
	return f.Compare(other) <= 0
}

// Compare returns -1, 0, or 1 under the hardware's total order.
func (f FloatingPoint) Compare(other FloatingPoint) int {
	s1, e1, m1 := f.parts()
	s2, e2, m2 := other.parts()
	if e1 == 0 && e2 == 0 {
		return 0
	}
	if s1 != s2 {
		if s1 == 1 {
			return -1
		}
		return 1
	}
	if s1 == 0 {
		switch {
		case e1 > e2:
			return 1
		case e1 < e2:
			return -1
		case m1 > m2:
			return 1
		case m1 < m2:
			return -1
		default:
			return 0
		}
	}
	switch {
	case e1 > e2:
		return -1
	case e1 < e2:
		return 1
	case m1 > m2:
		return -1
	case m1 < m2:
		return 1
	default:
		return 0
	}
}

func leadingZeros64(v uint64) uint32 {
	return uint32(bits.LeadingZeros64(v))
}
