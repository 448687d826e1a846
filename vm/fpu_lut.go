package vm

import (
	"fmt"
	"math"
	"math/bits"
)

// Division and square root are implemented as a piecewise-linear
// approximation looked up by the top mantissa bits, refined by one
// multiply/add. The tables are built once at startup with host
// double-precision math — the lookup itself, at simulation time, is plain
// bit-exact single-precision arithmetic.

type lutEntry struct {
	a, b FloatingPoint
}

// InvMap approximates 1/x by piecewise-linear interpolation on [1, 2).
type InvMap [InvMapEntries]lutEntry

// BuildInvMap constructs the reciprocal table once at startup.
func BuildInvMap() *InvMap {
	var m InvMap
	eps := math.Pow(2, -10)
	for i := 0; i < InvMapEntries; i++ {
		left := 1 + float64(i)*eps
		right := 1 + float64(i+1)*eps
		middleX := (left + right) / 2
		leftInv := 1 / left
		rightInv := 1 / right
		a := (rightInv - leftInv) / eps
		middleYUp := (leftInv + rightInv) / 2
		middleYDown := 1 / middleX
		middleY := (middleYUp + middleYDown) / 2
		b := middleY - a*middleX
		m[i] = lutEntry{
			a: FromFloat32(float32(math.Abs(a))),
			b: FromFloat32(float32(b)),
		}
	}
	return &m
}

func (m *InvMap) lookup(x FloatingPoint) FloatingPoint {
	_, _, frac := x.parts()
	index := frac >> 13
	e := m[index]
	return e.b.Sub(e.a.Mul(x))
}

// SqrtMap approximates sqrt(x) on [1,2) and [2,4), one 512-entry half per
// interval, selected by the parity of the normalized exponent.
type SqrtMap [2 * SqrtMapEntriesPerHalf]lutEntry

// BuildSqrtMap constructs the square-root table once at startup.
func BuildSqrtMap() *SqrtMap {
	var m SqrtMap
	eps := math.Pow(2, -9)
	start := 1.0
	for half := 0; half < 2; half++ {
		for i := 0; i < SqrtMapEntriesPerHalf; i++ {
			left := start + float64(i)*eps
			right := start + float64(i+1)*eps
			middleX := (left + right) / 2
			leftSqrt := math.Sqrt(left)
			rightSqrt := math.Sqrt(right)
			a := (rightSqrt - leftSqrt) / eps
			middleYUp := math.Sqrt(middleX)
			middleYDown := (leftSqrt + rightSqrt) / 2
			middleY := (middleYUp + middleYDown) / 2
			b := middleY - a*middleX
			m[half*SqrtMapEntriesPerHalf+i] = lutEntry{
				a: FromFloat32(float32(a)),
				b: FromFloat32(float32(b)),
			}
		}
		eps *= 2
		start++
	}
	return &m
}

// Div computes self / other using the reciprocal LUT: normalize both
// operands into [1,2), look up the divisor's reciprocal, multiply, then
// rebase the exponent.
func (f FloatingPoint) Div(other FloatingPoint, inv *InvMap) FloatingPoint {
	s1, e1, m1 := f.parts()
	s2, e2, m2 := other.parts()
	if e1 == 0 {
		return FloatingPoint{}
	}
	normThis := FloatingPoint{Bits: (127 << 23) + m1}
	normOther := FloatingPoint{Bits: (127 << 23) + m2}
	otherInv := inv.lookup(normOther)
	yi := normThis.Mul(otherInv)
	_, ei, my := yi.parts()
	eyi := (int32(e1) - 127) - (int32(e2) - 127) + (int32(ei) - 127) + 127
	var ey uint32
	if eyi < 0 {
		ey = 0
	} else {
		ey = toNBits32(uint32(eyi), 8)
	}
	sy := s1 ^ s2
	return FloatingPoint{Bits: (sy << 31) | (ey << 23) | my}
}

// Sqrt computes the square root using the sqrt LUT, after normalizing the
// operand's exponent to even parity (folding the odd case into the [2,4)
// half of the table) so a single lookup handles the full exponent range.
// Negative operands are a hardware fault, reported as an error.
func (f FloatingPoint) Sqrt(sq *SqrtMap) (FloatingPoint, error) {
	s, e, m := f.parts()
	if s == 1 {
		return FloatingPoint{}, fmt.Errorf("fsqrt: negative operand")
	}
	if e == 0 {
		return FloatingPoint{}, nil
	}
	var sh, offsetE uint32
	switch {
	case e < 127:
		if (127-e)%2 == 0 {
			sh, offsetE = 0, 127-e
		} else {
			sh, offsetE = 0, 128-e
		}
	case e > 128:
		if (e-128)%2 == 0 {
			sh, offsetE = 1, e-128
		} else {
			sh, offsetE = 1, e-127
		}
	default:
		sh, offsetE = 0, 0
	}
	ei := e + offsetE
	if sh != 0 {
		ei = e - offsetE
	}
	normalized := FloatingPoint{Bits: (ei << 23) + m}
	index := ((^ei & 1) << 9) + (m >> 14)
	entry := sq[index]
	yi := entry.b.Add(entry.a.Mul(normalized))
	_, eyi, my := yi.parts()
	var ey uint32
	if sh == 0 {
		ey = toNBits32(eyi-offsetE/2, 8)
	} else {
		ey = toNBits32(eyi+offsetE/2, 8)
	}
	return FloatingPoint{Bits: (ey << 23) | my}, nil
}

// ToInt32 converts to the nearest int32, per the hardware's explicit
// leading-one extraction and exponent-range-branched rounding/clamping.
func (f FloatingPoint) ToInt32() int32 {
	s, e, m := f.parts()
	if e == 0 {
		return 0
	}
	mi := m | 0x800000
	mis := mi << 7
	var msb, myi uint32
	switch {
	case e < 126:
		msb, myi = 0, 0
	case e == 126:
		msb, myi = 1, 0
	case e < 127+30:
		msb = (mis >> (30 - (e - 127 + 1))) & 1
		myi = mis >> (30 - (e - 127))
	case e == 127+30:
		msb, myi = 0, mis
	case s == 1:
		msb, myi = 0, 1<<31
	default:
		msb, myi = 0, (1<<31)-1
	}
	my := myi + msb
	if s == 0 || e >= 127+31 {
		return int32(my)
	}
	if my == 0 {
		return 0
	}
	return int32(^my + 1)
}

// FromInt32 converts an int32 to the nearest representable single, ties to
// even, via a leading-zero-count normalization and mantissa-carry check.
func FromInt32(x int32) FloatingPoint {
	if x == -2147483648 {
		return FloatingPoint{Bits: 0xcf000000}
	}
	if x == 0 {
		return FloatingPoint{}
	}
	var ux uint32
	if x < 0 {
		ux = uint32(^(x - 1))
	} else {
		ux = uint32(x)
	}
	se := uint32(bits.LeadingZeros32(ux))
	var mye uint32
	if se != 31 {
		mye = (ux &^ (1 << (31 - se))) << (se + 1)
	}
	myi := mye >> 9
	roundUp := mye&(1<<8) != 0 && (mye&0xFF != 0 || myi&1 != 0)
	myi2 := myi
	if roundUp {
		myi2 = myi + 1
	}
	my := toNBits32(myi2, 23)
	var ey uint32
	if bits.OnesCount32(myi) == 23 && roundUp {
		ey = toNBits32(127+31-se+1, 8)
	} else {
		ey = toNBits32(127+31-se, 8)
	}
	var sy uint32
	if x < 0 {
		sy = 1
	}
	return FloatingPoint{Bits: (sy << 31) | (ey << 23) | my}
}

