package protocol

import "math"

// Squash quantizes x into a bits-wide fixed-point value: round((x+offset)*scale).
// Values outside the representable range wrap around modulo 2^bits; they are
// not clamped.
func Squash(x float64, bits uint, scale, offset float64) uint64 {
	v := int64(math.Round((x + offset) * scale))
	return uint64(v) & mask(bits)
}

// Unsquash is the inverse of Squash.
func Unsquash(v uint64, bits uint, scale, offset float64) float64 {
	return float64(int64(v&mask(bits)))/scale - offset
}

func squashPosition(x float64) uint64 {
	return Squash(x, AxisBits, PositionScale, PositionOffset)
}

func unsquashPosition(v uint64) float64 {
	return Unsquash(v, AxisBits, PositionScale, PositionOffset)
}

func squashVelocity(x float64) uint64 {
	return Squash(x, AxisBits, VelocityScale, VelocityOffset)
}

func unsquashVelocity(v uint64) float64 {
	return Unsquash(v, AxisBits, VelocityScale, VelocityOffset)
}
