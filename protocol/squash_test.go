package protocol

import (
	"math"
	"testing"
)

func TestSquashWithinBound(t *testing.T) {
	tests := []struct {
		name          string
		scale, offset float64
		values        []float64
	}{
		{
			name:   "position",
			scale:  PositionScale,
			offset: PositionOffset,
			values: []float64{-10000, -500.25, 0, 1234.5, 1845.1, 11845},
		},
		{
			name:   "velocity",
			scale:  VelocityScale,
			offset: VelocityOffset,
			values: []float64{-750, -12.34, 0, 99.99, 706.3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, x := range tt.values {
				got := Unsquash(Squash(x, AxisBits, tt.scale, tt.offset), AxisBits, tt.scale, tt.offset)
				if diff := math.Abs(got - x); diff > 1/tt.scale {
					t.Errorf("round trip of %v = %v, off by %v (> %v)", x, got, diff, 1/tt.scale)
				}
			}
		})
	}
}

func TestSquashWrapsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		raw  uint64
		want float64
	}{
		{
			// (11846 + 10000) * 3 = 65538 -> 2
			name: "above range",
			x:    11846,
			raw:  2,
			want: 2.0/3 - PositionOffset,
		},
		{
			// (-10001 + 10000) * 3 = -3 -> 65533
			name: "below range",
			x:    -10001,
			raw:  65533,
			want: 65533.0/3 - PositionOffset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := Squash(tt.x, AxisBits, PositionScale, PositionOffset)
			if raw != tt.raw {
				t.Fatalf("Squash(%v) = %d, want %d", tt.x, raw, tt.raw)
			}
			got := Unsquash(raw, AxisBits, PositionScale, PositionOffset)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Unsquash(%d) = %v, want %v", raw, got, tt.want)
			}
		})
	}
}

func TestUnsquashIgnoresHighBits(t *testing.T) {
	a := Unsquash(0x1234, AxisBits, PositionScale, PositionOffset)
	b := Unsquash(0xFFFF0000|0x1234, AxisBits, PositionScale, PositionOffset)
	if a != b {
		t.Errorf("Unsquash with high bits = %v, want %v", b, a)
	}
}
