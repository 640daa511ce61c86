package vision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentAngle(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		want           float64
	}{
		{"horizontal", 0, 0, 100, 0, 0},
		{"horizontal reversed", 100, 0, 0, 0, 0},
		{"vertical", 0, 0, 0, 100, 0},
		{"vertical up", 0, 100, 0, 0, 0},
		{"tilted down right", 0, 0, 100, 100, -45},
		{"tilted down right reversed", 100, 100, 0, 0, -45},
		{"tilted up right", 0, 100, 100, 0, -45},
		{"steep slope folds to complement", 0, 0, 100, 173, -30.03},
		{"steep slope reversed", 100, 173, 0, 0, -30.03},
		{"slope", 0, 0, 1000, 141, 8.026},
		{"slope reversed", 1000, 141, 0, 0, 8.026},
		{"tilted vertical edge", 0, 0, -141, 1000, 8.026},
		{"negative slope", 0, 141, 1000, 0, -8.026},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, SegmentAngle(tt.x1, tt.y1, tt.x2, tt.y2), 0.01)
		})
	}
}

func TestMedianAngle(t *testing.T) {
	_, ok := MedianAngle(nil)
	require.False(t, ok)

	m, ok := MedianAngle([]float64{8, -30, 7.5, 8.5, 40})
	require.True(t, ok)
	require.Equal(t, 8.0, m)

	m, ok = MedianAngle([]float64{1, 3, 2, 10})
	require.True(t, ok)
	require.Equal(t, 2.5, m)
}

func TestMedianAngle_DoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	_, _ = MedianAngle(in)
	require.Equal(t, []float64{3, 1, 2}, in)
}

func TestNeedsRotation(t *testing.T) {
	p := DefaultParams()
	require.False(t, p.needsRotation(5))
	require.False(t, p.needsRotation(-4.9))
	require.True(t, p.needsRotation(5.1))
	require.True(t, p.needsRotation(-8))
}
