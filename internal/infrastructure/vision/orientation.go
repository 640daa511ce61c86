package vision

import (
	"math"
	"sort"
)

// SegmentAngle угол отрезка относительно горизонтали в градусах, приведённый к [-45, 45).
// Направление отрезка не важно, вертикальные края листа дают тот же наклон, что и горизонтальные.
func SegmentAngle(x1, y1, x2, y2 int) float64 {
	a := math.Atan2(float64(y2-y1), float64(x2-x1)) * 180 / math.Pi
	a -= 90 * math.Round(a/90)
	if a >= 45 {
		a -= 90
	}
	return a
}

// MedianAngle медиана углов; false, если углов нет.
func MedianAngle(angles []float64) (float64, bool) {
	n := len(angles)
	if n == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), angles...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// needsRotation сообщает, достаточно ли велик наклон для поворота.
func (p Params) needsRotation(angle float64) bool {
	return math.Abs(angle) > p.MaxSkewDegrees
}
