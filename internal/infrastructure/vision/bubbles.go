package vision

import (
	"image"
	"math"

	"sheet-scanner/internal/domain/entity"
)

// Circularity 4π·S/P²; для нулевого периметра 0.
func Circularity(area, perimeter float64) float64 {
	if perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}

// NewBubbleCandidate собирает кандидата из контура и измеренных площади и периметра.
func NewBubbleCandidate(contour []image.Point, area, perimeter float64) entity.BubbleCandidate {
	box := entity.BoundsOf(contour)
	c := entity.BubbleCandidate{
		Contour:     contour,
		Box:         box,
		Area:        area,
		Perimeter:   perimeter,
		Circularity: Circularity(area, perimeter),
	}
	if box.Height > 0 {
		c.AspectRatio = float64(box.Width) / float64(box.Height)
	}
	return c
}

// acceptBubble проверяет, похож ли контур на кружок бланка на изображении width×height.
func (p Params) acceptBubble(c entity.BubbleCandidate, width, height int) bool {
	if c.Area < p.MinContourArea {
		return false
	}

	minDim := float64(min(width, height))
	minSize, maxSize := minDim*p.MinSizeRatio, minDim*p.MaxSizeRatio
	w, h := float64(c.Box.Width), float64(c.Box.Height)

	inside := c.Box.X >= 0 && c.Box.Y >= 0 && c.Box.X+c.Box.Width <= width && c.Box.Y+c.Box.Height <= height

	return inside &&
		minSize < w && w < maxSize &&
		minSize < h && h < maxSize &&
		p.MinAspectRatio < c.AspectRatio && c.AspectRatio < p.MaxAspectRatio &&
		c.Circularity > p.MinCircularity &&
		c.Area > p.MinBubbleArea
}

// FilterBubbles оставляет только кандидатов, похожих на кружки.
func (p Params) FilterBubbles(candidates []entity.BubbleCandidate, width, height int) []entity.BubbleCandidate {
	out := make([]entity.BubbleCandidate, 0, len(candidates))
	for _, c := range candidates {
		if p.acceptBubble(c, width, height) {
			out = append(out, c)
		}
	}
	return out
}
