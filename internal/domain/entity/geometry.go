package entity

import (
	"image"
	"math"
)

// Point точка в пиксельных координатах (начало в левом верхнем углу)
type Point struct {
	X float64
	Y float64
}

// Sub возвращает разность двух точек
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Norm возвращает длину вектора
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// BoundingBox описывает прямоугольник, охватывающий контур
type BoundingBox struct {
	X      int // координата X левого верхнего угла
	Y      int // координата Y левого верхнего угла
	Width  int // ширина в пикселях
	Height int // высота в пикселях
}

// Center возвращает координаты центра прямоугольника
func (b BoundingBox) Center() (x, y int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Rect переводит прямоугольник в image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// BoundsOf считает охватывающий прямоугольник по точкам контура.
// Ширина и высота включают крайние пиксели, как boundingRect в OpenCV.
func BoundsOf(contour []image.Point) BoundingBox {
	if len(contour) == 0 {
		return BoundingBox{}
	}
	minX, minY := contour[0].X, contour[0].Y
	maxX, maxY := minX, minY
	for _, p := range contour[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}
