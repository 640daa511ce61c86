package vision

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/mat"

	"sheet-scanner/internal/domain/entity"
)

// Quad четыре вершины в порядке: левый верхний, правый верхний, правый нижний, левый нижний.
type Quad [4]entity.Point

// OrderPoints упорядочивает вершины четырёхугольника.
// Левый верхний угол имеет наименьшую сумму x+y, правый нижний наибольшую;
// правый верхний имеет наименьшую разность y-x, левый нижний наибольшую.
func OrderPoints(pts [4]entity.Point) Quad {
	tl, br, tr, bl := 0, 0, 0, 0
	for i, p := range pts {
		s, d := p.X+p.Y, p.Y-p.X
		if s < pts[tl].X+pts[tl].Y {
			tl = i
		}
		if s > pts[br].X+pts[br].Y {
			br = i
		}
		if d < pts[tr].Y-pts[tr].X {
			tr = i
		}
		if d > pts[bl].Y-pts[bl].X {
			bl = i
		}
	}
	return Quad{pts[tl], pts[tr], pts[br], pts[bl]}
}

// QuadFromContour переводит аппроксимированный контур из четырёх точек в упорядоченный Quad.
func QuadFromContour(contour []image.Point) (Quad, bool) {
	if len(contour) != 4 {
		return Quad{}, false
	}
	var pts [4]entity.Point
	for i, p := range contour {
		pts[i] = entity.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	return OrderPoints(pts), true
}

// RectifiedSize возвращает размер выпрямленного листа:
// ширина: большая из длин верхней и нижней сторон, высота: большая из боковых.
func RectifiedSize(q Quad) (width, height int) {
	tl, tr, br, bl := q[0], q[1], q[2], q[3]
	width = max(int(br.Sub(bl).Norm()), int(tr.Sub(tl).Norm()))
	height = max(int(tr.Sub(br).Norm()), int(tl.Sub(bl).Norm()))
	return width, height
}

// DestinationQuad углы прямоугольника width×height, в которые переводится лист.
func DestinationQuad(width, height int) Quad {
	w, h := float64(width-1), float64(height-1)
	return Quad{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// Homography матрица перспективного преобразования 3×3 по строкам.
type Homography [9]float64

// PerspectiveTransform решает систему 8×8 для преобразования, переводящего src в dst.
// Решение на gonum, а не gocv.GetPerspectiveTransform, чтобы геометрию листа
// можно было проверять тестами без OpenCV.
func PerspectiveTransform(src, dst Quad) (Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y

		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -x * u, -y * u})
		b.SetVec(2*i, u)

		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -x * v, -y * v})
		b.SetVec(2*i+1, v)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("solve perspective transform: %w", err)
	}

	var m Homography
	for i := 0; i < 8; i++ {
		m[i] = h.AtVec(i)
	}
	m[8] = 1
	return m, nil
}

// Apply переводит точку через преобразование.
func (m Homography) Apply(p entity.Point) entity.Point {
	w := m[6]*p.X + m[7]*p.Y + m[8]
	return entity.Point{
		X: (m[0]*p.X + m[1]*p.Y + m[2]) / w,
		Y: (m[3]*p.X + m[4]*p.Y + m[5]) / w,
	}
}
