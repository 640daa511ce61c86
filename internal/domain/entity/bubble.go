package entity

import "image"

// BubbleCandidate контур, похожий на кружок для ответа
type BubbleCandidate struct {
	Contour     []image.Point // замкнутый контур
	Box         BoundingBox   // охватывающий прямоугольник
	Area        float64       // площадь внутри контура
	Perimeter   float64       // длина контура
	Circularity float64       // 4π·S/P², у идеального круга 1
	AspectRatio float64       // ширина / высота
}

// QuestionRow кружки одного вопроса слева направо (A, B, C, ...)
type QuestionRow []BubbleCandidate
