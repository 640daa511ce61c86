//go:build gocv
// +build gocv

package vision

import (
	"image"
	"image/color"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"sheet-scanner/internal/domain/entity"
	"sheet-scanner/internal/domain/port"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// estimateSkew ищет отрезки преобразованием Хафа и возвращает медиану их углов.
func (s *GoCVScanner) estimateSkew(img gocv.Mat) (float64, bool) {
	p := s.Params

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, p.CannyLow, p.CannyHigh)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, math.Pi/180, p.HoughThreshold, p.HoughMinLineLength, p.HoughMaxLineGap)

	angles := make([]float64, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		angles = append(angles, SegmentAngle(int(v[0]), int(v[1]), int(v[2]), int(v[3])))
	}
	return MedianAngle(angles)
}

// correctOrientation поворачивает изображение на медианный угол наклона.
// Возвращает новый Mat того же размера, угол и признак поворота.
func (s *GoCVScanner) correctOrientation(img gocv.Mat) (gocv.Mat, float64, bool) {
	angle, ok := s.estimateSkew(img)
	if !ok || !s.Params.needsRotation(angle) {
		return img.Clone(), angle, false
	}

	w, h := img.Cols(), img.Rows()
	rot := gocv.GetRotationMatrix2D(image.Pt(w/2, h/2), angle, 1.0)
	defer rot.Close()

	rotated := gocv.NewMat()
	gocv.WarpAffineWithParams(img, &rotated, rot, image.Pt(w, h), gocv.InterpolationCubic, gocv.BorderReplicate, color.RGBA{})
	return rotated, angle, true
}

// findDocument ищет четырёхугольный контур листа среди самых крупных контуров.
func (s *GoCVScanner) findDocument(img gocv.Mat) ([]image.Point, bool) {
	p := s.Params

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, p.DocCannyLow, p.DocCannyHigh)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	type indexedArea struct {
		idx  int
		area float64
	}
	areas := make([]indexedArea, contours.Size())
	for i := range areas {
		areas[i] = indexedArea{idx: i, area: gocv.ContourArea(contours.At(i))}
	}
	sort.SliceStable(areas, func(i, j int) bool {
		return areas[i].area > areas[j].area
	})
	if len(areas) > p.DocCandidates {
		areas = areas[:p.DocCandidates]
	}

	for _, a := range areas {
		contour := contours.At(a.idx)
		peri := gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, p.PolyEpsilon*peri, true)
		pts := approx.ToPoints()
		approx.Close()
		if len(pts) == 4 {
			return pts, true
		}
	}
	return nil, false
}

// rectifyDocument выпрямляет лист перспективным преобразованием.
// Если лист не найден, возвращает копию входа.
func (s *GoCVScanner) rectifyDocument(img gocv.Mat, sink port.ArtifactSink) (gocv.Mat, bool) {
	pts, ok := s.findDocument(img)
	if !ok {
		return img.Clone(), false
	}

	outline := img.Clone()
	drawContours(&outline, [][]image.Point{pts}, s.Params.HighlightColor, 3)
	record(sink, entity.ArtifactDocument, outline)
	outline.Close()

	quad, _ := QuadFromContour(pts)
	width, height := RectifiedSize(quad)
	if width < 2 || height < 2 {
		return img.Clone(), false
	}
	h, err := PerspectiveTransform(quad, DestinationQuad(width, height))
	if err != nil {
		return img.Clone(), false
	}

	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for i, v := range h {
		m.SetDoubleAt(i/3, i%3, v)
	}

	warped := gocv.NewMat()
	gocv.WarpPerspective(img, &warped, m, image.Pt(width, height))
	record(sink, entity.ArtifactRectified, warped)
	return warped, true
}

// normalize приводит изображение к высоте TargetHeight с сохранением пропорций.
func (s *GoCVScanner) normalize(img gocv.Mat) gocv.Mat {
	resized := gocv.NewMat()
	gocv.Resize(img, &resized, s.Params.normalizedSize(img.Cols(), img.Rows()), 0, 0, gocv.InterpolationLinear)
	return resized
}

// binarize строит маску «чернил»: адаптивный порог по локальному среднему,
// закрытие и открытие, очистка рамки по краю.
func (s *GoCVScanner) binarize(img gocv.Mat) gocv.Mat {
	p := s.Params
	cols, rows := img.Cols(), img.Rows()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.AdaptiveThreshold(blur, &thresh, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinaryInv, p.blockSize(cols, rows), p.ThresholdC)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(p.KernelSize, p.KernelSize))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyExWithParams(thresh, &closed, gocv.MorphClose, kernel, p.CloseIterations, gocv.BorderConstant)

	cleaned := gocv.NewMat()
	gocv.MorphologyExWithParams(closed, &cleaned, gocv.MorphOpen, kernel, p.OpenIterations, gocv.BorderConstant)

	margin := p.borderMargin(cols, rows)
	if margin <= 0 || cols <= 2*margin || rows <= 2*margin {
		return cleaned
	}

	inner := image.Rect(margin, margin, cols-margin, rows-margin)
	framed := gocv.Zeros(rows, cols, gocv.MatTypeCV8U)
	from := cleaned.Region(inner)
	to := framed.Region(inner)
	from.CopyTo(&to)
	from.Close()
	to.Close()
	cleaned.Close()
	return framed
}

// detectBubbles находит контуры, похожие на кружки бланка.
func (s *GoCVScanner) detectBubbles(img gocv.Mat, sink port.ArtifactSink) []entity.BubbleCandidate {
	mask := s.binarize(img)
	defer mask.Close()
	record(sink, entity.ArtifactPreprocessed, mask)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	candidates := make([]entity.BubbleCandidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area < s.Params.MinContourArea {
			continue
		}
		candidates = append(candidates, NewBubbleCandidate(c.ToPoints(), area, gocv.ArcLength(c, true)))
	}
	bubbles := s.Params.FilterBubbles(candidates, img.Cols(), img.Rows())

	debug := img.Clone()
	defer debug.Close()
	drawContours(&debug, contoursOf(bubbles), s.Params.HighlightColor, 2)
	record(sink, entity.ArtifactBubbles, debug)

	return bubbles
}

// scoreAnswers заново бинаризует изображение, считает закрашенные пиксели в каждом
// кружке и обводит выбранные варианты на копии изображения.
func (s *GoCVScanner) scoreAnswers(img gocv.Mat, rows []entity.QuestionRow) ([]entity.Answer, gocv.Mat) {
	bin := s.binarize(img)
	defer bin.Close()

	measure := func(c entity.BubbleCandidate) BubbleFill {
		mask := gocv.Zeros(bin.Rows(), bin.Cols(), gocv.MatTypeCV8U)
		defer mask.Close()
		drawContours(&mask, [][]image.Point{c.Contour}, white, -1)

		ink := gocv.NewMat()
		defer ink.Close()
		gocv.BitwiseAndWithMask(bin, bin, &ink, mask)

		return BubbleFill{Ink: gocv.CountNonZero(ink), Area: gocv.CountNonZero(mask)}
	}

	answers, selected := s.Params.ScoreRows(rows, measure)

	marked := img.Clone()
	drawContours(&marked, contoursOf(selected), s.Params.HighlightColor, s.Params.HighlightThickness)
	return answers, marked
}

func contoursOf(bubbles []entity.BubbleCandidate) [][]image.Point {
	out := make([][]image.Point, len(bubbles))
	for i, b := range bubbles {
		out[i] = b.Contour
	}
	return out
}

// drawContours рисует контуры; толщина -1 заливает их.
func drawContours(img *gocv.Mat, contours [][]image.Point, c color.RGBA, thickness int) {
	if len(contours) == 0 {
		return
	}
	pv := gocv.NewPointsVectorFromPoints(contours)
	defer pv.Close()
	gocv.DrawContours(img, pv, -1, c, thickness)
}
