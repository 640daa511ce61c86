//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"sheet-scanner/internal/domain/entity"
	"sheet-scanner/internal/domain/port"
)

// Scan прогоняет изображение через все этапы: выравнивание, выпрямление листа,
// поиск кружков, группировку по строкам и оценку ответов.
func (s *GoCVScanner) Scan(ctx context.Context, imageData []byte, sink port.ArtifactSink) (*entity.SheetResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = nopSink{}
	}

	src, err := decodeToMat(imageData)
	defer src.Close()
	if err != nil {
		return nil, err
	}

	oriented, skew, rotated := s.correctOrientation(src)
	defer oriented.Close()

	rectified, found := s.rectifyDocument(oriented, sink)
	defer rectified.Close()

	normalized := s.normalize(rectified)
	defer normalized.Close()

	candidates := s.detectBubbles(normalized, sink)
	rows := GroupRows(candidates, s.Params.RowBreakFactor)
	if len(rows) == 0 {
		return nil, entity.ErrNoBubbles
	}

	answers, marked := s.scoreAnswers(normalized, rows)
	defer marked.Close()

	markedImg, err := marked.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert marked image: %w", err)
	}
	sink.Record(entity.ArtifactMarked, markedImg)

	return &entity.SheetResult{
		Answers:    answers,
		Width:      normalized.Cols(),
		Height:     normalized.Rows(),
		Marked:     markedImg,
		SkewAngle:  skew,
		Rotated:    rotated,
		Rectified:  found,
		Candidates: len(candidates),
	}, nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	if len(imageData) == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: empty input", entity.ErrDecodeFailure)
	}
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), fmt.Errorf("%w: %d bytes", entity.ErrDecodeFailure, len(imageData))
}

// record передаёт копию Mat в приёмник промежуточных изображений.
func record(sink port.ArtifactSink, label string, mat gocv.Mat) {
	img, err := mat.ToImage()
	if err != nil {
		return
	}
	sink.Record(label, img)
}
