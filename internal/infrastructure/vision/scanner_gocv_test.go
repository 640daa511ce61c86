//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"sheet-scanner/internal/domain/entity"
)

var black = color.RGBA{A: 255}

type labelRecorder struct {
	labels []string
}

func (r *labelRecorder) Record(label string, img image.Image) {
	r.labels = append(r.labels, label)
}

// drawSheet рисует белый лист 600×800 на сером фоне с пятью строками по пять кружков.
// filled[r]: индекс закрашенного кружка в строке r или -1.
func drawSheet(t *testing.T, filled []int) gocv.Mat {
	t.Helper()
	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 100, 100, 0), 1000, 800, gocv.MatTypeCV8UC3)
	gocv.Rectangle(&canvas, image.Rect(100, 100, 700, 900), white, -1)
	for r := 0; r < 5; r++ {
		cy := 250 + r*130
		for i := 0; i < 5; i++ {
			thickness := 3
			if filled[r] == i {
				thickness = -1
			}
			gocv.Circle(&canvas, image.Pt(250+i*80, cy), 20, black, thickness)
		}
		gocv.Line(&canvas, image.Pt(150, cy+55), image.Pt(650, cy+55), black, 2)
	}
	return canvas
}

func encodePNG(t *testing.T, mat gocv.Mat) []byte {
	t.Helper()
	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	require.NoError(t, err)
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...)
}

func rotate(mat gocv.Mat, angle float64) gocv.Mat {
	rot := gocv.GetRotationMatrix2D(image.Pt(mat.Cols()/2, mat.Rows()/2), angle, 1.0)
	defer rot.Close()
	out := gocv.NewMat()
	gocv.WarpAffineWithParams(mat, &out, rot, image.Pt(mat.Cols(), mat.Rows()), gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{R: 100, G: 100, B: 100})
	return out
}

func TestScan_BlankSheet(t *testing.T) {
	sheet := drawSheet(t, []int{-1, -1, -1, -1, -1})
	defer sheet.Close()

	rec := &labelRecorder{}
	s := NewGoCVScanner(DefaultParams())
	result, err := s.Scan(context.Background(), encodePNG(t, sheet), rec)
	require.NoError(t, err)

	require.True(t, result.Rectified)
	require.False(t, result.Rotated)
	require.Equal(t, map[string]string{"Q1": "?", "Q2": "?", "Q3": "?", "Q4": "?", "Q5": "?"}, result.AnswerMap())
	require.Equal(t, 900, result.Height)
	require.Equal(t, result.Width, result.Marked.Bounds().Dx())
	require.Equal(t, result.Height, result.Marked.Bounds().Dy())
	require.ElementsMatch(t, []string{
		entity.ArtifactDocument,
		entity.ArtifactRectified,
		entity.ArtifactPreprocessed,
		entity.ArtifactBubbles,
		entity.ArtifactMarked,
	}, rec.labels)
}

func TestScan_FilledSheet(t *testing.T) {
	sheet := drawSheet(t, []int{0, 1, 2, 3, 4})
	defer sheet.Close()

	s := NewGoCVScanner(DefaultParams())
	result, err := s.Scan(context.Background(), encodePNG(t, sheet), nil)
	require.NoError(t, err)

	require.Equal(t, 25, result.Candidates)
	require.Equal(t, map[string]string{"Q1": "A", "Q2": "B", "Q3": "C", "Q4": "D", "Q5": "E"}, result.AnswerMap())
	require.Equal(t, 5, result.ResolvedCount())
}

func TestScan_TiltedSheet(t *testing.T) {
	sheet := drawSheet(t, []int{4, 3, 2, 1, 0})
	defer sheet.Close()
	tilted := rotate(sheet, -8)
	defer tilted.Close()

	s := NewGoCVScanner(DefaultParams())
	angle, ok := s.estimateSkew(tilted)
	require.True(t, ok)
	require.InDelta(t, 8.0, angle, 1.0)

	result, err := s.Scan(context.Background(), encodePNG(t, tilted), nil)
	require.NoError(t, err)
	require.True(t, result.Rotated)
	require.True(t, result.Rectified)
	require.Equal(t, map[string]string{"Q1": "E", "Q2": "D", "Q3": "C", "Q4": "B", "Q5": "A"}, result.AnswerMap())
}

func TestScan_DecodeFailure(t *testing.T) {
	s := NewGoCVScanner(DefaultParams())

	_, err := s.Scan(context.Background(), []byte("definitely not an image"), nil)
	require.True(t, errors.Is(err, entity.ErrDecodeFailure))

	_, err = s.Scan(context.Background(), nil, nil)
	require.True(t, errors.Is(err, entity.ErrDecodeFailure))
}

func TestScan_NoBubbles(t *testing.T) {
	blank := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 600, 400, gocv.MatTypeCV8UC3)
	defer blank.Close()

	rec := &labelRecorder{}
	s := NewGoCVScanner(DefaultParams())
	_, err := s.Scan(context.Background(), encodePNG(t, blank), rec)
	require.True(t, errors.Is(err, entity.ErrNoBubbles))
	require.Contains(t, rec.labels, entity.ArtifactPreprocessed)
	require.Contains(t, rec.labels, entity.ArtifactBubbles)
}

func TestCorrectOrientation_NoLinesIsIdentity(t *testing.T) {
	blank := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(200, 200, 200, 0), 300, 400, gocv.MatTypeCV8UC3)
	defer blank.Close()
	gocv.Circle(&blank, image.Pt(200, 150), 30, black, 3)

	s := NewGoCVScanner(DefaultParams())
	out, angle, rotated := s.correctOrientation(blank)
	defer out.Close()

	require.False(t, rotated)
	require.Zero(t, angle)
	require.Equal(t, blank.ToBytes(), out.ToBytes())
}

func TestRectifyDocument_KnownCorners(t *testing.T) {
	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 90, 90, 0), 1000, 800, gocv.MatTypeCV8UC3)
	defer canvas.Close()
	corners := []image.Point{{120, 80}, {680, 140}, {700, 880}, {90, 860}}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{corners})
	defer pv.Close()
	gocv.FillPoly(&canvas, pv, white)

	s := NewGoCVScanner(DefaultParams())
	out, found := s.rectifyDocument(canvas, nopSink{})
	defer out.Close()

	require.True(t, found)
	require.InDelta(t, 610, out.Cols(), 4)
	require.InDelta(t, 780, out.Rows(), 4)
}

func TestRectifyDocument_NoQuadIsPassThrough(t *testing.T) {
	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 400, 300, gocv.MatTypeCV8UC3)
	defer canvas.Close()
	gocv.Circle(&canvas, image.Pt(150, 200), 80, black, -1)

	s := NewGoCVScanner(DefaultParams())
	out, found := s.rectifyDocument(canvas, nopSink{})
	defer out.Close()

	require.False(t, found)
	require.Equal(t, canvas.ToBytes(), out.ToBytes())
}
