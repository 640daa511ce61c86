package artifact

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemorySink_KeepsOrderAndReplaces(t *testing.T) {
	sink := NewMemorySink()
	a := image.NewGray(image.Rect(0, 0, 2, 2))
	b := image.NewGray(image.Rect(0, 0, 3, 3))

	sink.Record("2_document_contour", a)
	sink.Record("1_preprocessed", a)
	sink.Record("2_document_contour", b)

	got := sink.Artifacts()
	require.Len(t, got, 2)
	require.Equal(t, "2_document_contour", got[0].Label)
	require.Equal(t, b, got[0].Image)
	require.Equal(t, "1_preprocessed", got[1].Label)
}

func TestMemorySink_ArtifactsIsACopy(t *testing.T) {
	sink := NewMemorySink()
	sink.Record("x", image.NewGray(image.Rect(0, 0, 1, 1)))

	got := sink.Artifacts()
	got[0].Label = "changed"
	require.Equal(t, "x", sink.Artifacts()[0].Label)
}
