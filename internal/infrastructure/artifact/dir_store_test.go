package artifact

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"sheet-scanner/internal/domain/entity"
)

func testImage(w, h int) image.Image {
	return imaging.New(w, h, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
}

func TestDirStore_PublishAndPath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(filepath.Join(dir, "debug"))
	require.NoError(t, err)

	names, err := store.Publish(context.Background(), []entity.Artifact{
		{Label: entity.ArtifactPreprocessed, Image: image.NewGray(image.Rect(0, 0, 20, 10))},
		{Label: entity.ArtifactBubbles, Image: testImage(30, 40)},
	})
	require.NoError(t, err)
	require.Equal(t, []string{entity.ArtifactPreprocessed, entity.ArtifactBubbles}, names)

	path, ok := store.Path(entity.ArtifactBubbles)
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, "debug", "4_detected_bubbles.jpg"), path)

	img, err := imaging.Open(path)
	require.NoError(t, err)
	require.Equal(t, 30, img.Bounds().Dx())
	require.Equal(t, 40, img.Bounds().Dy())

	tmps, err := filepath.Glob(filepath.Join(dir, "debug", "*.tmp"))
	require.NoError(t, err)
	require.Empty(t, tmps)
}

func TestDirStore_UnknownNames(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Path(MarkedName)
	require.False(t, ok)
	_, ok = store.Path("../../etc/passwd")
	require.False(t, ok)
}

func TestDirStore_SaveMarked(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.SaveMarked(context.Background(), testImage(10, 10)))
	path, ok := store.Path(MarkedName)
	require.True(t, ok)
	require.FileExists(t, path)

	require.Error(t, store.SaveMarked(context.Background(), nil))
}

func TestDirStore_CancelledContext(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	names, err := store.Publish(ctx, []entity.Artifact{{Label: "x", Image: testImage(1, 1)}})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, names)
}

func TestDirStore_ConcurrentPublishSameLabel(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(dir)
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img := imaging.New(600+i, 600, color.NRGBA{R: uint8(i * 30), A: 255})
			_, err := store.Publish(context.Background(), []entity.Artifact{{Label: entity.ArtifactBubbles, Image: img}})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	path, ok := store.Path(entity.ArtifactBubbles)
	require.True(t, ok)
	img, err := imaging.Open(path)
	require.NoError(t, err)
	require.Equal(t, 600, img.Bounds().Dy())

	tmps, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	require.Empty(t, tmps)
}
