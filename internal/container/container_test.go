package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sheet-scanner/internal/domain/entity"
	"sheet-scanner/internal/infrastructure/artifact"
	"sheet-scanner/internal/infrastructure/storage"
)

func TestNew_WiresServices(t *testing.T) {
	store, err := artifact.NewDirStore(t.TempDir())
	require.NoError(t, err)

	c := New(storage.NewMemoryUserRepository(), nil, store, 0)
	require.NotNil(t, c.UserService)
	require.NotNil(t, c.SheetService)
	require.Same(t, store, c.Artifacts)

	user, err := c.UserService.BeginScan(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingSheet, user.State)

	_, err = c.SheetService.Process(context.Background(), []byte("x"))
	require.Error(t, err, "scanner is not configured")
}

func TestNewArtifactSink_IsFresh(t *testing.T) {
	a, b := newArtifactSink(), newArtifactSink()
	a.Record("x", nil)
	require.Len(t, a.Artifacts(), 1)
	require.Empty(t, b.Artifacts())
}
