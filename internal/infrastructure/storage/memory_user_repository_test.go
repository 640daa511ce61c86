package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"sheet-scanner/internal/domain/entity"
)

func TestMemoryUserRepository_GetCreatesUser(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Equal(t, int64(10), user.ChatID)
}

func TestMemoryUserRepository_SaveIsolatesCopies(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	user.SetState(entity.StateAwaitingSheet)

	stored, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, stored.State, "changes are visible only after Save")

	require.NoError(t, repo.Save(ctx, user))
	stored, err = repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingSheet, stored.State)
}

func TestMemoryUserRepository_Delete(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, _ := repo.Get(ctx, 1, 10)
	user.RecordScan(user.LastScanAt)
	require.NoError(t, repo.Save(ctx, user))
	require.NoError(t, repo.Delete(ctx, 1))

	fresh, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Zero(t, fresh.Scans)
}

func TestMemoryUserRepository_Concurrent(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			u, err := repo.Get(ctx, id%5, 1)
			require.NoError(t, err)
			require.NoError(t, repo.Save(ctx, u))
		}(int64(i))
	}
	wg.Wait()
}
