package project

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/messaging"
	"worldloom-backend/internal/repository/memory"
	appErrors "worldloom-backend/pkg/errors"
)

func newTestService(store *memory.Store) *Service {
	return NewService(store, store, messaging.NewNoopBus(), zap.NewNop())
}

func TestProjectCreate(t *testing.T) {
	t.Run("creates project", func(t *testing.T) {
		store := memory.NewStore()
		svc := newTestService(store)

		project, err := svc.Create(context.Background(), "user-1", "Eldoria", "a high fantasy world")
		require.NoError(t, err)
		assert.NotEmpty(t, project.ID)
		assert.Equal(t, "user-1", project.UserID)
		assert.Equal(t, "Eldoria", project.Name)

		listed, err := svc.List(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc := newTestService(memory.NewStore())

		_, err := svc.Create(context.Background(), "user-1", "   ", "")
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("wraps store failure", func(t *testing.T) {
		store := memory.NewStore()
		store.SetError("CreateProject", errors.New("table offline"))
		svc := newTestService(store)

		_, err := svc.Create(context.Background(), "user-1", "Eldoria", "")
		assert.Error(t, err)
	})
}

func TestProjectGet(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), "user-1", "Eldoria", "")
	require.NoError(t, err)

	t.Run("returns owned project", func(t *testing.T) {
		got, err := svc.Get(context.Background(), "user-1", created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("not found for other user", func(t *testing.T) {
		_, err := svc.Get(context.Background(), "user-2", created.ID)
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("not found for unknown id", func(t *testing.T) {
		_, err := svc.Get(context.Background(), "user-1", "missing")
		assert.True(t, appErrors.IsNotFound(err))
	})
}

func TestProjectUpdate(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	created, err := svc.Create(context.Background(), "user-1", "Eldoria", "")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "user-1", created.ID, "Eldoria Revised", "second draft")
	require.NoError(t, err)
	assert.Equal(t, "Eldoria Revised", updated.Name)
	assert.Equal(t, "second draft", updated.Description)

	got, err := svc.Get(context.Background(), "user-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Eldoria Revised", got.Name)
}

func TestProjectDelete(t *testing.T) {
	t.Run("deletes empty project", func(t *testing.T) {
		store := memory.NewStore()
		svc := newTestService(store)

		created, err := svc.Create(context.Background(), "user-1", "Eldoria", "")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), "user-1", created.ID))

		_, err = svc.Get(context.Background(), "user-1", created.ID)
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("rejects project that still has elements", func(t *testing.T) {
		store := memory.NewStore()
		svc := newTestService(store)

		created, err := svc.Create(context.Background(), "user-1", "Eldoria", "")
		require.NoError(t, err)

		element, err := domain.NewElement(created.ID, domain.CategoryCharacter, "Mira", "", nil)
		require.NoError(t, err)
		require.NoError(t, store.CreateElement(context.Background(), "user-1", element))

		err = svc.Delete(context.Background(), "user-1", created.ID)
		assert.True(t, appErrors.IsConflict(err))

		// still there
		_, err = svc.Get(context.Background(), "user-1", created.ID)
		assert.NoError(t, err)
	})
}
