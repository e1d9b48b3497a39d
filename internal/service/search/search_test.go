package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/repository/memory"
	appErrors "worldloom-backend/pkg/errors"
)

func seedWorld(t *testing.T, store *memory.Store) (projectID string) {
	t.Helper()
	project, err := domain.NewProject("user-1", "Eldoria Chronicles", "a high fantasy setting")
	require.NoError(t, err)
	require.NoError(t, store.CreateProject(context.Background(), project))

	for _, seed := range []struct {
		category    domain.Category
		name        string
		description string
		tags        []string
	}{
		{domain.CategoryCharacter, "Mira Voss", "a wandering cartographer", []string{"protagonist"}},
		{domain.CategoryLocation, "Harborfall", "a port city", []string{"eldorian", "coastal"}},
		{domain.CategoryItem, "Starlit Compass", "points toward Eldoria's heart", nil},
	} {
		element, err := domain.NewElement(project.ID, seed.category, seed.name, seed.description, seed.tags)
		require.NoError(t, err)
		require.NoError(t, store.CreateElement(context.Background(), "user-1", element))
	}
	return project.ID
}

func TestSearch(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, store, zap.NewNop())
	seedWorld(t, store)

	t.Run("projects come before elements", func(t *testing.T) {
		results, err := svc.Search(context.Background(), "user-1", "eldori")
		require.NoError(t, err)
		require.Len(t, results, 3) // project name + element tag + element description

		assert.Equal(t, KindProject, results[0].Kind)
		assert.Equal(t, "Eldoria Chronicles", results[0].Name)
		assert.Equal(t, KindElement, results[1].Kind)
		assert.Equal(t, KindElement, results[2].Kind)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		results, err := svc.Search(context.Background(), "user-1", "MIRA")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Mira Voss", results[0].Name)
		assert.Equal(t, domain.CategoryCharacter, results[0].Category)
	})

	t.Run("no hits yields empty not nil", func(t *testing.T) {
		results, err := svc.Search(context.Background(), "user-1", "dragon")
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("blank query is rejected", func(t *testing.T) {
		_, err := svc.Search(context.Background(), "user-1", "   ")
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("other users see nothing", func(t *testing.T) {
		results, err := svc.Search(context.Background(), "user-2", "eldori")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSearcherSequenceGuard(t *testing.T) {
	store := memory.NewStore()
	searcher := NewSearcher(NewService(store, store, zap.NewNop()))
	seedWorld(t, store)

	t.Run("latest dispatch wins", func(t *testing.T) {
		slow := searcher.NextSequence()
		fast := searcher.NextSequence()

		// the later dispatch completes first
		results, err := searcher.SearchWithSequence(context.Background(), "user-1", "harbor", fast)
		require.NoError(t, err)
		assert.Len(t, results, 1)

		// the earlier one finishes afterwards and is discarded
		_, err = searcher.SearchWithSequence(context.Background(), "user-1", "mira", slow)
		assert.ErrorIs(t, err, ErrStale)
	})

	t.Run("uncontended search succeeds", func(t *testing.T) {
		results, err := searcher.Search(context.Background(), "user-1", "compass")
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestHistory(t *testing.T) {
	t.Run("most recent first with cap", func(t *testing.T) {
		store := memory.NewStore()
		history := NewHistory(store, 3)

		for _, term := range []string{"mira", "harbor", "compass", "guild"} {
			_, err := history.Record(context.Background(), "user-1", term)
			require.NoError(t, err)
		}

		terms, err := history.List(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"guild", "compass", "harbor"}, terms)
	})

	t.Run("re-recording moves to front without duplicating", func(t *testing.T) {
		store := memory.NewStore()
		history := NewHistory(store, DefaultHistorySize)

		for _, term := range []string{"mira", "harbor", "Mira"} {
			_, err := history.Record(context.Background(), "user-1", term)
			require.NoError(t, err)
		}

		terms, err := history.List(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Mira", "harbor"}, terms)
	})

	t.Run("blank terms are ignored", func(t *testing.T) {
		store := memory.NewStore()
		history := NewHistory(store, DefaultHistorySize)

		terms, err := history.Record(context.Background(), "user-1", "   ")
		require.NoError(t, err)
		assert.Empty(t, terms)
	})

	t.Run("empty history lists empty not nil", func(t *testing.T) {
		history := NewHistory(memory.NewStore(), DefaultHistorySize)

		terms, err := history.List(context.Background(), "user-1")
		require.NoError(t, err)
		assert.NotNil(t, terms)
		assert.Empty(t, terms)
	})

	t.Run("clear empties the history", func(t *testing.T) {
		store := memory.NewStore()
		history := NewHistory(store, DefaultHistorySize)

		_, err := history.Record(context.Background(), "user-1", "mira")
		require.NoError(t, err)
		require.NoError(t, history.Clear(context.Background(), "user-1"))

		terms, err := history.List(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Empty(t, terms)
	})
}

func TestDebouncer(t *testing.T) {
	t.Run("burst collapses to the last trigger", func(t *testing.T) {
		debouncer := NewDebouncer(20 * time.Millisecond)
		defer debouncer.Stop()

		var mu sync.Mutex
		fired := make([]string, 0)
		record := func(term string) func() {
			return func() {
				mu.Lock()
				fired = append(fired, term)
				mu.Unlock()
			}
		}

		debouncer.Trigger(record("m"))
		debouncer.Trigger(record("mi"))
		debouncer.Trigger(record("mira"))

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(fired) == 1 && fired[0] == "mira"
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("stop cancels the pending callback", func(t *testing.T) {
		debouncer := NewDebouncer(10 * time.Millisecond)

		var mu sync.Mutex
		count := 0
		debouncer.Trigger(func() {
			mu.Lock()
			count++
			mu.Unlock()
		})
		debouncer.Stop()

		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		assert.Zero(t, count)
	})
}
