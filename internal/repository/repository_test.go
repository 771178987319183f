package repository

import (
	"testing"

	"github.com/dyluth/errand/pkg/entity"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEntities() []entity.Entity {
	return []entity.Entity{
		{ID: "P001", Name: "Cafe Central", Category: "refreshment-point", Status: entity.StatusActive},
		{ID: "P002", Name: "Kiosk Nord", Category: "refreshment-point", Status: entity.StatusActive},
		{ID: "R100", Name: "Registration M. Rossi", Category: "registration", Status: entity.StatusPending},
	}
}

// setupTestRepository creates a repository holding the standard seed set
func setupTestRepository(t *testing.T) *Repository {
	repo, err := New(seedEntities()...)
	require.NoError(t, err)
	return repo
}

func ignoreTimestamps() cmp.Option {
	return cmpopts.IgnoreFields(entity.Entity{}, "CreatedAtMs", "UpdatedAtMs")
}

func TestNew(t *testing.T) {
	t.Run("seeds entities in order", func(t *testing.T) {
		repo := setupTestRepository(t)
		assert.Equal(t, 3, repo.Len())

		if diff := cmp.Diff(seedEntities(), repo.List(), ignoreTimestamps()); diff != "" {
			t.Errorf("List() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty repository", func(t *testing.T) {
		repo, err := New()
		require.NoError(t, err)
		assert.Equal(t, 0, repo.Len())
		assert.NotNil(t, repo.List())
		assert.Empty(t, repo.List())
	})

	t.Run("rejects duplicate seed ids", func(t *testing.T) {
		seed := seedEntities()
		seed = append(seed, entity.Entity{ID: "P001", Name: "Duplicate"})

		_, err := New(seed...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate seed entity id "P001"`)
	})

	t.Run("rejects blank seed ids", func(t *testing.T) {
		_, err := New(entity.Entity{Name: "No id"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no id")
	})
}

func TestFindByID(t *testing.T) {
	repo := setupTestRepository(t)

	t.Run("finds existing entity", func(t *testing.T) {
		e, ok := repo.FindByID("P001")
		require.True(t, ok)
		assert.Equal(t, "Cafe Central", e.Name)
		assert.NotZero(t, e.CreatedAtMs)
	})

	t.Run("reports absence with false", func(t *testing.T) {
		e, ok := repo.FindByID("P999")
		assert.False(t, ok)
		assert.Equal(t, entity.Entity{}, e)
	})

	t.Run("blank id is absent", func(t *testing.T) {
		_, ok := repo.FindByID("")
		assert.False(t, ok)
	})

	t.Run("returned entity is a copy", func(t *testing.T) {
		e, _ := repo.FindByID("P001")
		e.Name = "Mutated"

		again, _ := repo.FindByID("P001")
		assert.Equal(t, "Cafe Central", again.Name)
	})
}

func TestList_DefensiveCopy(t *testing.T) {
	repo := setupTestRepository(t)

	list := repo.List()
	list[0].Name = "Mutated"
	_ = append(list[:1], list[2:]...)

	assert.Equal(t, 3, repo.Len())
	e, _ := repo.FindByID("P001")
	assert.Equal(t, "Cafe Central", e.Name)
}

func TestAdd(t *testing.T) {
	repo := setupTestRepository(t)

	t.Run("adds new entity at the end", func(t *testing.T) {
		ok := repo.Add(entity.Entity{ID: "B001", Name: "Spring banner", Status: entity.StatusActive})
		require.True(t, ok)

		list := repo.List()
		assert.Len(t, list, 4)
		assert.Equal(t, "B001", list[3].ID)
		assert.NotZero(t, list[3].CreatedAtMs)
	})

	t.Run("keeps caller supplied created timestamp", func(t *testing.T) {
		ok := repo.Add(entity.Entity{ID: "B002", Name: "Autumn banner", CreatedAtMs: 1234})
		require.True(t, ok)

		e, _ := repo.FindByID("B002")
		assert.Equal(t, int64(1234), e.CreatedAtMs)
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		before := repo.List()
		ok := repo.Add(entity.Entity{ID: "P001", Name: "Other"})
		assert.False(t, ok)
		assert.Equal(t, before, repo.List())
	})

	t.Run("rejects blank id", func(t *testing.T) {
		assert.False(t, repo.Add(entity.Entity{Name: "No id"}))
	})
}

func TestUpdate(t *testing.T) {
	t.Run("applies patch and keeps position", func(t *testing.T) {
		repo := setupTestRepository(t)

		ok := repo.Update("P001", entity.Patch{Name: entity.StringPtr("Cafe Centrale")})
		require.True(t, ok)

		list := repo.List()
		assert.Equal(t, "P001", list[0].ID)
		assert.Equal(t, "Cafe Centrale", list[0].Name)
		assert.Equal(t, "refreshment-point", list[0].Category)
		assert.NotZero(t, list[0].UpdatedAtMs)
	})

	t.Run("status transition", func(t *testing.T) {
		repo := setupTestRepository(t)

		require.True(t, repo.Update("R100", entity.StatusPatch(entity.StatusRejected)))
		e, _ := repo.FindByID("R100")
		assert.Equal(t, entity.StatusRejected, e.Status)
	})

	t.Run("absent id leaves repository unchanged", func(t *testing.T) {
		repo := setupTestRepository(t)
		before := repo.List()

		ok := repo.Update("P999", entity.Patch{Name: entity.StringPtr("Ghost")})
		assert.False(t, ok)
		assert.Equal(t, before, repo.List())
	})
}

func TestDelete(t *testing.T) {
	repo := setupTestRepository(t)

	assert.True(t, repo.Delete("P002"))
	assert.False(t, repo.Delete("P002"), "second delete must report absence")

	_, ok := repo.FindByID("P002")
	assert.False(t, ok)

	ids := []string{}
	for _, e := range repo.List() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"P001", "R100"}, ids)
}

func TestDelete_ThenReAdd(t *testing.T) {
	repo := setupTestRepository(t)

	require.True(t, repo.Delete("P001"))
	require.True(t, repo.Add(entity.Entity{ID: "P001", Name: "Cafe Central (reopened)"}))

	list := repo.List()
	assert.Equal(t, "P001", list[len(list)-1].ID, "re-added entity goes to the end")
}
