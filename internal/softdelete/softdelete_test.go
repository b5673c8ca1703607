package softdelete_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"peopledesk/internal/softdelete"
	"peopledesk/pkg/apperr"
)

// note is a minimal soft-deletable model for exercising the repository.
type note struct {
	ID     uint   `gorm:"primaryKey"`
	Title  string `gorm:"type:varchar(100)"`
	Status string `gorm:"type:varchar(20);default:'Open'"`

	softdelete.Fields
}

func setupRepo(t *testing.T) *softdelete.Repository[note] {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&note{}))
	return softdelete.NewRepository[note](db, softdelete.Config{})
}

func seedNotes(t *testing.T, repo *softdelete.Repository[note], titles ...string) []note {
	ctx := context.Background()
	out := make([]note, 0, len(titles))
	for _, title := range titles {
		n := note{Title: title}
		require.NoError(t, repo.Create(ctx, &n))
		out = append(out, n)
	}
	return out
}

func TestWithActiveOnly(t *testing.T) {
	cfg := softdelete.Config{}

	augmented := cfg.WithActiveOnly(softdelete.Filter{"status": "Open"})
	assert.Equal(t, "Open", augmented["status"], "caller conditions must be preserved")
	assert.Equal(t, false, augmented["is_deleted"])

	// An explicit flag condition suppresses the injection entirely
	explicit := cfg.WithActiveOnly(softdelete.Filter{"is_deleted": true})
	assert.Equal(t, true, explicit["is_deleted"])

	// The input filter is never mutated
	original := softdelete.Filter{"status": "Open"}
	_ = cfg.WithActiveOnly(original)
	_, injected := original["is_deleted"]
	assert.False(t, injected)
}

func TestWithActiveOnlyCustomColumns(t *testing.T) {
	cfg := softdelete.Config{FlagColumn: "removed"}

	augmented := cfg.WithActiveOnly(softdelete.Filter{})
	assert.Equal(t, false, augmented["removed"])
	_, hasDefault := augmented["is_deleted"]
	assert.False(t, hasDefault)
}

func TestFindActiveExcludesDeleted(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	notes := seedNotes(t, repo, "one", "two", "three")

	n, err := repo.SoftDelete(ctx, "u1", softdelete.Filter{"id": notes[0].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	active, err := repo.FindActive(ctx, softdelete.Filter{})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	deleted, err := repo.FindDeleted(ctx, softdelete.Filter{})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, notes[0].ID, deleted[0].ID)
	require.NotNil(t, deleted[0].DeletedBy)
	assert.Equal(t, "u1", *deleted[0].DeletedBy)
	assert.NotNil(t, deleted[0].DeletedAt)
}

func TestExplicitFlagFilterSeesDeleted(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	notes := seedNotes(t, repo, "keep", "drop")

	_, err := repo.SoftDelete(ctx, "u1", softdelete.Filter{"id": notes[1].ID})
	require.NoError(t, err)

	// A caller-supplied flag condition wins over the injected exclusion
	found, err := repo.FindActive(ctx, softdelete.Filter{"is_deleted": true})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, notes[1].ID, found[0].ID)
}

func TestRestoreRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	notes := seedNotes(t, repo, "round-trip")

	_, err := repo.SoftDelete(ctx, "u1", softdelete.Filter{"id": notes[0].ID})
	require.NoError(t, err)

	require.NoError(t, repo.Restore(ctx, softdelete.Filter{"id": notes[0].ID}))

	restored, err := repo.FindOneActive(ctx, softdelete.Filter{"id": notes[0].ID})
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)
	assert.Nil(t, restored.DeletedBy)
}

func TestRestoreMissingRecord(t *testing.T) {
	repo := setupRepo(t)

	err := repo.Restore(context.Background(), softdelete.Filter{"id": 12345})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSoftDeleteIdempotent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	notes := seedNotes(t, repo, "twice")

	_, err := repo.SoftDelete(ctx, "u1", softdelete.Filter{"id": notes[0].ID})
	require.NoError(t, err)

	// Deleting again is not an error; it re-stamps the actor
	n, err := repo.SoftDelete(ctx, "u2", softdelete.Filter{"id": notes[0].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	deleted, err := repo.FindDeleted(ctx, softdelete.Filter{})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	require.NotNil(t, deleted[0].DeletedBy)
	assert.Equal(t, "u2", *deleted[0].DeletedBy)
}

func TestCounts(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	notes := seedNotes(t, repo, "a", "b", "c", "d")

	_, err := repo.SoftDelete(ctx, "u1", softdelete.Filter{"id": notes[0].ID})
	require.NoError(t, err)

	active, err := repo.CountActive(ctx, softdelete.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), active)

	deleted, err := repo.CountDeleted(ctx, softdelete.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestRestoreMany(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	seedNotes(t, repo, "a", "b", "c")

	n, err := repo.SoftDelete(ctx, "u1", softdelete.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	restored, err := repo.RestoreMany(ctx, softdelete.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), restored)

	active, err := repo.CountActive(ctx, softdelete.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), active)
}

func TestPurgeDeletedIsIrreversible(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	notes := seedNotes(t, repo, "keep", "purge")

	_, err := repo.SoftDelete(ctx, "u1", softdelete.Filter{"id": notes[1].ID})
	require.NoError(t, err)

	n, err := repo.PurgeDeleted(ctx, softdelete.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Neither read path sees the purged record again
	active, err := repo.FindActive(ctx, softdelete.Filter{"id": notes[1].ID})
	require.NoError(t, err)
	assert.Empty(t, active)

	deleted, err := repo.FindDeleted(ctx, softdelete.Filter{"id": notes[1].ID})
	require.NoError(t, err)
	assert.Empty(t, deleted)

	// Active records are never touched by a purge
	remaining, err := repo.CountActive(ctx, softdelete.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)
}

func TestHardDeleteRequiresFilter(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.HardDelete(context.Background(), softdelete.Filter{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestScopeActiveInAggregates(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	notes := seedNotes(t, repo, "a", "b", "c")

	_, err := repo.SoftDelete(ctx, "u1", softdelete.Filter{"id": notes[2].ID})
	require.NoError(t, err)

	// Caller-built aggregate with the active scope applied up front
	var count int64
	err = repo.DB().WithContext(ctx).Model(&note{}).
		Scopes(repo.ScopeActive(softdelete.Filter{})).
		Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
