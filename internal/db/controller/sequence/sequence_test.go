package sequence

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Sequence{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestNext(t *testing.T) {
	db := setupTestDB(t)

	t.Run("nil database", func(t *testing.T) {
		_, err := Next(nil, "psr")
		assert.ErrorIs(t, err, ErrDBNil)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := Next(db, "")
		assert.ErrorIs(t, err, ErrSequenceNameEmpty)
	})

	t.Run("first allocation bootstraps at one", func(t *testing.T) {
		value, err := Next(db, "psr")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), value)
	})

	t.Run("subsequent allocations increment", func(t *testing.T) {
		for _, expected := range []uint64{2, 3, 4} {
			value, err := Next(db, "psr")
			require.NoError(t, err)
			assert.Equal(t, expected, value)
		}
	})

	t.Run("counters are independent per name", func(t *testing.T) {
		value, err := Next(db, "invoice")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), value)

		value, err = Next(db, "psr")
		require.NoError(t, err)
		assert.Equal(t, uint64(5), value)
	})
}

func TestCurrent(t *testing.T) {
	db := setupTestDB(t)

	t.Run("unused counter reports zero", func(t *testing.T) {
		value, err := Current(db, "psr")
		require.NoError(t, err)
		assert.Zero(t, value)
	})

	t.Run("reports last allocated value without advancing", func(t *testing.T) {
		_, err := Next(db, "psr")
		require.NoError(t, err)
		_, err = Next(db, "psr")
		require.NoError(t, err)

		value, err := Current(db, "psr")
		require.NoError(t, err)
		assert.Equal(t, uint64(2), value)

		again, err := Current(db, "psr")
		require.NoError(t, err)
		assert.Equal(t, value, again)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := Current(db, "")
		assert.ErrorIs(t, err, ErrSequenceNameEmpty)
	})
}
