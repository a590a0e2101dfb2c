// Package sequence provides atomic allocation of named counters.
package sequence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/db/models"
)

const nameQueryPattern = "name = ?"

var (
	// ErrSequenceNameEmpty is returned when allocating from an unnamed counter.
	ErrSequenceNameEmpty = errors.New("sequence name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Next allocates the next value of the named counter.
//
// The counter is advanced with a single relative UPDATE, so concurrent
// allocations serialize on the row and can never observe the same value.
// Callers pass their transaction handle to make the allocation commit or
// roll back together with their own writes.
func Next(db *gorm.DB, name string) (uint64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	if name == "" {
		return 0, ErrSequenceNameEmpty
	}

	result := db.Model(&models.Sequence{}).
		Where(nameQueryPattern, name).
		Update("value", gorm.Expr("value + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		// first allocation bootstraps the counter row
		seq := models.Sequence{Name: name, Value: 1}
		if err := db.Create(&seq).Error; err != nil {
			return 0, err
		}

		return seq.Value, nil
	}

	// the UPDATE above holds the row lock, so this read is stable
	var seq models.Sequence
	if err := db.Where(nameQueryPattern, name).First(&seq).Error; err != nil {
		return 0, err
	}

	return seq.Value, nil
}

// Current returns the last allocated value of the named counter without
// advancing it. A counter that was never used reports zero.
func Current(db *gorm.DB, name string) (uint64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	if name == "" {
		return 0, ErrSequenceNameEmpty
	}

	var seq models.Sequence
	if err := db.Where(nameQueryPattern, name).First(&seq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, err
	}

	return seq.Value, nil
}
