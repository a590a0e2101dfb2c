package models

// Sequence is a named monotonic counter.
// Request id allocation increments it inside the creating transaction so
// two concurrent creations can never observe the same value.
type Sequence struct {
	// Name identifies the counter, e.g. "psr".
	Name string `gorm:"primaryKey;size:64"`
	// Value is the last allocated number.
	Value uint64 `gorm:"not null;default:0"`
}

// TableName specifies the database table name for the Sequence model.
func (Sequence) TableName() string {
	return "sequences"
}
