package database

import "gorm.io/gorm"

// Changes collects the columns an update actually modifies.
type Changes map[string]any

// Set records next for column when it differs from current.
func Set[T comparable](c Changes, column string, current, next T) {
	if current != next {
		c[column] = next
	}
}

// SetOptional records next for column when it is provided and differs from
// current. A nil next leaves the column alone.
func SetOptional[T comparable](c Changes, column string, current, next *T) {
	if next == nil {
		return
	}
	if current == nil || *current != *next {
		c[column] = *next
	}
}

// Apply writes the collected changes to record in a nested transaction and
// reports whether anything was written.
func (c Changes) Apply(tx *gorm.DB, record any) (bool, error) {
	if len(c) == 0 {
		return false, nil
	}
	err := tx.Transaction(func(tx *gorm.DB) error {
		return tx.Model(record).Updates(map[string]any(c)).Error
	})
	if err != nil {
		return false, TranslateError(err)
	}
	return true, nil
}
