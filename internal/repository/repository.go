package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a row lock to the query. SQLite has no FOR UPDATE and serialises writers anyway.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// deleteByID removes the row with id and reports gorm.ErrRecordNotFound when nothing matched.
func deleteByID(tx *gorm.DB, value interface{}, id uint) error {
	result := tx.Delete(value, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
