package gormrepo

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"merry/internal/domain/apperr"
)

// notFound maps gorm's miss to the domain sentinel.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what, id)
	}
	return err
}

// forUpdate adds SELECT ... FOR UPDATE. The sqlite dialect drops the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
