package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "hotel/internal/errors"
)

// translate maps a persistence failure onto the domain error taxonomy.
// Errors that already carry a kind pass through unchanged.
func translate(err error, op string, notFound, conflict *apperrors.Error) error {
	var domainErr *apperrors.Error
	switch {
	case errors.As(err, &domainErr):
		return domainErr
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey) && conflict != nil:
		return conflict
	default:
		return apperrors.Internal(fmt.Errorf("%s: %w", op, err))
	}
}
