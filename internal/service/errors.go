package service

import (
	"errors"
	"fmt"

	"bakerlane-api/internal/apperr"

	"gorm.io/gorm"
)

// storeErr classifies a repository error. Missing rows become NotFound for
// what; everything else is wrapped as an internal failure of op.
func storeErr(err error, op, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
