package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrConflict is returned when a write collides with an existing primary key:
// a second brand link for an organization, a duplicate ledger row or a reused
// auth attempt state.
var ErrConflict = errors.New("repository: conflict")

func translateError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}
