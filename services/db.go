package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"basketball-tournament-api/apperrors"
)

// translateDB maps gorm errors onto the service taxonomy. Duplicated-key
// errors pass through untouched so each call site can decide what the
// violated constraint means (gorm.Config{TranslateError: true} must be set
// on the connection for them to surface at all).
func translateDB(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return err
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
}
