package repository

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"gorm.io/gorm"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
)

const maxAttempts = 3

// isTransient reports whether an error looks like a connection-level
// failure worth one more try, as opposed to a constraint or logic error.
func isTransient(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) || errors.Is(err, driver.ErrBadConn)
}

// withRetry runs fn up to maxAttempts times for transient store failures
// and reports Unavailable once attempts are exhausted.
func withRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
}

// translate maps store errors onto the domain taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}
	return err
}
