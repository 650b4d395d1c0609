package repository

import (
	"database/sql/driver"
	"errors"

	"github.com/go-sql-driver/mysql"
)

func isTransient(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn)
}

// readWithRetry runs an idempotent read, retrying once if the connection
// broke underneath it. Writes must not go through here.
func readWithRetry(fn func() error) error {
	err := fn()
	if err != nil && isTransient(err) {
		err = fn()
	}
	return err
}
