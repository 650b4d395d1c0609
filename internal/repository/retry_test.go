package repository

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestReadWithRetry(t *testing.T) {
	tests := []struct {
		name  string
		errs  []error
		calls int
		fails bool
	}{
		{"success", []error{nil}, 1, false},
		{"bad conn then success", []error{driver.ErrBadConn, nil}, 2, false},
		{"wrapped invalid conn then success", []error{fmt.Errorf("query: %w", mysql.ErrInvalidConn), nil}, 2, false},
		{"bad conn twice", []error{driver.ErrBadConn, driver.ErrBadConn}, 2, true},
		{"other errors are not retried", []error{errors.New("syntax error")}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := readWithRetry(func() error {
				err := tt.errs[calls]
				calls++
				return err
			})
			assert.Equal(t, tt.calls, calls)
			assert.Equal(t, tt.fails, err != nil)
		})
	}
}
