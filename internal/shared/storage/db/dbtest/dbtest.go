// Package dbtest builds sqlmock databases for repository tests.
package dbtest

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// passthrough mirrors pgx's stdlib driver, which accepts slices and maps as
// query arguments without conversion.
type passthrough struct{}

func (passthrough) ConvertValue(v any) (driver.Value, error) {
	if valuer, ok := v.(driver.Valuer); ok {
		return valuer.Value()
	}
	return v, nil
}

// NewMock returns a sqlmock-backed *sql.DB that is closed when t ends and
// verifies all expectations were met.
func NewMock(t testing.TB) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passthrough{}))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		_ = conn.Close()
	})
	return conn, mock
}
