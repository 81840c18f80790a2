package db

import (
	"database/sql"
	"sync"

	"github.com/jackc/pgx/v5/pgtype"
)

// pgtype.Map memoizes plans without locking, so each scan borrows its own.
var typeMaps = sync.Pool{New: func() any { return pgtype.NewMap() }}

type textArray struct {
	dst *[]string
}

// TextArray scans a Postgres text[] column into dst. NULL yields an empty slice.
func TextArray(dst *[]string) sql.Scanner {
	return textArray{dst: dst}
}

func (a textArray) Scan(src any) error {
	if src == nil {
		*a.dst = []string{}
		return nil
	}
	m := typeMaps.Get().(*pgtype.Map)
	defer typeMaps.Put(m)
	if err := m.SQLScanner(a.dst).Scan(src); err != nil {
		return err
	}
	if *a.dst == nil {
		*a.dst = []string{}
	}
	return nil
}
