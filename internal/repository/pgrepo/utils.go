package pgrepo

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

// errNoRowsAffected UPDATE не затронул ни одной строки, для convertErr это то же что и pgx.ErrNoRows.
var errNoRowsAffected = fmt.Errorf("no rows affected: %w", pgx.ErrNoRows)

type rowScanner interface {
	Scan(dest ...any) error
}

// collect читает все строки rows через scan и закрывает rows.
func collect[T any](rows pgx.Rows, scan func(rowScanner) (*T, error)) ([]T, error) {
	defer rows.Close()
	var res []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return res, nil
}
