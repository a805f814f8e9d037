package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConvertErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: domain.ErrRecordNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", pgx.ErrNoRows), want: domain.ErrRecordNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: uniqueViolationCode}, want: domain.ErrDuplicateKey},
		{name: "lock timeout", err: &pgconn.PgError{Code: lockNotAvailableCode}, want: domain.ErrConflict},
		{name: "deadlock", err: &pgconn.PgError{Code: deadlockDetectedCode}, want: domain.ErrConflict},
		{name: "serialization", err: &pgconn.PgError{Code: serializationFailureCode}, want: domain.ErrConflict},
		{name: "query canceled", err: &pgconn.PgError{Code: queryCanceledCode}, want: domain.ErrConflict},
		{
			name: "context deadline",
			err:  fmt.Errorf("timeout: %w", context.DeadlineExceeded),
			want: domain.ErrConflict,
		},
		{name: "context canceled", err: context.Canceled, want: domain.ErrUnknown},
		{name: "check violation", err: &pgconn.PgError{Code: "23514"}, want: domain.ErrUnknown},
		{name: "plain error", err: errors.New("boom"), want: domain.ErrUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := convertErr(tc.err, "testing %s", tc.name)
			assert.ErrorIs(t, got, tc.want)
			assert.Contains(t, got.Error(), "[repository/testing "+tc.name+"]")
		})
	}

	assert.NoError(t, convertErr(nil, "nil"))
}
