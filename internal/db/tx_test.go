package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestRunInTxRejectsNesting(t *testing.T) {
	// The nesting guard fires before any pool access, so a nil pool is
	// enough to exercise it.
	ctx := context.WithValue(context.Background(), txKey{}, struct{}{})

	err := RunInTx(ctx, nil, func(ctx context.Context, tx pgx.Tx) error {
		t.Fatal("work must not run inside a nested transaction")
		return nil
	})

	if !errors.Is(err, ErrNestedTransaction) {
		t.Fatalf("got %v, want ErrNestedTransaction", err)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Errorf("%s: IsTransient = %v, want %v", tc.name, got, tc.want)
		}
	}
}
