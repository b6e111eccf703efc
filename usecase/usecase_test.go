package usecase

import (
	"context"
	"time"

	"bioauth/database"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 123456000, time.UTC)

func fixedClock() time.Time { return fixedNow }

func ptr[T any](v T) *T { return &v }

// countRows reads a single COUNT(*) from store.
func countRows(ctx context.Context, store *database.Store, query string, args ...any) (int64, error) {
	var n int64
	err := store.Do(ctx, func(ctx context.Context, q database.DBTX) error {
		return q.QueryRowContext(ctx, query, args...).Scan(&n)
	})
	return n, err
}
