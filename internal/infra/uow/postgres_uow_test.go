//go:build unit

package uow

import (
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		attempt int
		want    bool
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, attempt: 0, want: true},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, attempt: 1, want: true},
		{name: "wrapped serialization failure", err: fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), attempt: 0, want: true},
		{name: "retries exhausted", err: &pgconn.PgError{Code: "40001"}, attempt: 3, want: false},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, attempt: 0, want: false},
		{name: "plain error", err: assert.AnError, attempt: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRetry(tt.err, tt.attempt, 3))
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 10 * time.Millisecond
	for attempt := range 4 {
		want := time.Duration(1<<attempt) * base
		for range 20 {
			got := calculateBackoff(attempt, base)
			assert.GreaterOrEqual(t, got, want)
			assert.Less(t, got, want+want/5+time.Nanosecond)
		}
	}
}
