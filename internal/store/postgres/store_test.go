package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsSerializationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"wrapped", fmt.Errorf("advance: %w", &pgconn.PgError{Code: "40001"}), true},
		{"deadlock is not retried", &pgconn.PgError{Code: "40P01"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tc := range tests {
		if got := isSerializationError(tc.err); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestRetryBackoff(t *testing.T) {
	want := []time.Duration{150, 300, 600, 1200, 1200}
	d := firstRetry
	for i, w := range want {
		d = nextDelay(d)
		if d != w*time.Millisecond {
			t.Fatalf("step %d: delay %v want %v", i, d, w*time.Millisecond)
		}
	}
}

func TestSleepWithContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepWithContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
