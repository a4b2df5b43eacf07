package schedule

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestParse_Valid(t *testing.T) {
	for _, expr := range []string{"*/5 * * * *", "0 2 * * *", "15 */6 * * 1-5"} {
		if _, err := Parse(expr); err != nil {
			t.Errorf("expected %q to parse, got %v", expr, err)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"", "required"},
		{"* * *", "invalid"},
		{"61 * * * *", "invalid"},
		{"CRON_TZ=UTC * * * * *", "UTC-only"},
		{"TZ=America/New_York 0 2 * * *", "UTC-only"},
	}
	for _, tc := range cases {
		_, err := Parse(tc.expr)
		if err == nil {
			t.Errorf("expected %q to be rejected", tc.expr)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("expected %q error to mention %q, got %v", tc.expr, tc.want, err)
		}
	}
}

func TestNext(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 3, 0, 0, time.UTC)
	next, err := Next("*/5 * * * *", now)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	want := time.Date(2024, 6, 1, 10, 5, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %s, got %s", want, next)
	}
}

func TestRunner_StopsOnCancel(t *testing.T) {
	runner, err := NewRunner("0 0 1 1 *", nil, func(context.Context) {
		t.Error("job must not fire before its scheduled time")
	})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := runner.Run(ctx); err != context.DeadlineExceeded {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}
