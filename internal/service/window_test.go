package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stemsi/exstem-quiz/internal/model"
)

func TestAssertWithinWindow(t *testing.T) {
	start := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	a := model.Assignment{StartAt: start, EndAt: start.Add(90 * time.Minute)}

	tests := []struct {
		name string
		now  time.Time
		want error
	}{
		{"before", start.Add(-time.Second), ErrNotYetOpen},
		{"at start", start, nil},
		{"inside", start.Add(time.Hour), nil},
		{"at end", a.EndAt, nil},
		{"after", a.EndAt.Add(time.Millisecond), ErrClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := AssertWithinWindow(a, tt.now); !errors.Is(err, tt.want) {
				t.Errorf("AssertWithinWindow() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{ErrClosed, KindWindow},
		{fmt.Errorf("start: %w", ErrAlreadyAttempted), KindConflict},
		{fmt.Errorf("%w: 7", ErrDuplicateQuestion), KindValidation},
		{ErrAttemptNotFound, KindNotFound},
		{errors.New("connection reset"), KindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
