package service

import (
	"time"

	"github.com/stemsi/exstem-quiz/internal/model"
)

// AssertWithinWindow fails when now lies outside the assignment's window.
// Both bounds are inclusive.
func AssertWithinWindow(a model.Assignment, now time.Time) error {
	if now.Before(a.StartAt) {
		return ErrNotYetOpen
	}
	if now.After(a.EndAt) {
		return ErrClosed
	}
	return nil
}
