package model

import (
	"fmt"
	"time"
)

// AssignmentKind tells which group an exam is assigned to.
type AssignmentKind string

const (
	AssignmentKindClass AssignmentKind = "class"
	AssignmentKindRoom  AssignmentKind = "room"
)

// Valid reports whether k is a known assignment kind.
func (k AssignmentKind) Valid() bool {
	return k == AssignmentKindClass || k == AssignmentKindRoom
}

// AssignmentRef identifies an exam assigned to a class or a room.
type AssignmentRef struct {
	Kind    AssignmentKind `json:"kind"`
	OwnerID int            `json:"owner_id"`
	ExamID  int            `json:"exam_id"`
}

func (r AssignmentRef) String() string {
	return fmt.Sprintf("%s:%d:exam:%d", r.Kind, r.OwnerID, r.ExamID)
}

// Assignment is a class-exam or room-exam link with its time window.
type Assignment struct {
	ID        int            `json:"id"`
	Kind      AssignmentKind `json:"kind"`
	OwnerID   int            `json:"owner_id"`
	ExamID    int            `json:"exam_id"`
	StartAt   time.Time      `json:"start_at"`
	EndAt     time.Time      `json:"end_at"`
	CreatedAt time.Time      `json:"created_at"`
}

// Ref returns the reference used to look this assignment up.
func (a Assignment) Ref() AssignmentRef {
	return AssignmentRef{Kind: a.Kind, OwnerID: a.OwnerID, ExamID: a.ExamID}
}

// CreateAssignmentRequest is the payload for assigning an exam to a class or room.
type CreateAssignmentRequest struct {
	ExamID  int       `json:"exam_id" binding:"required,min=1"`
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required,gtfield=StartAt"`
}
