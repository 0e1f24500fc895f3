package model

import "time"

// Class is a teacher-owned group of students joined by code.
type Class struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	OwnerID   int       `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Room is an exam room students join by code.
type Room struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	OwnerID   int       `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateGroupRequest is the payload for creating a class or a room.
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}
