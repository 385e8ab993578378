package model

import "time"

// Student is the authenticated student identity returned by the platform.
type Student struct {
	ID        string    `json:"id"`
	MatricNo  string    `json:"matricNo"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version"`
}

// StudentLoginRequest is the payload for a student login.
type StudentLoginRequest struct {
	MatricNo string `json:"matricNo" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}
