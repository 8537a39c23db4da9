// Package model provides domain models for event registrations.
package model

import "time"

// Registration links a team (or a solo user) to an event.
// Created server-side; the client never mutates a registration directly.
type Registration struct {
	ID           string    `json:"id"`
	EventID      string    `json:"eventId"`
	TeamID       string    `json:"teamId,omitempty"`
	UserID       string    `json:"userId,omitempty"`
	RegisteredOn time.Time `json:"registeredOn"`
}

// RegisterRequest is the payload for registering a team or user for an event.
type RegisterRequest struct {
	EventID string `json:"eventId"`
	TeamID  string `json:"teamId,omitempty"`
}
