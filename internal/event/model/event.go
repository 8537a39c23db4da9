// Package model provides domain models for the event catalogue.
package model

// Event represents a symposium event as returned by the backend.
// Read-only from the client's perspective.
type Event struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Venue       string `json:"venue,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
	TeamMinSize int    `json:"teamMinSize"`
	TeamMaxSize int    `json:"teamMaxSize"`
}

// IsTeamEvent reports whether the event requires a team rather than a solo entry.
func (e Event) IsTeamEvent() bool {
	return e.TeamMinSize > 1
}
