// Package model provides domain models and DTOs for the team module.
package model

import "time"

// InvitationStatus tracks whether an invited member has joined a team.
type InvitationStatus string

// Invitation lifecycle states. A member is created as pending when the
// invite is sent and transitions to accepted or declined by the invitee.
// Members are never hard-deleted, only status-transitioned.
const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Team represents a team as returned by the backend.
type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedBy string `json:"createdBy"`
}

// TeamMember relates a team to a user with its invitation state.
type TeamMember struct {
	ID          string           `json:"id"`
	TeamID      string           `json:"teamId"`
	UserID      string           `json:"userId"`
	Name        string           `json:"name"`
	Mobile      string           `json:"mobile"`
	Status      InvitationStatus `json:"invitationStatus"`
	InvitedOn   time.Time        `json:"invitedOn"`
	RespondedOn *time.Time       `json:"respondedOn,omitempty"`
}

// ActiveSize counts members occupying a team slot. Pending members hold a
// slot; declined members are excluded from every size computation.
func ActiveSize(members []TeamMember) int {
	count := 0
	for _, m := range members {
		if m.Status != InvitationDeclined {
			count++
		}
	}
	return count
}

// AcceptedSize counts members who have accepted their invitation.
func AcceptedSize(members []TeamMember) int {
	count := 0
	for _, m := range members {
		if m.Status == InvitationAccepted {
			count++
		}
	}
	return count
}
