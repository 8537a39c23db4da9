package model

// CreateTeamRequest is the payload for creating a team.
type CreateTeamRequest struct {
	Name string `json:"name"`
}

// InviteRequest is the payload for inviting a member by mobile number.
type InviteRequest struct {
	Mobile string `json:"mobile"`
}

// InvitationResponseRequest is the payload for accepting or declining an invite.
type InvitationResponseRequest struct {
	Status InvitationStatus `json:"status"`
}

// InviteResult reports the outcome of a single invitation in a batch.
// A failed invite does not roll back the team or other invitations.
type InviteResult struct {
	Mobile string
	Err    error
}
