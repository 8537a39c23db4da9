package model

// CreateParticipantRequest is the payload for registering a new participant.
type CreateParticipantRequest struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Email  string `json:"email,omitempty"`
}

// UpdateProfileRequest is the payload for updating profile fields.
// Identity fields (id, mobile) are immutable after creation.
type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
