package model

import "errors"

var (
	// ErrBlankTeamName indicates that the team name is empty.
	ErrBlankTeamName = errors.New("team name is required")
	// ErrBelowMinSize indicates the prospective team does not reach the event minimum.
	ErrBelowMinSize = errors.New("not enough members for this event")
	// ErrExceedsMaxSize indicates the prospective team exceeds the event maximum.
	ErrExceedsMaxSize = errors.New("team exceeds the maximum size for this event")
	// ErrTeamFull indicates that no invitation slot remains on an existing team.
	ErrTeamFull = errors.New("team is already at maximum size")
	// ErrCandidatesInvalid indicates one or more candidate mobiles failed validation.
	ErrCandidatesInvalid = errors.New("one or more mobile numbers are invalid")
	// ErrOperationInFlight indicates a registration or invite is already outstanding.
	ErrOperationInFlight = errors.New("another request is still in progress")
)
