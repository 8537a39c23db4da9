package api

import (
	"context"
	"net/http"

	registrationModel "github.com/technovus/client-go/internal/registration/model"
)

// RegisterForEvent registers a team (or a solo user when teamID is empty)
// for an event.
func (c *Client) RegisterForEvent(ctx context.Context, token, eventID, teamID string) error {
	req := registrationModel.RegisterRequest{EventID: eventID, TeamID: teamID}
	return c.do(ctx, http.MethodPost, "/registration", token, req, nil)
}

// UserRegistrations lists the current user's registrations.
func (c *Client) UserRegistrations(ctx context.Context, token string) ([]registrationModel.Registration, error) {
	var out []registrationModel.Registration
	if err := c.do(ctx, http.MethodGet, "/registration/user", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
