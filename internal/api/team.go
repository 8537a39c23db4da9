package api

import (
	"context"
	"net/http"

	teamModel "github.com/technovus/client-go/internal/team/model"
)

// CreateTeam creates a new team owned by the current user.
func (c *Client) CreateTeam(ctx context.Context, token, name string) (*teamModel.Team, error) {
	req := teamModel.CreateTeamRequest{Name: name}
	var out teamModel.Team
	if err := c.do(ctx, http.MethodPost, "/teams/create-team", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Invite sends a team invitation to the user behind the given mobile.
func (c *Client) Invite(ctx context.Context, token, teamID, mobile string) error {
	req := teamModel.InviteRequest{Mobile: mobile}
	return c.do(ctx, http.MethodPost, "/teams/"+teamID+"/invite", token, req, nil)
}

// TeamMembers lists a team's members with their invitation status.
func (c *Client) TeamMembers(ctx context.Context, token, teamID string) ([]teamModel.TeamMember, error) {
	var out []teamModel.TeamMember
	if err := c.do(ctx, http.MethodGet, "/teams/"+teamID+"/members", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserTeams lists the teams the current user belongs to.
func (c *Client) UserTeams(ctx context.Context, token string) ([]teamModel.Team, error) {
	var out []teamModel.Team
	if err := c.do(ctx, http.MethodGet, "/teams/user-teams", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RespondInvitation accepts or declines the current user's invitation.
func (c *Client) RespondInvitation(ctx context.Context, token, teamID string, status teamModel.InvitationStatus) error {
	req := teamModel.InvitationResponseRequest{Status: status}
	return c.do(ctx, http.MethodPatch, "/teams/"+teamID+"/invitation", token, req, nil)
}
