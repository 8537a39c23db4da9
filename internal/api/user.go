package api

import (
	"context"
	"net/http"
	"net/url"

	userModel "github.com/technovus/client-go/internal/user/model"
)

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context, token string) (*userModel.User, error) {
	var out userModel.User
	if err := c.do(ctx, http.MethodGet, "/user", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupByMobile checks whether an account exists for the given mobile.
// A missing account is reported as a KindUserNotFound error.
func (c *Client) LookupByMobile(ctx context.Context, token, mobile string) (*userModel.User, error) {
	path := "/user?mobile=" + url.QueryEscape(mobile)
	var out userModel.User
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, promoteUserNotFound(err)
	}
	return &out, nil
}

// CreateParticipant completes or creates a participant profile.
func (c *Client) CreateParticipant(ctx context.Context, token string, req *userModel.CreateParticipantRequest) (*userModel.User, error) {
	var out userModel.User
	if err := c.do(ctx, http.MethodPost, "/user/participant", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile updates mutable profile fields of the current user.
func (c *Client) UpdateProfile(ctx context.Context, token string, req *userModel.UpdateProfileRequest) (*userModel.User, error) {
	var out userModel.User
	if err := c.do(ctx, http.MethodPatch, "/user/", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
