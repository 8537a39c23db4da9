package api

import (
	"context"
	"net/http"
)

// SendMobileOTP requests a one-time code for the given mobile number.
func (c *Client) SendMobileOTP(ctx context.Context, mobile string) error {
	body := map[string]string{"mobile": mobile}
	return c.do(ctx, http.MethodPost, "/auth/sendMobileOTP", "", body, nil)
}

// AuthMobile verifies an OTP and returns the long-lived refresh token.
func (c *Client) AuthMobile(ctx context.Context, mobile, otp string) (string, error) {
	body := map[string]string{"mobile": mobile, "otp": otp}
	var out struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/authMobile", "", body, &out); err != nil {
		return "", err
	}
	return out.RefreshToken, nil
}

// AccessToken exchanges a refresh token for a short-lived access token.
// The refresh token itself goes in the bearer header.
func (c *Client) AccessToken(ctx context.Context, refreshToken string) (string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/accessToken", refreshToken, nil, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Logout invalidates the session server-side.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodDelete, "/auth/logout", accessToken, nil, nil)
}
