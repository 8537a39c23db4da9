// Package auth implements the mobile-OTP login flow as a small state
// machine: MobileEntry -> OtpSent -> Verifying -> Authenticated.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/technovus/client-go/internal/api"
	"github.com/technovus/client-go/internal/config"
	"github.com/technovus/client-go/internal/session"
	userModel "github.com/technovus/client-go/internal/user/model"
	"github.com/technovus/client-go/internal/validate"
	"github.com/technovus/client-go/pkg/retry"
)

// State is a position in the login flow.
type State int

// Login flow states.
const (
	StateMobileEntry State = iota
	StateOtpSent
	StateVerifying
	StateAuthenticated
)

// String returns a short name for the state, used in logs.
func (s State) String() string {
	switch s {
	case StateOtpSent:
		return "otp_sent"
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "mobile_entry"
	}
}

const otpLength = 4

var (
	// ErrInvalidMobile indicates the mobile failed the 10-digit format rule.
	ErrInvalidMobile = errors.New("enter a valid 10 digit mobile number")
	// ErrInvalidOTP indicates the code is not exactly 4 digits.
	ErrInvalidOTP = errors.New("enter the 4 digit code")
	// ErrCooldownActive indicates a resend was attempted before the cooldown elapsed.
	ErrCooldownActive = errors.New("wait before requesting another code")
	// ErrNoOTPRequested indicates verification was attempted before any code was sent.
	ErrNoOTPRequested = errors.New("request a code first")
)

// Flow drives the OTP login sequence against the backend and hands the
// resulting credentials to the session store.
type Flow struct {
	api     *api.Client
	session *session.Store
	logger  *zap.SugaredLogger

	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	state    State
	mobile   string
	lastSent time.Time
}

// New creates a login flow.
func New(apiClient *api.Client, store *session.Store, cfg config.AuthConfig, logger *zap.SugaredLogger) *Flow {
	return &Flow{
		api:      apiClient,
		session:  store,
		logger:   logger,
		cooldown: cfg.ResendCooldown,
		now:      time.Now,
		state:    StateMobileEntry,
	}
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CooldownRemaining returns how long until another OTP may be requested.
// Zero means a resend is allowed now.
func (f *Flow) CooldownRemaining() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cooldownRemainingLocked()
}

func (f *Flow) cooldownRemainingLocked() time.Duration {
	if f.lastSent.IsZero() {
		return 0
	}
	remaining := f.cooldown - f.now().Sub(f.lastSent)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RequestOTP validates the mobile locally and asks the backend to send a
// code. A malformed mobile never reaches the network. A resend while the
// cooldown is running is rejected client-side with no request sent.
func (f *Flow) RequestOTP(ctx context.Context, mobile string) error {
	normalized := validate.Normalize(mobile)
	if !validate.ValidFormat(normalized) {
		return ErrInvalidMobile
	}

	f.mu.Lock()
	if f.mobile == normalized && f.cooldownRemainingLocked() > 0 {
		f.mu.Unlock()
		return ErrCooldownActive
	}
	f.mu.Unlock()

	if err := f.api.SendMobileOTP(ctx, normalized); err != nil {
		return fmt.Errorf("failed to send OTP: %w", err)
	}

	f.mu.Lock()
	f.mobile = normalized
	f.lastSent = f.now()
	f.state = StateOtpSent
	f.mu.Unlock()

	f.logger.Infow("OTP sent", "mobile", normalized)
	return nil
}

// VerifyOTP submits the code. On success the refresh token is persisted,
// immediately exchanged for an access token, and the profile is fetched so
// the derived role can be stored; the flow then reaches Authenticated. On a
// server rejection the flow stays in Verifying and the server's message is
// surfaced to the caller.
func (f *Flow) VerifyOTP(ctx context.Context, code string) (*userModel.User, error) {
	if !validOTP(code) {
		return nil, ErrInvalidOTP
	}

	f.mu.Lock()
	if f.state == StateMobileEntry {
		f.mu.Unlock()
		return nil, ErrNoOTPRequested
	}
	mobile := f.mobile
	f.state = StateVerifying
	f.mu.Unlock()

	refreshToken, err := f.api.AuthMobile(ctx, mobile, code)
	if err != nil {
		return nil, err
	}

	accessToken, err := f.api.AccessToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	if err := f.session.SetTokens(accessToken, refreshToken); err != nil {
		return nil, err
	}

	// The backend occasionally lags right after a fresh login; retry the
	// profile fetch on transient failures only.
	user, err := retry.DoWithResult(ctx, retry.HTTPConfig(), func() (*userModel.User, error) {
		return f.api.CurrentUser(ctx, accessToken)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	if err := f.session.SetRole(string(user.Role)); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.state = StateAuthenticated
	f.mu.Unlock()

	f.logger.Infow("login complete", "user", user.ID, "role", user.Role)
	return user, nil
}

// Reset returns the flow to MobileEntry, e.g. after logout.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateMobileEntry
	f.mobile = ""
	f.lastSent = time.Time{}
}

func validOTP(code string) bool {
	if len(code) != otpLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
