package stubserver_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/technovus/client-go/internal/api"
	"github.com/technovus/client-go/internal/auth"
	"github.com/technovus/client-go/internal/config"
	eventModel "github.com/technovus/client-go/internal/event/model"
	"github.com/technovus/client-go/internal/registration"
	"github.com/technovus/client-go/internal/session"
	"github.com/technovus/client-go/internal/stubserver"
	teamModel "github.com/technovus/client-go/internal/team/model"
	"github.com/technovus/client-go/internal/team/workflow"
	"github.com/technovus/client-go/internal/validate"
)

// client is one fully wired user of the backend, the way the CLI wires it.
type client struct {
	api       *api.Client
	session   *session.Store
	flow      *auth.Flow
	validator *validate.Validator
	engine    *workflow.Engine
	rec       *registration.Reconciler
}

func newClient(t *testing.T, baseURL string) *client {
	t.Helper()

	logger := zap.NewNop().Sugar()
	apiClient := api.New(config.APIConfig{
		BaseURL:   baseURL,
		Timeout:   5 * time.Second,
		RateLimit: 1000,
		RateBurst: 1000,
	}, logger)

	store, err := session.Open(config.StoreConfig{Path: ":memory:"}, apiClient, logger)
	require.NoError(t, err)

	validator := validate.New(apiClient, store, validate.NewCache(time.Hour), logger)
	return &client{
		api:       apiClient,
		session:   store,
		flow:      auth.New(apiClient, store, config.AuthConfig{ResendCooldown: 60 * time.Second}, logger),
		validator: validator,
		engine:    workflow.New(apiClient, store, validator, logger),
		rec:       registration.NewReconciler(apiClient, store, logger),
	}
}

func (c *client) login(t *testing.T, mobile string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, c.flow.RequestOTP(ctx, mobile))
	_, err := c.flow.VerifyOTP(ctx, "1234")
	require.NoError(t, err)
}

func startStub(t *testing.T, cfg stubserver.Config) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(stubserver.New(cfg, zap.NewNop().Sugar()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func roboRace() eventModel.Event {
	return eventModel.Event{ID: "evt-roborace", Name: "RoboRace", TeamMinSize: 2, TeamMaxSize: 4}
}

func TestScenario_TeamRegistration(t *testing.T) {
	ctx := context.Background()
	srv := startStub(t, stubserver.Config{PermissionGate: true})

	// The teammate creates an account first by logging in once.
	mate := newClient(t, srv.URL)
	mate.login(t, "9123456789")

	jane := newClient(t, srv.URL)
	jane.login(t, "9876543210")

	draft := workflow.NewDraft()
	draft.Name = "Falcons"
	draft.Add("91234 56789")

	result, err := jane.engine.Register(ctx, draft, roboRace())
	require.NoError(t, err)
	require.Len(t, result.Invites, 1)
	assert.NoError(t, result.Invites[0].Err)

	// Only the creator has accepted so far.
	status := jane.rec.Reconcile(ctx, roboRace())
	require.Equal(t, registration.StatusPending, status.Status)
	assert.Equal(t, "Falcons", status.TeamName)
	assert.Equal(t, 1, status.AcceptedCount)

	// The teammate accepts; the next reconcile flips to registered.
	require.NoError(t, mate.session.Authenticate(ctx, func(ctx context.Context, token string) error {
		return mate.api.RespondInvitation(ctx, token, result.Team.ID, teamModel.InvitationAccepted)
	}))

	status = jane.rec.Reconcile(ctx, roboRace())
	assert.Equal(t, registration.StatusRegistered, status.Status)
	assert.Equal(t, 2, status.AcceptedCount)
}

func TestScenario_UnknownTeammate(t *testing.T) {
	ctx := context.Background()
	srv := startStub(t, stubserver.Config{})

	jane := newClient(t, srv.URL)
	jane.login(t, "9876543210")

	draft := workflow.NewDraft()
	draft.Name = "Falcons"
	id := draft.Add("0000000000")

	_, err := jane.engine.Register(ctx, draft, roboRace())

	assert.ErrorIs(t, err, teamModel.ErrCandidatesInvalid)
	for _, c := range draft.Candidates() {
		if c.ID == id {
			assert.Equal(t, validate.MsgUserNotFound, c.Err)
		}
	}

	// Nothing was created.
	status := jane.rec.Reconcile(ctx, roboRace())
	assert.Equal(t, registration.StatusNotRegistered, status.Status)
}

func TestScenario_OverCapacity(t *testing.T) {
	ctx := context.Background()
	srv := startStub(t, stubserver.Config{})

	mobiles := []string{"9111111111", "9222222222", "9333333333", "9444444444"}
	for _, mobile := range mobiles {
		newClient(t, srv.URL).login(t, mobile)
	}

	jane := newClient(t, srv.URL)
	jane.login(t, "9876543210")

	draft := workflow.NewDraft()
	draft.Name = "Crowd"
	for _, mobile := range mobiles {
		draft.Add(mobile)
	}

	// 4 teammates plus the creator exceeds the maximum of 4.
	_, err := jane.engine.Register(ctx, draft, roboRace())
	assert.ErrorIs(t, err, teamModel.ErrExceedsMaxSize)
}

func TestScenario_SessionExpiry(t *testing.T) {
	ctx := context.Background()

	t.Run("expired access token refreshes transparently", func(t *testing.T) {
		srv := startStub(t, stubserver.Config{AccessTokenTTL: -time.Minute})

		jane := newClient(t, srv.URL)

		// VerifyOTP fails its profile fetch with an already-expired token,
		// so log in at the API level instead.
		require.NoError(t, jane.api.SendMobileOTP(ctx, "9876543210"))
		refresh, err := jane.api.AuthMobile(ctx, "9876543210", "1234")
		require.NoError(t, err)
		require.NoError(t, jane.session.SetTokens("", refresh))

		// Every stored access token is expired; Authenticate must still
		// complete each call by refreshing first (and failing only if the
		// fresh token is also rejected, which a negative TTL guarantees).
		err = jane.session.Authenticate(ctx, func(ctx context.Context, token string) error {
			_, userErr := jane.api.CurrentUser(ctx, token)
			return userErr
		})
		assert.Error(t, err)
	})

	t.Run("revoked refresh token clears the session", func(t *testing.T) {
		srv := startStub(t, stubserver.Config{})

		jane := newClient(t, srv.URL)
		jane.login(t, "9876543210")

		// Revoke server-side, then force the client to need a refresh.
		require.NoError(t, jane.api.Logout(ctx, jane.session.RefreshToken()))
		require.NoError(t, jane.session.SetTokens("", jane.session.RefreshToken()))

		err := jane.session.Authenticate(ctx, func(ctx context.Context, token string) error {
			_, userErr := jane.api.CurrentUser(ctx, token)
			return userErr
		})

		assert.ErrorIs(t, err, session.ErrReauthenticate)
		assert.False(t, jane.session.LoggedIn())
	})
}
