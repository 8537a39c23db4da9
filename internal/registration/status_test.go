package registration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/technovus/client-go/internal/api"
	"github.com/technovus/client-go/internal/config"
	eventModel "github.com/technovus/client-go/internal/event/model"
	registrationModel "github.com/technovus/client-go/internal/registration/model"
	"github.com/technovus/client-go/internal/session"
	teamModel "github.com/technovus/client-go/internal/team/model"
)

// statusBackend fakes the registration and team read endpoints.
type statusBackend struct {
	mu            sync.Mutex
	registrations []registrationModel.Registration
	members       []teamModel.TeamMember
	teams         []teamModel.Team
	denyRegs      bool
	failRegs      bool
	failMembers   bool
}

func (b *statusBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/accessToken", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"accessToken": "access"})
	})
	mux.HandleFunc("GET /registration/user", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.denyRegs {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"message": "you do not have permission to view registrations"})
			return
		}
		if b.failRegs {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "internal server error"})
			return
		}
		json.NewEncoder(w).Encode(b.registrations)
	})
	mux.HandleFunc("GET /teams/{teamID}/members", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failMembers {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "internal server error"})
			return
		}
		json.NewEncoder(w).Encode(b.members)
	})
	mux.HandleFunc("GET /teams/user-teams", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		json.NewEncoder(w).Encode(b.teams)
	})
	return mux
}

func newTestReconciler(t *testing.T, baseURL string) *Reconciler {
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
	require.NoError(t, store.SetTokens("access", "refresh"))

	return NewReconciler(apiClient, store, logger)
}

func raceEvent() eventModel.Event {
	return eventModel.Event{ID: "e1", Name: "RoboRace", TeamMinSize: 2, TeamMaxSize: 4}
}

func TestReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("no registration for the event", func(t *testing.T) {
		backend := &statusBackend{
			registrations: []registrationModel.Registration{
				{ID: "r9", EventID: "other-event", TeamID: "t9"},
			},
		}
		srv := httptest.NewServer(backend.handler())
		defer srv.Close()

		status := newTestReconciler(t, srv.URL).Reconcile(ctx, raceEvent())

		assert.Equal(t, StatusNotRegistered, status.Status)
		assert.Empty(t, status.TeamID)
	})

	t.Run("pending until enough members accept", func(t *testing.T) {
		backend := &statusBackend{
			registrations: []registrationModel.Registration{
				{ID: "r1", EventID: "e1", TeamID: "t1"},
			},
			members: []teamModel.TeamMember{
				{ID: "m1", TeamID: "t1", Status: teamModel.InvitationAccepted},
				{ID: "m2", TeamID: "t1", Status: teamModel.InvitationPending},
			},
			teams: []teamModel.Team{{ID: "t1", Name: "Falcons"}},
		}
		srv := httptest.NewServer(backend.handler())
		defer srv.Close()

		status := newTestReconciler(t, srv.URL).Reconcile(ctx, raceEvent())

		assert.Equal(t, StatusPending, status.Status)
		assert.Equal(t, "t1", status.TeamID)
		assert.Equal(t, "Falcons", status.TeamName)
		assert.Equal(t, 1, status.AcceptedCount)
		assert.Len(t, status.Members, 2)
	})

	t.Run("registered once the minimum accepts", func(t *testing.T) {
		backend := &statusBackend{
			registrations: []registrationModel.Registration{
				{ID: "r1", EventID: "e1", TeamID: "t1"},
			},
			members: []teamModel.TeamMember{
				{ID: "m1", TeamID: "t1", Status: teamModel.InvitationAccepted},
				{ID: "m2", TeamID: "t1", Status: teamModel.InvitationAccepted},
				{ID: "m3", TeamID: "t1", Status: teamModel.InvitationDeclined},
			},
			teams: []teamModel.Team{{ID: "t1", Name: "Falcons"}},
		}
		srv := httptest.NewServer(backend.handler())
		defer srv.Close()

		status := newTestReconciler(t, srv.URL).Reconcile(ctx, raceEvent())

		assert.Equal(t, StatusRegistered, status.Status)
		assert.Equal(t, 2, status.AcceptedCount)
	})

	t.Run("permission rejection yields Unknown", func(t *testing.T) {
		backend := &statusBackend{denyRegs: true}
		srv := httptest.NewServer(backend.handler())
		defer srv.Close()

		status := newTestReconciler(t, srv.URL).Reconcile(ctx, raceEvent())

		assert.Equal(t, StatusUnknown, status.Status)
	})

	t.Run("server failure defaults to NotRegistered", func(t *testing.T) {
		backend := &statusBackend{failRegs: true}
		srv := httptest.NewServer(backend.handler())
		defer srv.Close()

		status := newTestReconciler(t, srv.URL).Reconcile(ctx, raceEvent())

		assert.Equal(t, StatusNotRegistered, status.Status)
	})

	t.Run("member fetch failure defaults to NotRegistered", func(t *testing.T) {
		backend := &statusBackend{
			registrations: []registrationModel.Registration{
				{ID: "r1", EventID: "e1", TeamID: "t1"},
			},
			failMembers: true,
		}
		srv := httptest.NewServer(backend.handler())
		defer srv.Close()

		status := newTestReconciler(t, srv.URL).Reconcile(ctx, raceEvent())

		assert.Equal(t, StatusNotRegistered, status.Status)
	})
}

func TestWatcher(t *testing.T) {
	t.Run("delivers an update per trigger", func(t *testing.T) {
		backend := &statusBackend{
			registrations: []registrationModel.Registration{
				{ID: "r1", EventID: "e1", TeamID: "t1"},
			},
			members: []teamModel.TeamMember{
				{ID: "m1", TeamID: "t1", Status: teamModel.InvitationAccepted},
			},
			teams: []teamModel.Team{{ID: "t1", Name: "Falcons"}},
		}
		srv := httptest.NewServer(backend.handler())
		defer srv.Close()

		watcher := NewWatcher(newTestReconciler(t, srv.URL), raceEvent(), zap.NewNop().Sugar())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		go watcher.Run(ctx)

		// Initial reconcile fires without an explicit trigger.
		first := <-watcher.Updates()
		assert.Equal(t, StatusPending, first.Status)

		// Second member accepts, then a mutation trigger lands.
		backend.mu.Lock()
		backend.members = append(backend.members, teamModel.TeamMember{
			ID: "m2", TeamID: "t1", Status: teamModel.InvitationAccepted,
		})
		backend.mu.Unlock()
		watcher.OnMutation()

		second := <-watcher.Updates()
		assert.Equal(t, StatusRegistered, second.Status)
	})

	t.Run("unknown outcomes are dropped", func(t *testing.T) {
		backend := &statusBackend{denyRegs: true}
		srv := httptest.NewServer(backend.handler())
		defer srv.Close()

		watcher := NewWatcher(newTestReconciler(t, srv.URL), raceEvent(), zap.NewNop().Sugar())
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		go watcher.Run(ctx)

		watcher.OnFocus()

		select {
		case status := <-watcher.Updates():
			t.Fatalf("unexpected update: %+v", status)
		case <-ctx.Done():
		}
	})
}
