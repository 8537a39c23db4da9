// Package registration derives the user's registration state for an event
// from the backend and re-derives it on demand.
package registration

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/technovus/client-go/internal/api"
	eventModel "github.com/technovus/client-go/internal/event/model"
	registrationModel "github.com/technovus/client-go/internal/registration/model"
	"github.com/technovus/client-go/internal/session"
	teamModel "github.com/technovus/client-go/internal/team/model"
)

// Status is the derived registration state for one event.
type Status int

const (
	// StatusUnknown means the state could not be determined this round,
	// typically a permission or auth failure; the previous state stands.
	StatusUnknown Status = iota
	// StatusNotRegistered means no registration exists for the event.
	StatusNotRegistered
	// StatusPending means the team is registered but has not reached the
	// event minimum of accepted members yet.
	StatusPending
	// StatusRegistered means enough members accepted for the registration
	// to count.
	StatusRegistered
)

// String returns a short name for the status, used in logs.
func (s Status) String() string {
	switch s {
	case StatusNotRegistered:
		return "not_registered"
	case StatusPending:
		return "pending"
	case StatusRegistered:
		return "registered"
	default:
		return "unknown"
	}
}

// TeamStatus is the full reconcile outcome: the derived status plus the
// team details a UI needs to render the roster.
type TeamStatus struct {
	Status        Status
	TeamID        string
	TeamName      string
	AcceptedCount int
	Members       []teamModel.TeamMember
}

// Reconciler recomputes registration state from the backend.
type Reconciler struct {
	api     *api.Client
	session *session.Store
	logger  *zap.SugaredLogger
}

// NewReconciler creates a reconciler.
func NewReconciler(apiClient *api.Client, store *session.Store, logger *zap.SugaredLogger) *Reconciler {
	return &Reconciler{api: apiClient, session: store, logger: logger}
}

// Reconcile fetches the user's registrations, locates the one for the
// event, and derives the team's status from its members. Pending members
// occupy slots but only accepted members count toward the registered
// threshold. Permission and auth failures yield StatusUnknown so a stale
// but valid previous state is not clobbered; any other failure defaults to
// StatusNotRegistered.
func (r *Reconciler) Reconcile(ctx context.Context, event eventModel.Event) TeamStatus {
	var registrations []registrationModel.Registration
	err := r.session.Authenticate(ctx, func(ctx context.Context, token string) error {
		var fetchErr error
		registrations, fetchErr = r.api.UserRegistrations(ctx, token)
		return fetchErr
	})
	if err != nil {
		return r.statusOnError(err, event.ID)
	}

	teamID := ""
	for _, reg := range registrations {
		if reg.EventID == event.ID && reg.TeamID != "" {
			teamID = reg.TeamID
			break
		}
	}
	if teamID == "" {
		return TeamStatus{Status: StatusNotRegistered}
	}

	var (
		members []teamModel.TeamMember
		teams   []teamModel.Team
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.session.Authenticate(gctx, func(ctx context.Context, token string) error {
			var fetchErr error
			members, fetchErr = r.api.TeamMembers(ctx, token, teamID)
			return fetchErr
		})
	})
	g.Go(func() error {
		return r.session.Authenticate(gctx, func(ctx context.Context, token string) error {
			var fetchErr error
			teams, fetchErr = r.api.UserTeams(ctx, token)
			return fetchErr
		})
	})
	if err := g.Wait(); err != nil {
		return r.statusOnError(err, event.ID)
	}

	name := ""
	for _, team := range teams {
		if team.ID == teamID {
			name = team.Name
			break
		}
	}

	accepted := teamModel.AcceptedSize(members)
	status := StatusPending
	if accepted >= event.TeamMinSize {
		status = StatusRegistered
	}

	return TeamStatus{
		Status:        status,
		TeamID:        teamID,
		TeamName:      name,
		AcceptedCount: accepted,
		Members:       members,
	}
}

func (r *Reconciler) statusOnError(err error, eventID string) TeamStatus {
	if api.IsKind(err, api.KindPermission) || api.IsKind(err, api.KindUnauthorized) {
		r.logger.Debugw("status reconcile skipped", "event", eventID, "error", err)
		return TeamStatus{Status: StatusUnknown}
	}
	r.logger.Warnw("status reconcile failed", "event", eventID, "error", err)
	return TeamStatus{Status: StatusNotRegistered}
}
