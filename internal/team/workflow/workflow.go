// Package workflow orchestrates the team registration sequence: validate
// the draft, create the team, send invitations, and register the team for
// an event.
package workflow

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/technovus/client-go/internal/api"
	eventModel "github.com/technovus/client-go/internal/event/model"
	"github.com/technovus/client-go/internal/session"
	teamModel "github.com/technovus/client-go/internal/team/model"
	"github.com/technovus/client-go/internal/validate"
)

// inviteConcurrency bounds parallel invitation requests.
const inviteConcurrency = 4

// RegisterResult is the outcome of a full registration run.
type RegisterResult struct {
	Team    *teamModel.Team
	Invites []teamModel.InviteResult
}

// Engine drives the team registration workflow. The busy flags mirror the
// per-action loading state that keeps a double submission from firing a
// second request while the first is outstanding.
type Engine struct {
	api       *api.Client
	session   *session.Store
	validator *validate.Validator
	logger    *zap.SugaredLogger

	registerBusy atomic.Bool
	inviteBusy   atomic.Bool

	onMutation func()
}

// New creates a workflow engine.
func New(apiClient *api.Client, store *session.Store, validator *validate.Validator, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		api:       apiClient,
		session:   store,
		validator: validator,
		logger:    logger,
	}
}

// SetMutationHook registers a callback fired after any successful mutation
// (team created, invite sent), typically to trigger a status reconcile.
func (e *Engine) SetMutationHook(fn func()) {
	e.onMutation = fn
}

func (e *Engine) mutated() {
	if e.onMutation != nil {
		e.onMutation()
	}
}

// EditCandidate updates a draft entry and drops the edited mobile's
// memoized validation result so the next validation re-checks it.
func (e *Engine) EditCandidate(draft *Draft, id int, mobile string) bool {
	previous, ok := draft.Edit(id, mobile)
	if !ok {
		return false
	}
	e.validator.Invalidate(previous)
	return true
}

// ValidateTeamData checks the draft against the event's team size rules.
// Every unverified candidate is validated and all per-candidate errors are
// collected (not fail-fast); the caller reads them off the draft.
func (e *Engine) ValidateTeamData(ctx context.Context, draft *Draft, event eventModel.Event) error {
	if draft.Name == "" {
		return teamModel.ErrBlankTeamName
	}

	invalid := 0
	for _, c := range draft.Candidates() {
		if c.Verified {
			continue
		}
		message := e.validator.Validate(ctx, c.Mobile)
		draft.setErr(c.ID, message)
		if message != "" {
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%w (%d)", teamModel.ErrCandidatesInvalid, invalid)
	}

	size := draft.ProspectiveSize()
	if size < event.TeamMinSize {
		return teamModel.ErrBelowMinSize
	}
	if size > event.TeamMaxSize {
		return teamModel.ErrExceedsMaxSize
	}
	return nil
}

// ExceedsMaxSize reports whether the draft is already over the event
// maximum; UIs use it to disable the submit control before any validation.
func (e *Engine) ExceedsMaxSize(draft *Draft, event eventModel.Event) bool {
	return draft.ProspectiveSize() > event.TeamMaxSize
}

// MinimumAchieved reports whether the draft reaches the event minimum.
func (e *Engine) MinimumAchieved(draft *Draft, event eventModel.Event) bool {
	return draft.ProspectiveSize() >= event.TeamMinSize
}

// CreateTeamAndInvite creates exactly one team, then dispatches one
// invitation per distinct candidate mobile concurrently. Results are
// aggregated after all invitations settle. A failed invitation neither
// rolls back the team nor the other invitations; but if the settled team
// (creator plus successful invites) is still below the event minimum, the
// whole operation reports failure.
func (e *Engine) CreateTeamAndInvite(ctx context.Context, draft *Draft, event eventModel.Event) (*teamModel.Team, []teamModel.InviteResult, error) {
	var team *teamModel.Team
	err := e.session.Authenticate(ctx, func(ctx context.Context, token string) error {
		created, createErr := e.api.CreateTeam(ctx, token, draft.Name)
		if createErr != nil {
			return createErr
		}
		team = created
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create team: %w", err)
	}

	mobiles := draft.distinctMobiles()
	results := make([]teamModel.InviteResult, len(mobiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(inviteConcurrency)
	for i, mobile := range mobiles {
		g.Go(func() error {
			inviteErr := e.session.Authenticate(gctx, func(ctx context.Context, token string) error {
				return e.api.Invite(ctx, token, team.ID, mobile)
			})
			results[i] = teamModel.InviteResult{Mobile: mobile, Err: inviteErr}
			return nil
		})
	}
	// Closures always return nil; Wait only synchronizes settlement.
	_ = g.Wait()

	invited := 0
	for _, r := range results {
		if r.Err == nil {
			invited++
		} else {
			e.logger.Warnw("invitation failed", "team", team.ID, "mobile", r.Mobile, "error", r.Err)
		}
	}

	if invited+1 < event.TeamMinSize {
		return team, results, teamModel.ErrBelowMinSize
	}

	e.mutated()
	return team, results, nil
}

// RegisterTeamForEvent registers the team for the event. Permission-kind
// rejections are suppressed: freshly created accounts trip them spuriously
// and the subsequent reconcile reports the real state. All other failures
// surface to the caller.
func (e *Engine) RegisterTeamForEvent(ctx context.Context, eventID, teamID string) error {
	err := e.session.Authenticate(ctx, func(ctx context.Context, token string) error {
		return e.api.RegisterForEvent(ctx, token, eventID, teamID)
	})
	if err != nil {
		if api.IsKind(err, api.KindPermission) {
			e.logger.Debugw("registration permission error suppressed", "team", teamID, "error", err)
			return nil
		}
		return fmt.Errorf("failed to register team: %w", err)
	}
	return nil
}

// Register runs the full sequence strictly in order (validate, create and
// invite, register), short-circuiting on the first failing step. On full
// success the draft is cleared and the mutation hook fires.
func (e *Engine) Register(ctx context.Context, draft *Draft, event eventModel.Event) (*RegisterResult, error) {
	if !e.registerBusy.CompareAndSwap(false, true) {
		return nil, teamModel.ErrOperationInFlight
	}
	defer e.registerBusy.Store(false)

	if err := e.ValidateTeamData(ctx, draft, event); err != nil {
		return nil, err
	}

	team, invites, err := e.CreateTeamAndInvite(ctx, draft, event)
	if err != nil {
		return &RegisterResult{Team: team, Invites: invites}, err
	}

	if err := e.RegisterTeamForEvent(ctx, event.ID, team.ID); err != nil {
		return &RegisterResult{Team: team, Invites: invites}, err
	}

	draft.Reset()
	e.mutated()
	e.logger.Infow("team registered", "team", team.ID, "event", event.ID)
	return &RegisterResult{Team: team, Invites: invites}, nil
}

// SendInvite sends a single post-registration invitation. The team must
// have a free slot (active size below the event maximum) and the mobile
// must validate unless it belongs to a pre-verified member.
func (e *Engine) SendInvite(ctx context.Context, teamID, mobile string, members []teamModel.TeamMember, event eventModel.Event) error {
	if !e.inviteBusy.CompareAndSwap(false, true) {
		return teamModel.ErrOperationInFlight
	}
	defer e.inviteBusy.Store(false)

	if teamID == "" {
		return fmt.Errorf("team id is required")
	}
	if teamModel.ActiveSize(members) >= event.TeamMaxSize {
		return teamModel.ErrTeamFull
	}

	normalized := validate.Normalize(mobile)
	if message := e.validator.Validate(ctx, normalized); message != "" {
		return fmt.Errorf("%w: %s", teamModel.ErrCandidatesInvalid, message)
	}

	err := e.session.Authenticate(ctx, func(ctx context.Context, token string) error {
		return e.api.Invite(ctx, token, teamID, normalized)
	})
	if err != nil {
		return fmt.Errorf("failed to send invite: %w", err)
	}

	e.mutated()
	return nil
}
