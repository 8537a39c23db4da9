package stubserver

import (
	"sync"
	"time"

	"github.com/google/uuid"

	eventModel "github.com/technovus/client-go/internal/event/model"
	registrationModel "github.com/technovus/client-go/internal/registration/model"
	teamModel "github.com/technovus/client-go/internal/team/model"
	userModel "github.com/technovus/client-go/internal/user/model"
)

// account is a stored user. fresh marks accounts auto-created at first
// login that have not completed the participant profile yet; the
// permission gate applies to them.
type account struct {
	userModel.User
	fresh bool
}

// membership relates a user to a team with its invitation state.
type membership struct {
	ID          string
	TeamID      string
	UserID      string
	Status      teamModel.InvitationStatus
	InvitedOn   time.Time
	RespondedOn *time.Time
}

// state is the server's in-memory world. All access goes through the
// mutex; handlers never hold references across requests.
type state struct {
	mu sync.Mutex

	accounts map[string]*account // by user id
	byMobile map[string]string   // mobile -> user id

	teams       map[string]*teamModel.Team
	memberships map[string][]*membership // by team id

	registrations []registrationModel.Registration

	otps          map[string]string // mobile -> pending code
	refreshTokens map[string]string // token -> user id

	events []eventModel.Event
}

func newState(events []eventModel.Event) *state {
	return &state{
		accounts:      make(map[string]*account),
		byMobile:      make(map[string]string),
		teams:         make(map[string]*teamModel.Team),
		memberships:   make(map[string][]*membership),
		otps:          make(map[string]string),
		refreshTokens: make(map[string]string),
		events:        events,
	}
}

// createAccount stores a new account and indexes its mobile.
// Caller holds the lock.
func (s *state) createAccount(name, mobile, email string, role userModel.Role, fresh bool) *account {
	acc := &account{
		User: userModel.User{
			ID:     uuid.NewString(),
			Name:   name,
			Mobile: mobile,
			Email:  email,
			Role:   role,
		},
		fresh: fresh,
	}
	s.accounts[acc.ID] = acc
	s.byMobile[mobile] = acc.ID
	return acc
}

// accountByMobile resolves a mobile to its account. Caller holds the lock.
func (s *state) accountByMobile(mobile string) *account {
	id, ok := s.byMobile[mobile]
	if !ok {
		return nil
	}
	return s.accounts[id]
}

// memberOf returns the user's non-declined membership in the team, if any.
// Caller holds the lock.
func (s *state) memberOf(teamID, userID string) *membership {
	for _, m := range s.memberships[teamID] {
		if m.UserID == userID && m.Status != teamModel.InvitationDeclined {
			return m
		}
	}
	return nil
}

// teamMembers renders a team's memberships with user details filled in.
// Caller holds the lock.
func (s *state) teamMembers(teamID string) []teamModel.TeamMember {
	out := make([]teamModel.TeamMember, 0, len(s.memberships[teamID]))
	for _, m := range s.memberships[teamID] {
		member := teamModel.TeamMember{
			ID:          m.ID,
			TeamID:      m.TeamID,
			UserID:      m.UserID,
			Status:      m.Status,
			InvitedOn:   m.InvitedOn,
			RespondedOn: m.RespondedOn,
		}
		if acc, ok := s.accounts[m.UserID]; ok {
			member.Name = acc.Name
			member.Mobile = acc.Mobile
		}
		out = append(out, member)
	}
	return out
}

// userRegistrations lists registrations visible to the user: solo entries
// plus entries of every team the user actively belongs to.
// Caller holds the lock.
func (s *state) userRegistrations(userID string) []registrationModel.Registration {
	out := []registrationModel.Registration{}
	for _, reg := range s.registrations {
		if reg.UserID == userID {
			out = append(out, reg)
			continue
		}
		if reg.TeamID != "" && s.memberOf(reg.TeamID, userID) != nil {
			out = append(out, reg)
		}
	}
	return out
}
