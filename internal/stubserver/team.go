package stubserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	teamModel "github.com/technovus/client-go/internal/team/model"
	"github.com/technovus/client-go/internal/validate"
)

func (s *Server) createTeam(c *gin.Context) {
	var req teamModel.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		fail(c, http.StatusBadRequest, "team name is required")
		return
	}

	userID := currentUserID(c)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	team := &teamModel.Team{ID: uuid.NewString(), Name: req.Name, CreatedBy: userID}
	s.state.teams[team.ID] = team

	// The creator joins their own team as accepted.
	now := time.Now()
	s.state.memberships[team.ID] = append(s.state.memberships[team.ID], &membership{
		ID:          uuid.NewString(),
		TeamID:      team.ID,
		UserID:      userID,
		Status:      teamModel.InvitationAccepted,
		InvitedOn:   now,
		RespondedOn: &now,
	})

	c.JSON(http.StatusCreated, team)
}

func (s *Server) invite(c *gin.Context) {
	teamID := c.Param("teamID")

	var req teamModel.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if _, ok := s.state.teams[teamID]; !ok {
		fail(c, http.StatusNotFound, "team not found")
		return
	}

	acc := s.state.accountByMobile(validate.Normalize(req.Mobile))
	if acc == nil {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	if s.state.memberOf(teamID, acc.ID) != nil {
		fail(c, http.StatusBadRequest, "user already invited to this team")
		return
	}

	s.state.memberships[teamID] = append(s.state.memberships[teamID], &membership{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		UserID:    acc.ID,
		Status:    teamModel.InvitationPending,
		InvitedOn: time.Now(),
	})

	c.JSON(http.StatusCreated, gin.H{"status": "invited"})
}

func (s *Server) listTeamMembers(c *gin.Context) {
	teamID := c.Param("teamID")

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if _, ok := s.state.teams[teamID]; !ok {
		fail(c, http.StatusNotFound, "team not found")
		return
	}
	c.JSON(http.StatusOK, s.state.teamMembers(teamID))
}

func (s *Server) userTeams(c *gin.Context) {
	userID := currentUserID(c)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	teams := []teamModel.Team{}
	for id, team := range s.state.teams {
		if s.state.memberOf(id, userID) != nil {
			teams = append(teams, *team)
		}
	}
	c.JSON(http.StatusOK, teams)
}

// respondInvitation flips the caller's pending membership to accepted or
// declined. Members are never removed, declining only changes status.
func (s *Server) respondInvitation(c *gin.Context) {
	teamID := c.Param("teamID")

	var req teamModel.InvitationResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != teamModel.InvitationAccepted && req.Status != teamModel.InvitationDeclined {
		fail(c, http.StatusBadRequest, "status must be accepted or declined")
		return
	}

	userID := currentUserID(c)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	for _, m := range s.state.memberships[teamID] {
		if m.UserID == userID && m.Status == teamModel.InvitationPending {
			now := time.Now()
			m.Status = req.Status
			m.RespondedOn = &now
			c.JSON(http.StatusOK, gin.H{"status": string(req.Status)})
			return
		}
	}
	fail(c, http.StatusNotFound, "invitation not found")
}
