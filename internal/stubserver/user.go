package stubserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	eventModel "github.com/technovus/client-go/internal/event/model"
	userModel "github.com/technovus/client-go/internal/user/model"
	"github.com/technovus/client-go/internal/validate"
)

// getUser serves both the current profile and the mobile lookup used when
// validating teammates.
func (s *Server) getUser(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if mobile := c.Query("mobile"); mobile != "" {
		acc := s.state.accountByMobile(validate.Normalize(mobile))
		if acc == nil {
			fail(c, http.StatusNotFound, "user not found")
			return
		}
		c.JSON(http.StatusOK, acc.User)
		return
	}

	acc := s.state.accounts[currentUserID(c)]
	c.JSON(http.StatusOK, acc.User)
}

// createParticipant completes the profile of the logged-in account,
// lifting the fresh flag, or creates a separate participant account for
// another mobile.
func (s *Server) createParticipant(c *gin.Context) {
	var req userModel.CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	mobile := validate.Normalize(req.Mobile)
	if req.Name == "" || !validate.ValidFormat(mobile) {
		fail(c, http.StatusBadRequest, "name and a valid mobile are required")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc := s.state.accountByMobile(mobile)
	if acc == nil {
		acc = s.state.createAccount(req.Name, mobile, req.Email, userModel.RoleStudent, false)
	} else {
		acc.Name = req.Name
		if req.Email != "" {
			acc.Email = req.Email
		}
		if acc.Role == userModel.RoleUser {
			acc.Role = userModel.RoleStudent
		}
		acc.fresh = false
	}

	c.JSON(http.StatusCreated, acc.User)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req userModel.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc := s.state.accounts[currentUserID(c)]
	if req.Name != "" {
		acc.Name = req.Name
	}
	if req.Email != "" {
		acc.Email = req.Email
	}

	c.JSON(http.StatusOK, acc.User)
}

func (s *Server) listEvents(c *gin.Context) {
	s.state.mu.Lock()
	events := make([]eventModel.Event, len(s.state.events))
	copy(events, s.state.events)
	s.state.mu.Unlock()

	c.JSON(http.StatusOK, events)
}
