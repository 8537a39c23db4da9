package stubserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	registrationModel "github.com/technovus/client-go/internal/registration/model"
)

const permissionDenied = "you do not have permission to access this resource"

// register records a registration for an event. With the permission gate
// on, a fresh account's registration is recorded but the response is a
// 403, reproducing the backend's spurious rejection that the client
// suppresses and later reconciles past.
func (s *Server) register(c *gin.Context) {
	var req registrationModel.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := currentUserID(c)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	event := false
	for _, e := range s.state.events {
		if e.ID == req.EventID {
			event = true
			break
		}
	}
	if !event {
		fail(c, http.StatusNotFound, "event not found")
		return
	}
	if req.TeamID != "" {
		if _, ok := s.state.teams[req.TeamID]; !ok {
			fail(c, http.StatusNotFound, "team not found")
			return
		}
	}
	for _, reg := range s.state.registrations {
		if reg.EventID == req.EventID && reg.TeamID == req.TeamID &&
			(req.TeamID != "" || reg.UserID == userID) {
			fail(c, http.StatusBadRequest, "already registered for this event")
			return
		}
	}

	reg := registrationModel.Registration{
		ID:           uuid.NewString(),
		EventID:      req.EventID,
		TeamID:       req.TeamID,
		UserID:       userID,
		RegisteredOn: time.Now(),
	}
	s.state.registrations = append(s.state.registrations, reg)

	if s.cfg.PermissionGate && s.state.accounts[userID].fresh {
		fail(c, http.StatusForbidden, permissionDenied)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

// listUserRegistrations returns the caller's visible registrations. Fresh
// accounts with nothing registered hit the permission gate instead of an
// empty list.
func (s *Server) listUserRegistrations(c *gin.Context) {
	userID := currentUserID(c)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	regs := s.state.userRegistrations(userID)
	if s.cfg.PermissionGate && s.state.accounts[userID].fresh && len(regs) == 0 {
		fail(c, http.StatusForbidden, permissionDenied)
		return
	}
	c.JSON(http.StatusOK, regs)
}
