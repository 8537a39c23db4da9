package stubserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	userModel "github.com/technovus/client-go/internal/user/model"
	"github.com/technovus/client-go/internal/validate"
)

type sendOTPRequest struct {
	Mobile string `json:"mobile"`
}

func (s *Server) sendMobileOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	mobile := validate.Normalize(req.Mobile)
	if !validate.ValidFormat(mobile) {
		fail(c, http.StatusBadRequest, "invalid mobile number")
		return
	}

	s.state.mu.Lock()
	s.state.otps[mobile] = s.cfg.FixedOTP
	s.state.mu.Unlock()

	s.logger.Debugw("OTP issued", "mobile", mobile)
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

type authMobileRequest struct {
	Mobile string `json:"mobile"`
	OTP    string `json:"otp"`
}

// authMobile verifies the code and returns a refresh token. Unknown
// mobiles get a bare account at role "user"; the participant profile
// comes later, which is what the permission gate keys on.
func (s *Server) authMobile(c *gin.Context) {
	var req authMobileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	mobile := validate.Normalize(req.Mobile)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	code, pending := s.state.otps[mobile]
	if !pending || req.OTP != code {
		fail(c, http.StatusBadRequest, "incorrect OTP")
		return
	}
	delete(s.state.otps, mobile)

	acc := s.state.accountByMobile(mobile)
	if acc == nil {
		acc = s.state.createAccount("", mobile, "", userModel.RoleUser, true)
	}

	token := uuid.NewString()
	s.state.refreshTokens[token] = acc.ID

	c.JSON(http.StatusOK, gin.H{"refreshToken": token})
}

func (s *Server) accessToken(c *gin.Context) {
	refresh := bearerToken(c)
	if refresh == "" {
		fail(c, http.StatusUnauthorized, "missing authorization token")
		return
	}

	s.state.mu.Lock()
	userID, ok := s.state.refreshTokens[refresh]
	s.state.mu.Unlock()
	if !ok {
		fail(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	token, err := s.signAccessToken(userID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}

// logout revokes the presented refresh token. Revoking an already-revoked
// token still succeeds.
func (s *Server) logout(c *gin.Context) {
	refresh := bearerToken(c)

	s.state.mu.Lock()
	delete(s.state.refreshTokens, refresh)
	s.state.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
