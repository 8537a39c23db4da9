// Package stubserver is an in-memory implementation of the symposium
// backend contract, used as the httptest target in tests and as a
// local-dev server. It speaks the same routes, payloads and error
// phrasings the real backend does, including the quirks the client has
// to work around (free-form error messages, the permission gate on
// freshly created accounts).
package stubserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	eventModel "github.com/technovus/client-go/internal/event/model"
	"github.com/technovus/client-go/internal/middleware"
)

// Config controls the stub's behavior.
type Config struct {
	// FixedOTP is the code every sendMobileOTP issues. Empty defaults to
	// "1234".
	FixedOTP string
	// JWTKey signs access tokens. Empty defaults to a dev key.
	JWTKey string
	// AccessTokenTTL bounds access token validity. Zero defaults to 15m.
	AccessTokenTTL time.Duration
	// PermissionGate reproduces the backend behavior where accounts
	// created at first login hit permission errors on registration
	// endpoints until they complete a participant profile.
	PermissionGate bool
	// Events seeds the catalogue. Nil seeds a small default set.
	Events []eventModel.Event
}

func (c Config) withDefaults() Config {
	if c.FixedOTP == "" {
		c.FixedOTP = "1234"
	}
	if c.JWTKey == "" {
		c.JWTKey = "technovus-dev-key"
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 15 * time.Minute
	}
	if c.Events == nil {
		c.Events = defaultEvents()
	}
	return c
}

func defaultEvents() []eventModel.Event {
	return []eventModel.Event{
		{ID: "evt-roborace", Name: "RoboRace", Description: "Line-follower robot race", Venue: "Main Arena", TeamMinSize: 2, TeamMaxSize: 4},
		{ID: "evt-hackathon", Name: "Hackathon", Description: "24 hour build sprint", Venue: "Lab Block", TeamMinSize: 3, TeamMaxSize: 6},
		{ID: "evt-quiz", Name: "Tech Quiz", Description: "Solo quiz rounds", Venue: "Auditorium", TeamMinSize: 1, TeamMaxSize: 1},
	}
}

// Server is the stub backend.
type Server struct {
	cfg    Config
	logger *zap.SugaredLogger
	state  *state
	engine *gin.Engine
}

// New creates a stub server with its routes registered.
func New(cfg Config, logger *zap.SugaredLogger) *Server {
	cfg = cfg.withDefaults()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.Logger(logger), middleware.Recovery(logger))

	s := &Server{
		cfg:    cfg,
		logger: logger,
		state:  newState(cfg.Events),
		engine: engine,
	}
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler, for httptest and custom servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the given address until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Infow("stub server listening", "addr", addr)
	return s.engine.Run(addr)
}

func (s *Server) registerRoutes() {
	r := s.engine

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/auth/sendMobileOTP", s.sendMobileOTP)
	r.POST("/auth/authMobile", s.authMobile)
	r.GET("/auth/accessToken", s.accessToken)
	r.DELETE("/auth/logout", s.logout)

	r.GET("/events", s.listEvents)

	authed := r.Group("", s.requireAccessToken)
	authed.GET("/user", s.getUser)
	authed.POST("/user/participant", s.createParticipant)
	authed.PATCH("/user/", s.updateProfile)

	authed.POST("/teams/create-team", s.createTeam)
	authed.POST("/teams/:teamID/invite", s.invite)
	authed.GET("/teams/:teamID/members", s.listTeamMembers)
	authed.GET("/teams/user-teams", s.userTeams)
	authed.PATCH("/teams/:teamID/invitation", s.respondInvitation)

	authed.POST("/registration", s.register)
	authed.GET("/registration/user", s.listUserRegistrations)
}

// fail writes the backend's flat error envelope.
func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

const userIDKey = "userID"

// requireAccessToken verifies the bearer JWT and stashes the subject.
func (s *Server) requireAccessToken(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		fail(c, http.StatusUnauthorized, "missing authorization token")
		return
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTKey), nil
	})
	if err != nil || !parsed.Valid {
		fail(c, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	s.state.mu.Lock()
	_, known := s.state.accounts[claims.Subject]
	s.state.mu.Unlock()
	if !known {
		fail(c, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	c.Set(userIDKey, claims.Subject)
	c.Next()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func (s *Server) signAccessToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.AccessTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTKey))
}
