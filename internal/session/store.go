// Package session manages the locally persisted credential pair and runs
// authenticated calls with transparent access-token refresh.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/technovus/client-go/internal/api"
	"github.com/technovus/client-go/internal/config"
)

// ErrReauthenticate indicates the refresh token is gone or rejected and the
// user must log in again.
var ErrReauthenticate = errors.New("session expired, please log in again")

// Credential store keys.
const (
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"
	keyRole         = "role"
)

// expiryLeeway treats tokens about to expire as already expired so a call
// is not sent with a token that dies in flight.
const expiryLeeway = 30 * time.Second

// credential is a single named value in the local store.
type credential struct {
	Name      string    `gorm:"primaryKey;column:name"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM.
func (credential) TableName() string {
	return "credentials"
}

// Store holds the session credentials in a local sqlite file and notifies
// subscribers when the session changes. Reads always hit the persisted
// value; writes are last-write-wins.
type Store struct {
	db     *gorm.DB
	api    *api.Client
	logger *zap.SugaredLogger
	now    func() time.Time

	mu      sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

// Open opens (or creates) the local session store.
func Open(cfg config.StoreConfig, apiClient *api.Client, logger *zap.SugaredLogger) (*Store, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	// An in-memory sqlite database exists per connection; keep the pool at
	// one connection so migrations and queries see the same database.
	if cfg.Path == ":memory:" {
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", dbErr)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := applyMigrations(db); err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		api:    apiClient,
		logger: logger,
		now:    time.Now,
		subs:   make(map[int]chan struct{}),
	}, nil
}

// get reads one credential, returning "" when absent.
func (s *Store) get(name string) string {
	var cred credential
	err := s.db.First(&cred, "name = ?", name).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warnw("failed to read credential", "name", name, "error", err)
		}
		return ""
	}
	return cred.Value
}

// set writes one credential (upsert).
func (s *Store) set(name, value string) error {
	cred := credential{Name: name, Value: value, UpdatedAt: s.now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&cred).Error
	if err != nil {
		return fmt.Errorf("failed to persist credential %s: %w", name, err)
	}
	return nil
}

// AccessToken returns the persisted access token, or "" when absent.
func (s *Store) AccessToken() string {
	return s.get(keyAccessToken)
}

// RefreshToken returns the persisted refresh token, or "" when absent.
func (s *Store) RefreshToken() string {
	return s.get(keyRefreshToken)
}

// Role returns the persisted account role, or "" when absent.
func (s *Store) Role() string {
	return s.get(keyRole)
}

// SetRole persists the account role derived from the profile.
func (s *Store) SetRole(role string) error {
	return s.set(keyRole, role)
}

// SetTokens persists a new credential pair and notifies subscribers.
func (s *Store) SetTokens(accessToken, refreshToken string) error {
	if err := s.set(keyAccessToken, accessToken); err != nil {
		return err
	}
	if err := s.set(keyRefreshToken, refreshToken); err != nil {
		return err
	}
	s.notify()
	return nil
}

// Clear removes all persisted credentials and notifies subscribers.
func (s *Store) Clear() error {
	err := s.db.Where("1 = 1").Delete(&credential{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear session store: %w", err)
	}
	s.notify()
	return nil
}

// LoggedIn reports whether a refresh token is present.
func (s *Store) LoggedIn() bool {
	return s.RefreshToken() != ""
}

// Authenticate runs fn with a valid access token attached. On an
// unauthorized failure it refreshes the access token exactly once and
// retries fn once; a second authorization failure propagates instead of
// looping. A refresh rejection clears the store and returns
// ErrReauthenticate.
func (s *Store) Authenticate(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	token := s.AccessToken()
	if token == "" || s.expired(token) {
		if err := s.refresh(ctx); err != nil {
			return err
		}
		token = s.AccessToken()
	}

	err := fn(ctx, token)
	if !api.IsKind(err, api.KindUnauthorized) {
		return err
	}

	if err := s.refresh(ctx); err != nil {
		return err
	}

	return fn(ctx, s.AccessToken())
}

// refresh exchanges the refresh token for a new access token and persists it.
func (s *Store) refresh(ctx context.Context) error {
	refreshToken := s.RefreshToken()
	if refreshToken == "" {
		return ErrReauthenticate
	}

	accessToken, err := s.api.AccessToken(ctx, refreshToken)
	if err != nil {
		if api.IsKind(err, api.KindUnauthorized) || api.IsKind(err, api.KindPermission) {
			s.logger.Infow("refresh token rejected, clearing session")
			if clearErr := s.Clear(); clearErr != nil {
				s.logger.Warnw("failed to clear session store", "error", clearErr)
			}
			return ErrReauthenticate
		}
		return fmt.Errorf("failed to refresh access token: %w", err)
	}

	if err := s.set(keyAccessToken, accessToken); err != nil {
		return err
	}
	s.notify()
	return nil
}

// expired reports whether the access token is a JWT past (or within leeway
// of) its expiry. Opaque tokens are assumed live; a stale one still gets
// caught by the 401 path.
func (s *Store) expired(token string) bool {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.now().Add(expiryLeeway))
}

// Logout invalidates the session server-side (best effort) and clears the
// local store.
func (s *Store) Logout(ctx context.Context) error {
	if token := s.AccessToken(); token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			s.logger.Debugw("server-side logout failed", "error", err)
		}
	}
	return s.Clear()
}

// Subscribe returns a channel that receives a signal whenever the session
// changes (login, refresh, logout) and a function to unsubscribe.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
	return ch, cancel
}

// notify signals all subscribers without blocking; a subscriber that has
// not drained its previous signal is skipped.
func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
