// Package store holds the per-session client state: the auth token and UI preferences.
//
// A Store is created for every browser session and passed explicitly to whatever needs it
// (the API client reads the token through TokenSource, handlers read and write preferences).
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ThemeMode is the UI color scheme preference
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

var (
	// ErrTokenExpired is returned when a token's exp claim is in the past
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidTheme is returned for unknown theme modes
	ErrInvalidTheme = errors.New("invalid theme mode")
)

// Identity is what the client learns from an access token without verifying it
type Identity struct {
	UserID    int
	Role      int
	ExpiresAt time.Time
}

// Store is the explicitly passed replacement for global auth/theme singletons
type Store struct {
	mu       sync.RWMutex
	token    string
	identity Identity
	theme    ThemeMode
	now      func() time.Time
}

// New creates an empty store with the light theme
func New() *Store {
	return &Store{theme: ThemeLight, now: time.Now}
}

// SetToken inspects and stores an access token.
//
// The signature is not checked here, the learn API verifies it on every call; the store only
// reads the claims to refuse tokens that are already expired.
func (s *Store) SetToken(token string) (Identity, error) {
	identity, err := inspectToken(token, s.now())
	if err != nil {
		return Identity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.identity = identity
	return identity, nil
}

// ClearToken forgets the current token
func (s *Store) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = Identity{}
}

// Token returns the current token if one is set and not expired
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", false
	}
	if !s.identity.ExpiresAt.IsZero() && !s.now().Before(s.identity.ExpiresAt) {
		return "", false
	}
	return s.token, true
}

// Identity returns the identity of the current token
func (s *Store) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.token != ""
}

// Theme returns the theme preference
func (s *Store) Theme() ThemeMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme changes the theme preference
func (s *Store) SetTheme(mode ThemeMode) error {
	if mode != ThemeLight && mode != ThemeDark {
		return ErrInvalidTheme
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = mode
	return nil
}

func inspectToken(tokenString string, now time.Time) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return Identity{}, fmt.Errorf("failed to parse token: %w", err)
	}

	// Check token type when present
	if tokenType, ok := claims["type"].(string); ok && tokenType != "access" {
		return Identity{}, fmt.Errorf("token is not an access token")
	}

	var identity Identity
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Identity{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp != nil {
		if !now.Before(exp.Time) {
			return Identity{}, ErrTokenExpired
		}
		identity.ExpiresAt = exp.Time
	}

	// JWT claims decode numbers as float64
	if userID, ok := claims["user_id"].(float64); ok {
		identity.UserID = int(userID)
	}
	if role, ok := claims["role"].(float64); ok {
		identity.Role = int(role)
	}

	return identity, nil
}
