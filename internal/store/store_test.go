package store

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "b8a3c2267dc85f855dea9b46b452bf20"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestStore_SetToken(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		claims        jwt.MapClaims
		raw           string
		expectedError error
		expectedUser  int
		expectedRole  int
	}{
		{
			name: "valid access token",
			claims: jwt.MapClaims{
				"user_id": 42,
				"role":    1,
				"exp":     now.Add(time.Hour).Unix(),
				"type":    "access",
			},
			expectedUser: 42,
			expectedRole: 1,
		},
		{
			name:         "token without exp",
			claims:       jwt.MapClaims{"user_id": 7},
			expectedUser: 7,
		},
		{
			name: "expired token",
			claims: jwt.MapClaims{
				"user_id": 42,
				"exp":     now.Add(-time.Minute).Unix(),
			},
			expectedError: ErrTokenExpired,
		},
		{
			name: "refresh token",
			claims: jwt.MapClaims{
				"exp":  now.Add(time.Hour).Unix(),
				"type": "refresh",
			},
			expectedError: assert.AnError,
		},
		{
			name:          "malformed token",
			raw:           "not-a-jwt",
			expectedError: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.now = func() time.Time { return now }

			token := tt.raw
			if tt.claims != nil {
				token = signToken(t, tt.claims)
			}

			identity, err := s.SetToken(token)
			if tt.expectedError != nil {
				require.Error(t, err)
				if tt.expectedError != assert.AnError {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				_, ok := s.Token()
				assert.False(t, ok)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedUser, identity.UserID)
			assert.Equal(t, tt.expectedRole, identity.Role)

			got, ok := s.Token()
			assert.True(t, ok)
			assert.Equal(t, token, got)
		})
	}
}

func TestStore_TokenExpiresInPlace(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	s := New()
	s.now = func() time.Time { return now }

	_, err := s.SetToken(signToken(t, jwt.MapClaims{"user_id": 1, "exp": now.Add(time.Minute).Unix()}))
	require.NoError(t, err)

	_, ok := s.Token()
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = s.Token()
	assert.False(t, ok)

	identity, hasToken := s.Identity()
	assert.True(t, hasToken)
	assert.Equal(t, 1, identity.UserID)

	s.ClearToken()
	_, hasToken = s.Identity()
	assert.False(t, hasToken)
}

func TestStore_Theme(t *testing.T) {
	s := New()
	assert.Equal(t, ThemeLight, s.Theme())

	require.NoError(t, s.SetTheme(ThemeDark))
	assert.Equal(t, ThemeDark, s.Theme())

	err := s.SetTheme("sepia")
	assert.ErrorIs(t, err, ErrInvalidTheme)
	assert.Equal(t, ThemeDark, s.Theme())
}
