package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer("secret", time.Hour).WithClock(func() time.Time { return now })

	t.Run("Happy path - round trip keeps identity", func(t *testing.T) {
		raw, err := issuer.Issue("room-1", "p-1", "방장", true)
		require.NoError(t, err)

		claims, err := issuer.Verify(raw)
		require.NoError(t, err)
		assert.Equal(t, "room-1", claims.RoomID)
		assert.Equal(t, "p-1", claims.ParticipantID)
		assert.Equal(t, "방장", claims.Nickname)
		assert.True(t, claims.IsHost)
		assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("Unhappy path - expired token", func(t *testing.T) {
		raw, err := issuer.Issue("room-1", "p-1", "guest", false)
		require.NoError(t, err)

		later := NewIssuer("secret", time.Hour).WithClock(func() time.Time { return now.Add(2 * time.Hour) })
		_, err = later.Verify(raw)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Unhappy path - wrong secret", func(t *testing.T) {
		raw, err := issuer.Issue("room-1", "p-1", "guest", false)
		require.NoError(t, err)

		other := NewIssuer("other", time.Hour).WithClock(func() time.Time { return now })
		_, err = other.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Unhappy path - garbage", func(t *testing.T) {
		_, err := issuer.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestDecode(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Happy path - decodes without the secret", func(t *testing.T) {
		raw, err := NewIssuer("secret", time.Hour).WithClock(func() time.Time { return now }).Issue("room-1", "p-2", "guest", false)
		require.NoError(t, err)

		claims, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "p-2", claims.ParticipantID)
		assert.False(t, claims.IsHost)
		assert.False(t, claims.Expired(now))
		assert.True(t, claims.Expired(now.Add(time.Hour)))
	})

	t.Run("Happy path - missing exp counts as expired", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RoomID: "room-1", ParticipantID: "p-3"}).SignedString([]byte("x"))
		require.NoError(t, err)

		claims, err := Decode(raw)
		require.NoError(t, err)
		assert.True(t, claims.Expired(now))
	})

	t.Run("Unhappy path - malformed", func(t *testing.T) {
		_, err := Decode("a.b")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
