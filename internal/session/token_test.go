package session

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueVerify(t *testing.T) {
	iss := NewIssuer("https://id.example.com", secret, 0, 0)

	tk, err := iss.Issue("acc-1", false)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, tk.ExpiresIn)

	sub, err := iss.Verify(tk.Value)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", sub)

	long, err := iss.Issue("acc-1", true)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, long.ExpiresIn)
}

func TestVerify_Rejects(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	iss := NewIssuer("https://id.example.com", secret, time.Minute, time.Hour)
	iss.Now = func() time.Time { return now }

	tk, err := iss.Issue("acc-1", false)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := *iss
		later.Now = func() time.Time { return now.Add(2 * time.Minute) }
		_, err := later.Verify(tk.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("other secret", func(t *testing.T) {
		other := *iss
		other.Secret = []byte("ffffffffffffffffffffffffffffffff")
		_, err := other.Verify(tk.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("other issuer", func(t *testing.T) {
		other := *iss
		other.Iss = "https://evil.example.com"
		_, err := other.Verify(tk.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("alg none", func(t *testing.T) {
		raw, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{
			"sub": "acc-1", "iss": iss.Iss, "exp": now.Add(time.Minute).Unix(),
		}).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = iss.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := iss.Verify("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIssue_EmptySubject(t *testing.T) {
	_, err := NewIssuer("x", secret, 0, 0).Issue("", false)
	assert.Error(t, err)
}
