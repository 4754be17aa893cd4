package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/testutil"
)

var secret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("alice", secret, time.Hour)
	require.NoError(t, err)

	uid, err := ValidateToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "alice", uid)
}

func TestValidateTokenRejects(t *testing.T) {
	expired, err := GenerateToken("alice", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, secret)
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	other, err := GenerateToken("alice", []byte("other-secret"), time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(other, secret)
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = ValidateToken("not-a-token", secret)
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = GenerateToken("", secret, time.Hour)
	require.Error(t, err)
}

func TestIdentityNotifiesListeners(t *testing.T) {
	id := NewIdentity(secret, testutil.NewLogger(t))

	var seen []string
	cancel := id.OnIdentityChange(func(uid string) { seen = append(seen, uid) })

	_, err := id.RequireUser()
	require.ErrorIs(t, err, domain.ErrNotSignedIn)

	token, err := id.IssueToken("bob", time.Hour)
	require.NoError(t, err)
	uid, err := id.SignInWithToken(token)
	require.NoError(t, err)
	require.Equal(t, "bob", uid)
	require.Equal(t, "bob", id.CurrentUser())

	_, err = id.SignInWithToken("garbage")
	require.Error(t, err)
	require.Equal(t, "bob", id.CurrentUser())

	id.SignOut()
	require.Equal(t, "", id.CurrentUser())

	cancel()
	id.SignOut()
	_, _ = id.SignInWithToken(token)

	require.Equal(t, []string{"bob", ""}, seen)
}
