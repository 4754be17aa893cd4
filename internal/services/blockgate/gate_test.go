package blockgate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/repository/user"
	"github.com/iyunix/go-messenger/internal/testutil"
)

func u(id string, status domain.UserStatus, blocked ...string) *domain.User {
	return &domain.User{ID: id, Status: status, BlockList: blocked}
}

func TestEvaluate(t *testing.T) {
	active := domain.UserStatusActive
	tests := []struct {
		name      string
		sender    *domain.User
		recipient *domain.User
		want      Reason
	}{
		{"allowed", u("a", active), u("b", active), ReasonNone},
		{"legacy empty status", u("a", ""), u("b", ""), ReasonNone},
		{"missing recipient", u("a", active), nil, ReasonRecipientMissing},
		{"deleted recipient", u("a", active), u("b", domain.UserStatusDeleted), ReasonRecipientDeleted},
		{"suspended recipient", u("a", active), u("b", domain.UserStatusSuspended), ReasonRecipientSuspended},
		{"recipient blocked sender", u("a", active), u("b", active, "a"), ReasonBlockedByRecipient},
		{"sender blocked recipient", u("a", active, "b"), u("b", active), ReasonBlockedBySender},
		{"deleted sender", u("a", domain.UserStatusDeleted), u("b", active), ReasonSenderDeleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.sender, tt.recipient)
			require.Equal(t, tt.want, d.Reason)
			require.Equal(t, tt.want == ReasonNone, d.Allowed)
		})
	}
}

func TestBlockIsSymmetric(t *testing.T) {
	a := u("a", domain.UserStatusActive, "b")
	b := u("b", domain.UserStatusActive)

	require.False(t, Evaluate(a, b).Allowed)
	require.False(t, Evaluate(b, a).Allowed)
}

func TestDecisionErr(t *testing.T) {
	require.NoError(t, Evaluate(u("a", ""), u("b", "")).Err())

	err := Evaluate(u("a", ""), u("b", "", "a")).Err()
	require.ErrorIs(t, err, domain.ErrSendDenied)
	require.Equal(t, domain.KindPolicyDenied, domain.KindOf(err))
	require.Equal(t, "This user has blocked you", domain.ReasonOf(err))

	err = Evaluate(u("a", domain.UserStatusDeleted), u("b", "")).Err()
	require.ErrorIs(t, err, domain.ErrAccountDeleted)
}

func TestGateLoadsProfiles(t *testing.T) {
	ctx := context.Background()
	users := user.NewGormUserRepository(testutil.NewTestDB(t), testutil.NewLogger(t))
	_, err := users.Create(ctx, &domain.User{ID: "alice", DisplayName: "alice"})
	require.NoError(t, err)
	_, err = users.Create(ctx, &domain.User{ID: "bob", DisplayName: "bob", BlockList: []string{"alice"}})
	require.NoError(t, err)

	gate := New(users, testutil.NewLogger(t))

	d, err := gate.CanSend(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, ReasonBlockedByRecipient, d.Reason)

	d, err = gate.CanSend(ctx, "alice", "nobody")
	require.NoError(t, err)
	require.Equal(t, ReasonRecipientMissing, d.Reason)
	require.Equal(t, "User not found", d.Message)
}
