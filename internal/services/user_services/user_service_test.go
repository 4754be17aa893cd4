package user_services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/repository/user"
	"github.com/iyunix/go-messenger/internal/testutil"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) *UserService {
	repo := user.NewGormUserRepository(testutil.NewTestDB(t), testutil.NewLogger(t))
	return NewUserServiceWithClock(repo, testutil.NewLogger(t), func() time.Time { return fixedNow })
}

func TestRegisterValidatesDisplayName(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	_, err := s.Register(ctx, "u1", "a@example.com", "bad name!")
	require.ErrorIs(t, err, domain.ErrInvalidDisplayName)
	require.Equal(t, domain.DisplayNameError, domain.ReasonOf(err))

	u, err := s.Register(ctx, "u1", "a@example.com", "alice_1")
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusActive, u.Status)
	require.Empty(t, u.BlockList)
}

func TestUpdateDisplayNameAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	_, err := s.Register(ctx, "u1", "", "alice")
	require.NoError(t, err)

	u, err := s.UpdateDisplayName(ctx, "u1", "alice_2")
	require.NoError(t, err)
	require.Equal(t, "alice_2", u.DisplayName)
	require.NotNil(t, u.ProfileUpdatedAt)

	_, err = s.UpdateDisplayName(ctx, "u1", "")
	require.ErrorIs(t, err, domain.ErrInvalidDisplayName)

	require.NoError(t, s.RecordLogin(ctx, "u1"))
	u, err = s.Profile(ctx, "u1")
	require.NoError(t, err)
	require.True(t, u.LastLoginAt.Equal(fixedNow))
}

func TestDeletedIsTerminal(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	_, err := s.Register(ctx, "u1", "", "alice")
	require.NoError(t, err)

	require.NoError(t, s.Suspend(ctx, "u1"))
	require.NoError(t, s.Reinstate(ctx, "u1"))
	require.NoError(t, s.DeleteAccount(ctx, "u1"))
	require.NoError(t, s.DeleteAccount(ctx, "u1"))

	err = s.Reinstate(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrAccountDeleted)
	require.ErrorIs(t, s.RecordLogin(ctx, "u1"), domain.ErrAccountDeleted)

	u, err := s.Profile(ctx, "u1")
	require.NoError(t, err)
	require.True(t, u.IsDeleted())
	require.NotNil(t, u.DeletedAt)
}

func TestBlockUnblock(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	for _, id := range []string{"a", "b"} {
		_, err := s.Register(ctx, id, "", "user_"+id)
		require.NoError(t, err)
	}

	require.NoError(t, s.Block(ctx, "a", "b"))
	require.NoError(t, s.Block(ctx, "a", "b"))

	blocked, err := s.IsBlocked(ctx, "b", "a")
	require.NoError(t, err)
	require.True(t, blocked)

	u, err := s.Profile(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, u.BlockList)

	require.NoError(t, s.Unblock(ctx, "a", "b"))
	blocked, err = s.IsBlocked(ctx, "a", "b")
	require.NoError(t, err)
	require.False(t, blocked)

	require.ErrorIs(t, s.Block(ctx, "a", "a"), domain.ErrSelfBlock)
	require.ErrorIs(t, s.Block(ctx, "a", "ghost"), domain.ErrUserNotFound)
}

func TestContactsSkipSelfAndDeletedAccounts(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	for _, u := range []struct{ id, name string }{
		{"u1", "carol"}, {"u2", "alice"}, {"u3", "bob"}, {"u4", "dave"},
	} {
		_, err := s.Register(ctx, u.id, "", u.name)
		require.NoError(t, err)
	}
	require.NoError(t, s.DeleteAccount(ctx, "u4"))
	require.NoError(t, s.Suspend(ctx, "u3"))

	contacts, err := s.Contacts(ctx, "u1")
	require.NoError(t, err)
	names := make([]string, 0, len(contacts))
	for _, c := range contacts {
		names = append(names, c.DisplayName)
	}
	require.Equal(t, []string{"alice", "bob"}, names)
}
