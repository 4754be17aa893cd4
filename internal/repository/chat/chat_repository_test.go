package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/testutil"
)

func TestCreateIfAbsentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(testutil.NewTestDB(t), testutil.NewLogger(t))
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	first, err := repo.CreateIfAbsent(ctx, domain.NewChatSession("alice", "bob", t0))
	require.NoError(t, err)

	second, err := repo.CreateIfAbsent(ctx, domain.NewChatSession("bob", "alice", t0.Add(time.Hour)))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.True(t, second.CreatedAt.Equal(t0))

	chats, err := repo.FindByParticipant(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, chats, 1)
}

func TestCreateIfAbsentRejectsSelfChat(t *testing.T) {
	repo := NewChatRepository(testutil.NewTestDB(t), testutil.NewLogger(t))
	_, err := repo.CreateIfAbsent(context.Background(), domain.NewChatSession("alice", "alice", time.Now()))
	require.ErrorIs(t, err, domain.ErrInvalidChatPair)
}

func TestFindByParticipantOrdersByActivity(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(testutil.NewTestDB(t), testutil.NewLogger(t))
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	older, err := repo.CreateIfAbsent(ctx, domain.NewChatSession("alice", "bob", t0))
	require.NoError(t, err)
	newer, err := repo.CreateIfAbsent(ctx, domain.NewChatSession("alice", "carol", t0))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateLastMessage(ctx, older.ID, "hi", t0.Add(2*time.Hour)))
	require.NoError(t, repo.UpdateLastMessage(ctx, newer.ID, "yo", t0.Add(time.Hour)))

	chats, err := repo.FindByParticipant(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	require.Equal(t, older.ID, chats[0].ID)
	require.Equal(t, "hi", chats[0].LastMessage)

	err = repo.UpdateLastMessage(ctx, "missing", "x", t0)
	require.ErrorIs(t, err, domain.ErrChatNotFound)
}

func TestUpdateTranslationSettingKeepsOtherUser(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(testutil.NewTestDB(t), testutil.NewLogger(t))
	chat, err := repo.CreateIfAbsent(ctx, domain.NewChatSession("alice", "bob", time.Now()))
	require.NoError(t, err)

	_, err = repo.UpdateTranslationSetting(ctx, chat.ID, "bob", domain.TranslationSetting{Enabled: true, TargetLanguage: "es"})
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TranslationSetting{Enabled: true, TargetLanguage: "es"}, stored.TranslationSettings.For("bob"))
	require.Equal(t, domain.DefaultTranslationSetting(), stored.TranslationSettings.For("alice"))

	_, err = repo.UpdateTranslationSetting(ctx, "missing", "bob", domain.DefaultTranslationSetting())
	require.ErrorIs(t, err, domain.ErrChatNotFound)
}
