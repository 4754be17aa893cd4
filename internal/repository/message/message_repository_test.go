package message

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/testutil"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo MessageRepository, id, from, to string, at time.Time) *domain.Message {
	t.Helper()
	msg, err := repo.Create(context.Background(), &domain.Message{
		ID: id, ChatID: "chat-1", SenderID: from, ReceiverID: to, Text: "text " + id, SentAt: at,
	})
	require.NoError(t, err)
	return msg
}

func TestFindByChatIDOrdersBySentAtThenID(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(testutil.NewTestDB(t), testutil.NewLogger(t))

	seed(t, repo, "m-b", "alice", "bob", t0)
	seed(t, repo, "m-c", "bob", "alice", t0.Add(-time.Minute))
	seed(t, repo, "m-a", "alice", "bob", t0)

	messages, err := repo.FindByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Equal(t, []string{"m-c", "m-a", "m-b"}, []string{messages[0].ID, messages[1].ID, messages[2].ID})
	require.Empty(t, messages[0].ReadBy)
}

func TestMarkReadIsIdempotentAndScopedToReceiver(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(testutil.NewTestDB(t), testutil.NewLogger(t))

	seed(t, repo, "m1", "alice", "bob", t0)
	seed(t, repo, "m2", "alice", "bob", t0.Add(time.Second))
	seed(t, repo, "m3", "bob", "alice", t0.Add(2*time.Second))

	unread, err := repo.CountUnread(ctx, "chat-1", "bob")
	require.NoError(t, err)
	require.EqualValues(t, 2, unread)

	marked, err := repo.MarkRead(ctx, "chat-1", "bob", t0.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 2, marked)

	marked, err = repo.MarkRead(ctx, "chat-1", "bob", t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.Zero(t, marked)

	unread, err = repo.CountUnread(ctx, "chat-1", "bob")
	require.NoError(t, err)
	require.Zero(t, unread)

	unread, err = repo.CountUnread(ctx, "chat-1", "alice")
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)

	msg, err := repo.FindByID(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, msg.ReadBy)

	own, err := repo.FindByID(ctx, "m3")
	require.NoError(t, err)
	require.False(t, own.IsReadBy("bob"))
}

func TestMarkDeletedForEveryoneOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(testutil.NewTestDB(t), testutil.NewLogger(t))
	_, err := repo.Create(ctx, &domain.Message{
		ID: "m1", ChatID: "chat-1", SenderID: "alice", ReceiverID: "bob", SentAt: t0, Text: "original text",
		Media: &domain.Media{URL: "blob://x", Kind: domain.MediaImage, FileName: "x.png", Size: 10},
	})
	require.NoError(t, err)

	changed, err := repo.MarkDeletedForEveryone(ctx, "m1", t0.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = repo.MarkDeletedForEveryone(ctx, "m1", t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.False(t, changed)

	msg, err := repo.FindByID(ctx, "m1")
	require.NoError(t, err)
	require.True(t, msg.DeletedForEveryone)
	// only the flag and its timestamp change; the content stays in the log
	require.Equal(t, "original text", msg.Text)
	require.NotNil(t, msg.Media)
	require.Equal(t, "x.png", msg.Media.FileName)
	require.True(t, msg.DeletedAt.Equal(t0.Add(time.Hour)))
}

func TestDeleteByChatIDRemovesReads(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db, testutil.NewLogger(t))
	seed(t, repo, "m1", "alice", "bob", t0)
	_, err := repo.MarkRead(ctx, "chat-1", "bob", t0)
	require.NoError(t, err)

	deleted, err := repo.DeleteByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	var reads int64
	require.NoError(t, db.Model(&domain.MessageRead{}).Count(&reads).Error)
	require.Zero(t, reads)

	_, err = repo.FindByID(ctx, "m1")
	require.ErrorIs(t, err, domain.ErrMessageNotFound)
}
