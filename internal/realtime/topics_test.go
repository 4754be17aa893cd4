package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/testutil"
)

func newTopicHub(t *testing.T) *Hub {
	store := &fakeStore{messages: map[string][]domain.Message{}}
	return NewHub(store.load, testutil.NewLogger(t))
}

func signalled(w *Watch) bool {
	select {
	case _, ok := <-w.C():
		return ok
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func TestWatchStartsWithPendingSignal(t *testing.T) {
	hub := newTopicHub(t)
	w := hub.Watch(UserTopic("alice"))
	defer w.Close()

	require.True(t, signalled(w))
	require.False(t, signalled(w))
}

func TestNotifyCoalescesAndStaysOnTopic(t *testing.T) {
	hub := newTopicHub(t)
	alice := hub.Watch(UserTopic("alice"))
	defer alice.Close()
	bob := hub.Watch(UserTopic("bob"))
	defer bob.Close()
	require.True(t, signalled(alice))
	require.True(t, signalled(bob))

	hub.Notify(UserTopic("alice"))
	hub.Notify(UserTopic("alice"))
	hub.Notify(UserTopic("alice"))

	require.True(t, signalled(alice))
	require.False(t, signalled(alice))
	require.False(t, signalled(bob))
}

func TestWatchCloseDetaches(t *testing.T) {
	hub := newTopicHub(t)
	w := hub.Watch(UserTopic("alice"))
	w.Close()
	w.Close()

	hub.Notify(UserTopic("alice"))
	_, open := <-w.C()
	if open {
		_, open = <-w.C()
	}
	require.False(t, open)

	hub.topicsMu.Lock()
	defer hub.topicsMu.Unlock()
	require.Empty(t, hub.topics)
}
