package tombstone

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-messenger/internal/kv"
	"github.com/iyunix/go-messenger/internal/testutil"
)

func newStore(t *testing.T, device string) (*Store, kv.Store) {
	backing, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { backing.Close() })
	return New(backing, device, testutil.NewLogger(t)), backing
}

func TestAddContainsAllFor(t *testing.T) {
	s, _ := newStore(t, "phone")

	require.NoError(t, s.Add("chat-1", "m1"))
	require.NoError(t, s.Add("chat-1", "m2"))
	require.NoError(t, s.Add("chat-1", "m1"))
	require.NoError(t, s.Add("chat-2", "m9"))

	ok, err := s.Contains("chat-1", "m2")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Contains("chat-2", "m1")
	require.NoError(t, err)
	require.False(t, ok)

	all, err := s.AllFor("chat-1")
	require.NoError(t, err)
	require.Equal(t, map[string]struct{}{"m1": {}, "m2": {}}, all)
}

func TestStoredAsJSONArrayPerDevice(t *testing.T) {
	s, backing := newStore(t, "phone")
	require.NoError(t, s.Add("chat-1", "m1"))
	require.NoError(t, s.Add("chat-1", "m2"))

	raw, ok, err := backing.Get("deleted_messages_phone_chat-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `["m1","m2"]`, string(raw))

	other := New(backing, "tablet", testutil.NewLogger(t))
	all, err := other.AllFor("chat-1")
	require.NoError(t, err)
	require.Empty(t, all)
}

type warnings struct {
	mu   sync.Mutex
	msgs []string
}

func (w *warnings) Warn(msg string, _ ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msg)
}

func (w *warnings) Debug(string, ...interface{}) {}

func TestUnreadableEntryIsIgnored(t *testing.T) {
	backing, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { backing.Close() })
	logged := &warnings{}
	s := New(backing, "phone", logged)
	require.NoError(t, backing.Set("deleted_messages_phone_chat-1", []byte("{not json")))

	all, err := s.AllFor("chat-1")
	require.NoError(t, err)
	require.Empty(t, all)
	require.Len(t, logged.msgs, 1)
	require.Contains(t, logged.msgs[0], "hidden ids are lost")
	require.Contains(t, logged.msgs[0], "overwrites")

	require.NoError(t, s.Add("chat-1", "m3"))
	ok, err := s.Contains("chat-1", "m3")
	require.NoError(t, err)
	require.True(t, ok)

	raw, _, err := backing.Get("deleted_messages_phone_chat-1")
	require.NoError(t, err)
	require.JSONEq(t, `["m3"]`, string(raw))
}

func TestClear(t *testing.T) {
	s, _ := newStore(t, "phone")
	require.NoError(t, s.Add("chat-1", "m1"))
	require.NoError(t, s.Clear("chat-1"))

	all, err := s.AllFor("chat-1")
	require.NoError(t, err)
	require.Empty(t, all)
}
