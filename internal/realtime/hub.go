// Package realtime fans out chat snapshots to live subscribers. Every
// Publish reloads the full message list of a chat and hands it to each
// subscriber of that chat; a slow subscriber only ever sees the latest one.
package realtime

import (
	"context"
	"sync"

	"github.com/iyunix/go-messenger/internal/domain"
)

// Loader reads the current message list of a chat from the shared store.
type Loader func(ctx context.Context, chatID string) ([]domain.Message, error)

type Logger interface {
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Snapshot is the full state of one chat at one point in time. Seq grows
// strictly per chat.
type Snapshot struct {
	ChatID   string
	Seq      uint64
	Messages []domain.Message
}

type Hub struct {
	load   Loader
	logger Logger

	mu    sync.Mutex
	chats map[string]*chatFeed

	topicsMu sync.Mutex
	topics   map[string]map[*Watch]struct{}
}

type chatFeed struct {
	mu   sync.Mutex // serializes load+deliver so Seq order matches store order
	seq  uint64
	subs map[*Subscription]struct{}
}

func NewHub(load Loader, logger Logger) *Hub {
	return &Hub{
		load:   load,
		logger: logger,
		chats:  make(map[string]*chatFeed),
		topics: make(map[string]map[*Watch]struct{}),
	}
}

func (h *Hub) feed(chatID string) *chatFeed {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.chats[chatID]
	if !ok {
		f = &chatFeed{subs: make(map[*Subscription]struct{})}
		h.chats[chatID] = f
	}
	return f
}

// Subscribe registers a listener on chatID and delivers the current state
// before returning.
func (h *Hub) Subscribe(ctx context.Context, chatID string) (*Subscription, error) {
	f := h.feed(chatID)
	sub := &Subscription{hub: h, chatID: chatID, ch: make(chan Snapshot, 1)}

	f.mu.Lock()
	defer f.mu.Unlock()
	messages, err := h.load(ctx, chatID)
	if err != nil {
		return nil, domain.NewBackendError("subscribe", err)
	}
	f.seq++
	f.subs[sub] = struct{}{}
	sub.offer(Snapshot{ChatID: chatID, Seq: f.seq, Messages: messages})
	h.logger.Debug("subscriber attached", "chat_id", chatID, "subscribers", len(f.subs))
	return sub, nil
}

// Publish tells every subscriber of chatID that its contents changed.
func (h *Hub) Publish(ctx context.Context, chatID string) error {
	f := h.feed(chatID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return nil
	}
	messages, err := h.load(ctx, chatID)
	if err != nil {
		h.logger.Error("failed to load chat for publish", "chat_id", chatID, "error", err)
		return domain.NewBackendError("publish", err)
	}
	f.seq++
	snap := Snapshot{ChatID: chatID, Seq: f.seq, Messages: messages}
	for sub := range f.subs {
		sub.offer(snap)
	}
	return nil
}

func (h *Hub) remove(sub *Subscription) {
	f := h.feed(sub.chatID)
	f.mu.Lock()
	delete(f.subs, sub)
	f.mu.Unlock()
}

// Subscription receives snapshots of one chat on C until Close.
type Subscription struct {
	hub    *Hub
	chatID string

	mu     sync.Mutex
	ch     chan Snapshot
	last   uint64
	closed bool
	once   sync.Once
}

// C carries snapshots in increasing Seq order. It is closed by Close.
func (s *Subscription) C() <-chan Snapshot {
	return s.ch
}

// offer replaces any undelivered snapshot with snap. Snapshots older than
// one already offered are dropped.
func (s *Subscription) offer(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || snap.Seq <= s.last {
		return
	}
	s.last = snap.Seq
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}
