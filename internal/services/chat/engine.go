// File: internal/services/chat/engine.go
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/metrics"
	"github.com/iyunix/go-messenger/internal/realtime"
	"github.com/iyunix/go-messenger/internal/repository/message"
	"github.com/iyunix/go-messenger/internal/repository/user"
	"github.com/iyunix/go-messenger/internal/services/blockgate"
	"github.com/iyunix/go-messenger/internal/services/directory"
	"github.com/iyunix/go-messenger/internal/services/translation"
	"github.com/iyunix/go-messenger/internal/tombstone"
)

// Dependencies are the collaborators of an Engine. Overlay may be nil, in
// which case every message is shown untranslated.
type Dependencies struct {
	Messages   message.MessageRepository
	Users      user.UserRepository
	Directory  *directory.Directory
	Gate       *blockgate.Gate
	Tombstones *tombstone.Store
	Overlay    *translation.Overlay
	Hub        *realtime.Hub
	Metrics    *metrics.Metrics
	Logger     Logger
}

// Engine keeps one device's views of its open chats in sync with the shared
// message log, and routes every write to that log.
type Engine struct {
	messages   message.MessageRepository
	users      user.UserRepository
	directory  *directory.Directory
	gate       *blockgate.Gate
	tombstones *tombstone.Store
	overlay    *translation.Overlay
	hub        *realtime.Hub
	metrics    *metrics.Metrics
	logger     Logger
	config     *Config
	now        func() time.Time

	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewEngine(deps Dependencies, config *Config) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.New(nil)
	}
	return &Engine{
		messages:   deps.Messages,
		users:      deps.Users,
		directory:  deps.Directory,
		gate:       deps.Gate,
		tombstones: deps.Tombstones,
		overlay:    deps.Overlay,
		hub:        deps.Hub,
		metrics:    m,
		logger:     deps.Logger,
		config:     config,
		now:        time.Now,
		subs:       make(map[string]map[*Subscription]struct{}),
	}, nil
}

// SetClock replaces the engine's time source.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) track(sub *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	set, ok := e.subs[sub.chatID]
	if !ok {
		set = make(map[*Subscription]struct{})
		e.subs[sub.chatID] = set
	}
	set[sub] = struct{}{}
}

func (e *Engine) untrack(sub *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if set, ok := e.subs[sub.chatID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(e.subs, sub.chatID)
		}
	}
}

// refreshChat re-runs reconciliation for every open view of chatID on this
// device. Used for changes that do not pass through the shared log.
func (e *Engine) refreshChat(chatID string) {
	e.mu.Lock()
	subs := make([]*Subscription, 0, len(e.subs[chatID]))
	for sub := range e.subs[chatID] {
		subs = append(subs, sub)
	}
	e.mu.Unlock()

	for _, sub := range subs {
		sub.Refresh()
	}
}

// publish pushes a fresh snapshot of chatID to every subscriber and tells
// both participants' chat lists to reload. The write that triggered it has
// already succeeded, so failures are only logged.
func (e *Engine) publish(ctx context.Context, chatID string) {
	if err := e.hub.Publish(ctx, chatID); err != nil {
		e.logger.Warn("change feed publish failed", "chat_id", chatID, "error", err)
	}
	session, err := e.directory.Lookup(ctx, chatID)
	if err != nil {
		e.logger.Warn("chat list not notified", "chat_id", chatID, "error", err)
		return
	}
	e.AnnounceChat(session)
}

// AnnounceChat signals the chat-list watchers of both participants.
func (e *Engine) AnnounceChat(session *domain.ChatSession) {
	for _, uid := range session.Participants() {
		e.hub.Notify(realtime.UserTopic(uid))
	}
}

// WatchChats returns a signal that fires whenever one of userID's chats
// changes. The first signal is pending immediately.
func (e *Engine) WatchChats(userID string) *realtime.Watch {
	return e.hub.Watch(realtime.UserTopic(userID))
}

// DeleteWindowRemaining is how long the sender of m can still delete it
// for everyone.
func (e *Engine) DeleteWindowRemaining(m *domain.Message) time.Duration {
	return domain.DeleteWindowRemaining(m.SentAt, e.now())
}
