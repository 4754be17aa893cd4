package services

import (
	"context"
	"sync"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/realtime"
)

// Summaries lists the signed-in user's chats, newest first, with the peer's
// display name and the unread count.
func (m *Messenger) Summaries(ctx context.Context) ([]ChatSummary, error) {
	uid, err := m.identity.RequireUser()
	if err != nil {
		return nil, err
	}
	return m.summariesFor(ctx, uid)
}

func (m *Messenger) summariesFor(ctx context.Context, uid string) ([]ChatSummary, error) {
	sessions, err := m.directory.ListForUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	out := make([]ChatSummary, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		peer := s.OtherParticipant(uid)
		unread, err := m.engine.UnreadCount(ctx, s.ID, uid)
		if err != nil {
			return nil, err
		}
		name := peer
		profile, err := m.users.Profile(ctx, peer)
		switch {
		case err == nil:
			name = profile.DisplayName
		case domain.KindOf(err) != domain.KindNotFound:
			return nil, err
		}
		out = append(out, ChatSummary{
			ChatID:        s.ID,
			PeerID:        peer,
			PeerName:      name,
			LastMessage:   s.LastMessage,
			LastMessageAt: s.LastMessageAt,
			Unread:        unread,
		})
	}
	return out, nil
}

// summaryWatch keeps one chat list live for one user.
type summaryWatch struct {
	m      *Messenger
	uid    string
	watch  *realtime.Watch
	onList func([]ChatSummary)

	ctx       context.Context
	cancel    context.CancelFunc
	deliverMu sync.Mutex
	once      sync.Once
}

// WatchSummaries delivers the signed-in user's chat list now and again after
// every send, read receipt, deletion or new chat that touches it. onList is
// never called concurrently with itself. The returned func stops the watch;
// signing out stops it too.
func (m *Messenger) WatchSummaries(ctx context.Context, onList func([]ChatSummary)) (func(), error) {
	uid, err := m.identity.RequireUser()
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w := &summaryWatch{
		m:      m,
		uid:    uid,
		watch:  m.engine.WatchChats(uid),
		onList: onList,
		ctx:    wctx,
		cancel: cancel,
	}

	m.mu.Lock()
	m.watches[w] = struct{}{}
	m.mu.Unlock()

	go w.run()
	return func() {
		m.mu.Lock()
		delete(m.watches, w)
		m.mu.Unlock()
		w.close()
	}, nil
}

func (w *summaryWatch) run() {
	for range w.watch.C() {
		if w.ctx.Err() != nil {
			return
		}
		list, err := w.m.summariesFor(w.ctx, w.uid)
		if err != nil {
			if w.ctx.Err() == nil {
				w.m.logger.Warn("Chat list reload failed", "user_id", w.uid, "error", err)
			}
			continue
		}

		w.deliverMu.Lock()
		if w.ctx.Err() == nil {
			w.onList(list)
		}
		w.deliverMu.Unlock()
	}
}

// close stops the watch. No delivery starts after it returns.
func (w *summaryWatch) close() {
	w.once.Do(func() {
		w.cancel()
		w.watch.Close()
	})
}
