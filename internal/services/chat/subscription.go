// File: internal/services/chat/subscription.go
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/iyunix/go-messenger/internal/realtime"
)

// Subscription is one open view of a chat. It reconciles every snapshot
// delivered by the change feed and hands the result to onView. Only the
// pass started for the newest snapshot may deliver; older in-flight passes
// are cancelled and their results dropped.
type Subscription struct {
	engine   *Engine
	chatID   string
	viewerID string
	onView   func(View)
	feed     *realtime.Subscription

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	generation uint64
	last       *realtime.Snapshot
	passCancel context.CancelFunc

	deliverMu sync.Mutex
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Subscribe opens viewerID's view of chatID. The first view is delivered
// asynchronously once the current messages have been reconciled. onView is
// never called concurrently with itself.
func (e *Engine) Subscribe(ctx context.Context, chatID, viewerID string, onView func(View)) (*Subscription, error) {
	if _, err := e.directory.Get(ctx, chatID, viewerID); err != nil {
		return nil, err
	}
	feed, err := e.hub.Subscribe(ctx, chatID)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub := &Subscription{
		engine:   e,
		chatID:   chatID,
		viewerID: viewerID,
		onView:   onView,
		feed:     feed,
		ctx:      subCtx,
		cancel:   cancel,
	}
	e.track(sub)

	sub.wg.Add(1)
	go sub.listen()

	e.logger.Debug("chat view opened", "chat_id", chatID, "user_id", viewerID)
	return sub, nil
}

func (s *Subscription) ChatID() string {
	return s.chatID
}

func (s *Subscription) listen() {
	defer s.wg.Done()
	for snap := range s.feed.C() {
		s.accept(&snap)
	}
}

// accept starts a pass for snap, superseding whatever pass is running.
func (s *Subscription) accept(snap *realtime.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	if s.passCancel != nil {
		s.passCancel()
	}
	s.generation++
	s.last = snap

	passCtx, cancel := context.WithCancel(s.ctx)
	s.passCancel = cancel
	gen := s.generation

	s.wg.Add(1)
	go s.run(passCtx, gen, snap)
}

// Refresh reconciles the last snapshot again, picking up changes that live
// outside the shared log such as local tombstones or translation settings.
func (s *Subscription) Refresh() {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last != nil {
		s.accept(last)
	}
}

func (s *Subscription) current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Subscription) run(ctx context.Context, gen uint64, snap *realtime.Snapshot) {
	defer s.wg.Done()
	e := s.engine
	start := time.Now()

	p, err := e.loadPass(ctx, s.chatID, s.viewerID, snap.Messages)
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Error("reconciliation skipped", "chat_id", s.chatID, "error", err)
		}
		return
	}
	view, err := e.reconcile(ctx, p)
	if err != nil {
		e.metrics.StalePassesDropped.Inc()
		return
	}

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.ctx.Err() != nil || gen != s.current() {
		e.metrics.StalePassesDropped.Inc()
		return
	}
	view.Generation = gen
	s.onView(view)
	e.metrics.ViewsPublished.Inc()
	e.metrics.ObservePass(start)
}

// Close stops the view immediately. No callback starts after Close
// returns. It is safe to call more than once and from inside onView.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.engine.untrack(s)

		// accept adds to wg under mu; take it before the listener can exit.
		s.mu.Lock()
		if s.passCancel != nil {
			s.passCancel()
		}
		s.mu.Unlock()
		s.feed.Close()

		s.engine.logger.Debug("chat view closed", "chat_id", s.chatID, "user_id", s.viewerID)
	})
}

// Wait blocks until every goroutine of a closed subscription has exited.
func (s *Subscription) Wait() {
	s.wg.Wait()
}
