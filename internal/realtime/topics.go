package realtime

import "sync"

// UserTopic names the feed that fires whenever one of userID's chats
// changes in a way that affects the chat list.
func UserTopic(userID string) string {
	return "user:" + userID
}

// Watch is a change signal on a topic. Signals carry no payload and
// coalesce: a reader that falls behind sees one pending signal.
type Watch struct {
	hub   *Hub
	topic string

	mu     sync.Mutex
	ch     chan struct{}
	closed bool
	once   sync.Once
}

// Watch registers on topic. One signal is pending from the start so the
// reader loads the initial state.
func (h *Hub) Watch(topic string) *Watch {
	w := &Watch{hub: h, topic: topic, ch: make(chan struct{}, 1)}
	w.ch <- struct{}{}

	h.topicsMu.Lock()
	set, ok := h.topics[topic]
	if !ok {
		set = make(map[*Watch]struct{})
		h.topics[topic] = set
	}
	set[w] = struct{}{}
	h.topicsMu.Unlock()
	return w
}

// Notify signals every watcher of topic.
func (h *Hub) Notify(topic string) {
	h.topicsMu.Lock()
	watchers := make([]*Watch, 0, len(h.topics[topic]))
	for w := range h.topics[topic] {
		watchers = append(watchers, w)
	}
	h.topicsMu.Unlock()

	for _, w := range watchers {
		w.signal()
	}
}

func (w *Watch) C() <-chan struct{} {
	return w.ch
}

func (w *Watch) signal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// Close detaches the watch and closes C. It is safe to call more than once.
func (w *Watch) Close() {
	w.once.Do(func() {
		h := w.hub
		h.topicsMu.Lock()
		if set, ok := h.topics[w.topic]; ok {
			delete(set, w)
			if len(set) == 0 {
				delete(h.topics, w.topic)
			}
		}
		h.topicsMu.Unlock()

		w.mu.Lock()
		w.closed = true
		close(w.ch)
		w.mu.Unlock()
	})
}
