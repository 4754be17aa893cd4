// Package tombstone records messages a user hid on this device only.
package tombstone

import (
	"fmt"
	"slices"
	"sync"

	"github.com/valyala/fastjson"

	"github.com/iyunix/go-messenger/internal/kv"
)

const keyPrefix = "deleted_messages_"

type Logger interface {
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Store keeps one JSON array of message ids per (device, chat) key.
type Store struct {
	kv       kv.Store
	deviceID string
	logger   Logger

	mu      sync.Mutex
	parsers fastjson.ParserPool
	arenas  fastjson.ArenaPool
}

func New(store kv.Store, deviceID string, logger Logger) *Store {
	return &Store{kv: store, deviceID: deviceID, logger: logger}
}

func (s *Store) key(chatID string) string {
	return keyPrefix + s.deviceID + "_" + chatID
}

// Add hides messageID in chatID on this device. Adding twice is a no-op.
func (s *Store) Add(chatID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.loadOrdered(chatID)
	if err != nil {
		return err
	}
	if slices.Contains(order, messageID) {
		return nil
	}
	order = append(order, messageID)
	if err := s.kv.Set(s.key(chatID), s.encode(order)); err != nil {
		return fmt.Errorf("save tombstones for chat %s: %w", chatID, err)
	}
	s.logger.Debug("message hidden locally", "chat_id", chatID, "message_id", messageID)
	return nil
}

func (s *Store) Contains(chatID, messageID string) (bool, error) {
	ids, err := s.AllFor(chatID)
	if err != nil {
		return false, err
	}
	_, ok := ids[messageID]
	return ok, nil
}

// AllFor returns the set of ids hidden in chatID on this device.
func (s *Store) AllFor(chatID string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(chatID)
}

// Clear forgets every tombstone of chatID.
func (s *Store) Clear(chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Delete(s.key(chatID))
}

func (s *Store) load(chatID string) (map[string]struct{}, error) {
	order, err := s.loadOrdered(chatID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(order))
	for _, id := range order {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *Store) loadOrdered(chatID string) ([]string, error) {
	raw, ok, err := s.kv.Get(s.key(chatID))
	if err != nil {
		return nil, fmt.Errorf("load tombstones for chat %s: %w", chatID, err)
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	p := s.parsers.Get()
	defer s.parsers.Put(p)
	v, err := p.ParseBytes(raw)
	if err != nil || v.Type() != fastjson.TypeArray {
		s.logger.Warn("unreadable tombstone entry: its hidden ids are lost and the next Add overwrites it",
			"chat_id", chatID, "key", s.key(chatID), "bytes", len(raw), "error", err)
		return nil, nil
	}
	items, _ := v.Array()
	ids := make([]string, 0, len(items))
	for _, item := range items {
		b, err := item.StringBytes()
		if err != nil {
			continue
		}
		ids = append(ids, string(b))
	}
	return ids, nil
}

func (s *Store) encode(ids []string) []byte {
	a := s.arenas.Get()
	defer s.arenas.Put(a)
	arr := a.NewArray()
	for i, id := range ids {
		arr.SetArrayItem(i, a.NewString(id))
	}
	return arr.MarshalTo(nil)
}
