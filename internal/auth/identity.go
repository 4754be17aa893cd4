package auth

import (
	"sync"
	"time"

	"github.com/iyunix/go-messenger/internal/domain"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Identity holds the signed-in user of this device. An empty string means
// nobody is signed in.
type Identity struct {
	secret []byte
	logger Logger

	mu        sync.RWMutex
	current   string
	nextID    int
	listeners map[int]func(userID string)
}

func NewIdentity(secretKey []byte, logger Logger) *Identity {
	return &Identity{
		secret:    secretKey,
		logger:    logger,
		listeners: make(map[int]func(string)),
	}
}

// CurrentUser returns the signed-in user id, or "" when signed out.
func (i *Identity) CurrentUser() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.current
}

// RequireUser is CurrentUser that fails when nobody is signed in.
func (i *Identity) RequireUser() (string, error) {
	if uid := i.CurrentUser(); uid != "" {
		return uid, nil
	}
	return "", domain.NewPolicyError("require_user", domain.ErrNotSignedIn, "Please sign in first")
}

// OnIdentityChange registers cb for every sign-in and sign-out. The returned
// func unregisters it.
func (i *Identity) OnIdentityChange(cb func(userID string)) func() {
	i.mu.Lock()
	id := i.nextID
	i.nextID++
	i.listeners[id] = cb
	i.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			i.mu.Lock()
			delete(i.listeners, id)
			i.mu.Unlock()
		})
	}
}

// SignInWithToken verifies token and makes its subject the current user.
func (i *Identity) SignInWithToken(token string) (string, error) {
	uid, err := ValidateToken(token, i.secret)
	if err != nil {
		i.logger.Warn("Rejected identity token", "error", err)
		return "", err
	}
	i.set(uid)
	i.logger.Info("User signed in", "user_id", uid)
	return uid, nil
}

// IssueToken signs a token for userID with this identity's secret.
func (i *Identity) IssueToken(userID string, ttl time.Duration) (string, error) {
	return GenerateToken(userID, i.secret, ttl)
}

func (i *Identity) SignOut() {
	if prev := i.CurrentUser(); prev != "" {
		i.logger.Info("User signed out", "user_id", prev)
	}
	i.set("")
}

func (i *Identity) set(uid string) {
	i.mu.Lock()
	if i.current == uid {
		i.mu.Unlock()
		return
	}
	i.current = uid
	cbs := make([]func(string), 0, len(i.listeners))
	for _, cb := range i.listeners {
		cbs = append(cbs, cb)
	}
	i.mu.Unlock()

	for _, cb := range cbs {
		cb(uid)
	}
}
