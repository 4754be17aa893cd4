// File: internal/services/messenger.go
package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/iyunix/go-messenger/internal/auth"
	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/services/blockgate"
	"github.com/iyunix/go-messenger/internal/services/chat"
	"github.com/iyunix/go-messenger/internal/services/directory"
	"github.com/iyunix/go-messenger/internal/services/media"
	"github.com/iyunix/go-messenger/internal/services/user_services"
)

// MessengerDeps wires a Messenger.
type MessengerDeps struct {
	Identity  *auth.Identity
	Directory *directory.Directory
	Engine    *chat.Engine
	Users     user_services.UserServiceInterface
	Gate      *blockgate.Gate
	Blobs     media.BlobStore
	Logger    Logger
}

// Messenger is the signed-in user's entry point to the messaging core. Every
// call acts as Identity.CurrentUser().
type Messenger struct {
	identity  *auth.Identity
	directory *directory.Directory
	engine    *chat.Engine
	users     user_services.UserServiceInterface
	gate      *blockgate.Gate
	blobs     media.BlobStore
	logger    Logger
	now       func() time.Time

	mu       sync.Mutex
	open     map[*chat.Subscription]struct{}
	watches  map[*summaryWatch]struct{}
	unlisten func()
}

// ChatSummary is one row of the chat list.
type ChatSummary struct {
	ChatID        string
	PeerID        string
	PeerName      string
	LastMessage   string
	LastMessageAt time.Time
	Unread        int
}

// Attachment is a file about to be sent.
type Attachment struct {
	FileName string
	MimeType string
	Size     int64
	Body     io.Reader
}

func NewMessenger(deps MessengerDeps) (*Messenger, error) {
	// Validate dependencies
	if deps.Identity == nil {
		return nil, errors.New("identity is required")
	}
	if deps.Directory == nil || deps.Engine == nil {
		return nil, errors.New("directory and engine are required")
	}
	if deps.Users == nil || deps.Gate == nil {
		return nil, errors.New("user service and block gate are required")
	}
	if deps.Blobs == nil {
		return nil, errors.New("blob store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = &NoOpLogger{}
	}

	m := &Messenger{
		identity:  deps.Identity,
		directory: deps.Directory,
		engine:    deps.Engine,
		users:     deps.Users,
		gate:      deps.Gate,
		blobs:     deps.Blobs,
		logger:    logger,
		now:       time.Now,
		open:      make(map[*chat.Subscription]struct{}),
		watches:   make(map[*summaryWatch]struct{}),
	}
	// Any identity change invalidates views opened for the previous user.
	m.unlisten = deps.Identity.OnIdentityChange(func(string) { m.closeAll() })
	return m, nil
}

// OpenChat creates or fetches the session with peerID and subscribes to it.
func (m *Messenger) OpenChat(ctx context.Context, peerID string, onView func(chat.View)) (*chat.Subscription, error) {
	uid, err := m.identity.RequireUser()
	if err != nil {
		return nil, err
	}
	session, err := m.directory.GetOrCreate(ctx, uid, peerID)
	if err != nil {
		return nil, err
	}
	m.engine.AnnounceChat(session)
	sub, err := m.engine.Subscribe(ctx, session.ID, uid, onView)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.open[sub] = struct{}{}
	m.mu.Unlock()
	return sub, nil
}

// CloseChat closes a view returned by OpenChat.
func (m *Messenger) CloseChat(sub *chat.Subscription) {
	m.mu.Lock()
	delete(m.open, sub)
	m.mu.Unlock()
	sub.Close()
}

func (m *Messenger) closeAll() {
	m.mu.Lock()
	subs := make([]*chat.Subscription, 0, len(m.open))
	for sub := range m.open {
		subs = append(subs, sub)
	}
	m.open = make(map[*chat.Subscription]struct{})
	watches := make([]*summaryWatch, 0, len(m.watches))
	for w := range m.watches {
		watches = append(watches, w)
	}
	m.watches = make(map[*summaryWatch]struct{})
	m.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	for _, w := range watches {
		w.close()
	}
	if len(subs)+len(watches) > 0 {
		m.logger.Info("Closed chat views after identity change", "views", len(subs), "chat_lists", len(watches))
	}
}

// Close detaches from the identity and closes every open view.
func (m *Messenger) Close() {
	m.unlisten()
	m.closeAll()
}

// session returns the signed-in user and chatID's session, checking
// membership.
func (m *Messenger) session(ctx context.Context, chatID string) (string, *domain.ChatSession, error) {
	uid, err := m.identity.RequireUser()
	if err != nil {
		return "", nil, err
	}
	session, err := m.directory.Get(ctx, chatID, uid)
	if err != nil {
		return "", nil, err
	}
	return uid, session, nil
}

// Send posts text to chatID, optionally as a reply to replyToID.
func (m *Messenger) Send(ctx context.Context, chatID, text, replyToID string) (*domain.Message, error) {
	uid, session, err := m.session(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return m.engine.Send(ctx, chat.SendRequest{
		ChatID:     chatID,
		SenderID:   uid,
		ReceiverID: session.OtherParticipant(uid),
		Text:       text,
		ReplyToID:  replyToID,
	})
}

// SendMedia validates and uploads an attachment, then posts it with an
// optional caption. Nothing is uploaded when the send would be denied.
func (m *Messenger) SendMedia(ctx context.Context, chatID string, file Attachment, caption string) (*domain.Message, error) {
	if err := media.Validate(file.Size, file.MimeType); err != nil {
		return nil, err
	}
	uid, session, err := m.session(ctx, chatID)
	if err != nil {
		return nil, err
	}
	peer := session.OtherParticipant(uid)

	decision, err := m.gate.CanSend(ctx, uid, peer)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Err()
	}

	objectPath := media.ObjectPath(uid, chatID, m.now(), file.FileName)
	url, err := m.blobs.Upload(ctx, media.SizedReader(file.Body, file.Size), objectPath)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			m.logger.Warn("Attachment rejected", "chat_id", chatID, "object_path", objectPath, "error", err)
			return nil, err
		}
		m.logger.Error("Attachment upload failed", "chat_id", chatID, "object_path", objectPath, "error", err)
		return nil, domain.NewBackendError("upload_media", err)
	}
	m.logger.Debug("Attachment uploaded", "chat_id", chatID, "object_path", objectPath, "size", file.Size)

	return m.engine.Send(ctx, chat.SendRequest{
		ChatID:     chatID,
		SenderID:   uid,
		ReceiverID: peer,
		Text:       caption,
		Media: &domain.Media{
			URL:      url,
			Kind:     media.KindFor(file.MimeType),
			FileName: file.FileName,
			Size:     file.Size,
		},
	})
}

func (m *Messenger) DeleteLocal(ctx context.Context, chatID, messageID string) error {
	if _, _, err := m.session(ctx, chatID); err != nil {
		return err
	}
	return m.engine.DeleteLocal(ctx, chatID, messageID)
}

func (m *Messenger) DeleteForEveryone(ctx context.Context, chatID, messageID string) error {
	uid, _, err := m.session(ctx, chatID)
	if err != nil {
		return err
	}
	return m.engine.DeleteForEveryone(ctx, chatID, messageID, uid)
}

func (m *Messenger) MarkRead(ctx context.Context, chatID string) error {
	uid, err := m.identity.RequireUser()
	if err != nil {
		return err
	}
	return m.engine.MarkRead(ctx, chatID, uid)
}

func (m *Messenger) ClearHistory(ctx context.Context, chatID string) error {
	uid, err := m.identity.RequireUser()
	if err != nil {
		return err
	}
	return m.engine.ClearHistory(ctx, chatID, uid)
}

// SetTranslation stores the signed-in user's translation preference for
// chatID. The language is canonicalized first.
func (m *Messenger) SetTranslation(ctx context.Context, chatID string, enabled bool, language string) error {
	uid, err := m.identity.RequireUser()
	if err != nil {
		return err
	}
	return m.engine.UpdateTranslationSetting(ctx, chatID, uid, domain.TranslationSetting{
		Enabled:        enabled,
		TargetLanguage: language,
	})
}

func (m *Messenger) Block(ctx context.Context, other string) error {
	uid, err := m.identity.RequireUser()
	if err != nil {
		return err
	}
	return m.users.Block(ctx, uid, other)
}

func (m *Messenger) Unblock(ctx context.Context, other string) error {
	uid, err := m.identity.RequireUser()
	if err != nil {
		return err
	}
	return m.users.Unblock(ctx, uid, other)
}

// Contacts lists the users the signed-in user can start a chat with.
func (m *Messenger) Contacts(ctx context.Context) ([]domain.User, error) {
	uid, err := m.identity.RequireUser()
	if err != nil {
		return nil, err
	}
	return m.users.Contacts(ctx, uid)
}
