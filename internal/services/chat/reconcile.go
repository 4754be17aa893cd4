// File: internal/services/chat/reconcile.go
package chat

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iyunix/go-messenger/internal/domain"
)

// pass holds everything one reconciliation needs besides the engine.
type pass struct {
	chatID   string
	viewerID string
	messages []domain.Message
	hidden   map[string]struct{}
	setting  domain.TranslationSetting
}

// loadPass reads the device-local and per-chat state a pass depends on.
func (e *Engine) loadPass(ctx context.Context, chatID, viewerID string, messages []domain.Message) (*pass, error) {
	hidden, err := e.tombstones.AllFor(chatID)
	if err != nil {
		e.logger.Warn("tombstones unavailable, showing all messages", "chat_id", chatID, "error", err)
		hidden = nil
	}
	setting, err := e.directory.TranslationSetting(ctx, chatID, viewerID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("translation setting unavailable, showing originals", "chat_id", chatID, "viewer_id", viewerID, "error", err)
		setting = domain.DefaultTranslationSetting()
	}
	return &pass{
		chatID:   chatID,
		viewerID: viewerID,
		messages: messages,
		hidden:   hidden,
		setting:  setting,
	}, nil
}

// reconcile turns a snapshot into the viewer's view: order, drop locally
// hidden messages, overlay translations and insert day separators. It
// returns ctx.Err() if the pass was superseded while translating.
func (e *Engine) reconcile(ctx context.Context, p *pass) (View, error) {
	ordered := make([]domain.Message, len(p.messages))
	copy(ordered, p.messages)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Less(&ordered[j]) })

	views := make([]MessageView, 0, len(ordered))
	for i := range ordered {
		m := &ordered[i]
		// a global deletion supersedes local hiding: everyone sees the placeholder
		if _, hidden := p.hidden[m.ID]; hidden && !m.DeletedForEveryone {
			continue
		}
		views = append(views, toView(m, p.viewerID))
	}

	if p.setting.Enabled && e.overlay != nil {
		e.translate(ctx, views, p.setting.TargetLanguage)
	}
	if err := ctx.Err(); err != nil {
		return View{}, err
	}

	return View{
		ChatID:   p.chatID,
		ViewerID: p.viewerID,
		Items:    e.withSeparators(views),
	}, nil
}

func toView(m *domain.Message, viewerID string) MessageView {
	v := MessageView{
		ID:         m.ID,
		ChatID:     m.ChatID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		SentAt:     m.SentAt,
		ReplyTo:    m.ReplyTo,
		Deleted:    m.DeletedForEveryone,
		DeletedAt:  m.DeletedAt,
		ReadBy:     append([]string(nil), m.ReadBy...),
		Outgoing:   m.SenderID == viewerID,
	}
	if !m.DeletedForEveryone {
		v.Text = m.Text
		v.Media = m.Media
	}
	return v
}

// translate fills TranslatedText of the counterparty's messages. All calls
// settle before it returns; a failed call leaves the original text alone.
func (e *Engine) translate(ctx context.Context, views []MessageView, language string) {
	var g errgroup.Group
	g.SetLimit(e.overlay.Concurrency())

	for i := range views {
		v := &views[i]
		if v.Outgoing || v.Deleted || v.Text == "" {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			translated, err := e.overlay.Translate(ctx, v.ID, v.Text, language)
			if err != nil {
				if ctx.Err() == nil {
					e.metrics.TranslationFailures.Inc()
				}
				return nil
			}
			v.TranslatedText = translated
			return nil
		})
	}
	_ = g.Wait()
}

// withSeparators inserts a date item before the first message of every
// calendar day in the configured location.
func (e *Engine) withSeparators(views []MessageView) []ViewItem {
	items := make([]ViewItem, 0, len(views)+4)
	var lastDay time.Time
	for i := range views {
		local := views[i].SentAt.In(e.config.Location)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, e.config.Location)
		if i == 0 || !day.Equal(lastDay) {
			items = append(items, ViewItem{
				Kind:  ItemSeparator,
				Date:  day,
				Label: day.Format(e.config.SeparatorLayout),
			})
			lastDay = day
		}
		items = append(items, ViewItem{Kind: ItemMessage, Message: &views[i]})
	}
	return items
}
