package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChatIDForIsOrderIndependent(t *testing.T) {
	require.Equal(t, ChatIDFor("alice", "bob"), ChatIDFor("bob", "alice"))
	require.NotEqual(t, ChatIDFor("alice", "bob"), ChatIDFor("alice", "carol"))
	// the separator keeps ("ab","c") and ("a","bc") apart
	require.NotEqual(t, ChatIDFor("ab", "c"), ChatIDFor("a", "bc"))
}

func TestNewChatSessionDefaults(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	chat := NewChatSession("zed", "amy", now)

	require.Equal(t, "amy", chat.ParticipantA)
	require.Equal(t, "zed", chat.ParticipantB)
	require.Equal(t, DefaultTranslationSetting(), chat.TranslationSettings.For("amy"))
	require.Equal(t, DefaultTranslationSetting(), chat.TranslationSettings.For("zed"))
	require.Equal(t, "zed", chat.OtherParticipant("amy"))
	require.True(t, chat.HasParticipant("zed"))
	require.False(t, chat.HasParticipant(""))
}

func TestTranslationSettingsMissingKey(t *testing.T) {
	var settings TranslationSettings
	require.Equal(t, TranslationSetting{Enabled: false, TargetLanguage: "en"}, settings.For("nobody"))

	settings = TranslationSettings{"u1": {Enabled: true}}
	require.Equal(t, TranslationSetting{Enabled: true, TargetLanguage: "en"}, settings.For("u1"))
}

func TestValidateDisplayName(t *testing.T) {
	for _, name := range []string{"alice", "Bob_42", "_", "X"} {
		require.NoError(t, ValidateDisplayName(name), name)
	}
	for _, name := range []string{"", "   ", "with space", "émile", "dash-name", "dot.name"} {
		err := ValidateDisplayName(name)
		require.ErrorIs(t, err, ErrInvalidDisplayName, name)
		require.Equal(t, KindValidation, KindOf(err))
		require.Equal(t, DisplayNameError, ReasonOf(err))
	}
}

func TestPreview(t *testing.T) {
	require.Equal(t, "hello", Preview("hello", nil))
	require.Equal(t, "📷 Photo", Preview("", &Media{Kind: MediaImage}))
	require.Equal(t, "🎥 Video", Preview("", &Media{Kind: MediaVideo}))
	require.Equal(t, "📎 report.pdf", Preview("", &Media{Kind: MediaFile, FileName: "report.pdf"}))
	require.Equal(t, "caption", Preview("caption", &Media{Kind: MediaImage}))
	require.Equal(t, "Message", Preview("", nil))
}

func TestDeleteWindowBoundary(t *testing.T) {
	sent := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.True(t, CanDeleteForEveryone(sent, sent.Add(23*time.Hour+59*time.Minute)))
	require.False(t, CanDeleteForEveryone(sent, sent.Add(24*time.Hour)))
	require.False(t, CanDeleteForEveryone(sent, sent.Add(24*time.Hour+time.Minute)))
}

func TestFormatRemaining(t *testing.T) {
	sent := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.Equal(t, "5h 30m", FormatRemaining(DeleteWindowRemaining(sent, sent.Add(18*time.Hour+30*time.Minute))))
	require.Equal(t, "45m", FormatRemaining(DeleteWindowRemaining(sent, sent.Add(23*time.Hour+15*time.Minute))))
	require.Equal(t, "", FormatRemaining(DeleteWindowRemaining(sent, sent.Add(25*time.Hour))))
}

func TestSnippetOfDeletedMessage(t *testing.T) {
	m := &Message{Text: "secret", DeletedForEveryone: true}
	require.Equal(t, DeletedPlaceholder, m.Snippet())
}

func TestErrorMatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewBackendError("send", cause)

	require.ErrorIs(t, err, ErrBackendUnavailable)
	require.ErrorIs(t, err, cause)
	require.Equal(t, KindBackendUnavailable, KindOf(err))
	require.Equal(t, KindBackendUnavailable, KindOf(errors.New("foreign")))
	require.Contains(t, err.Error(), "disk full")
}

func TestNewMessageIDFollowsCreationOrder(t *testing.T) {
	prev := NewMessageID()
	for i := 0; i < 1000; i++ {
		next := NewMessageID()
		require.Less(t, prev, next)
		prev = next
	}
}
