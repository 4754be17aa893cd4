package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-messenger/internal/config"
	"github.com/iyunix/go-messenger/internal/services"
	"github.com/iyunix/go-messenger/internal/services/chat"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		DeviceID:               "laptop",
		SharedStorePath:        dir + "/shared.db",
		LocalStatePath:         dir + "/local",
		BlobDir:                dir + "/blobs",
		BlobBaseURL:            "https://blobs.test",
		JWTSecretKey:           "secret",
		TranslationModel:       "gpt-4o-mini",
		TranslationTimeout:     time.Second,
		TranslationMaxRetries:  1,
		TranslationConcurrency: 2,
		DisplayTimezone:        "UTC",
	}
}

func TestBuildWithoutTranslationBackend(t *testing.T) {
	a, err := Build(testConfig(t), &services.NoOpLogger{}, prometheus.NewRegistry())
	require.NoError(t, err)
	defer func() { require.NoError(t, a.Close()) }()

	require.Nil(t, a.Overlay)
	require.NotNil(t, a.Messenger)

	ctx := context.Background()
	_, err = a.Users.Register(ctx, "alice", "alice@example.com", "alice")
	require.NoError(t, err)
	_, err = a.Users.Register(ctx, "bob", "bob@example.com", "bob")
	require.NoError(t, err)

	token, err := a.Identity.IssueToken("alice", time.Hour)
	require.NoError(t, err)
	_, err = a.Identity.SignInWithToken(token)
	require.NoError(t, err)

	got := make(chan chat.View, 8)
	sub, err := a.Messenger.OpenChat(ctx, "bob", func(v chat.View) { got <- v })
	require.NoError(t, err)
	_, err = a.Messenger.Send(ctx, sub.ChatID(), "hi", "")
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case v := <-got:
			if len(v.Messages()) == 1 {
				return
			}
		case <-deadline:
			t.Fatal("no view with the sent message")
		}
	}
}

func TestBuildWithTranslationBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.TranslationAPIKey = "sk-test"
	cfg.TranslationBaseURL = "http://127.0.0.1:1/v1"

	a, err := Build(cfg, &services.NoOpLogger{}, nil)
	require.NoError(t, err)
	require.NotNil(t, a.Overlay)
	require.Equal(t, 2, a.Overlay.Concurrency())
	require.NoError(t, a.Close())
}

func TestBuildRejectsBadTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.DisplayTimezone = "Nowhere/Atlantis"
	_, err := Build(cfg, &services.NoOpLogger{}, nil)
	require.Error(t, err)
}
