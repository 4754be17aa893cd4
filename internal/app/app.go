// File: internal/app/app.go
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/iyunix/go-messenger/internal/auth"
	"github.com/iyunix/go-messenger/internal/config"
	"github.com/iyunix/go-messenger/internal/kv"
	"github.com/iyunix/go-messenger/internal/metrics"
	"github.com/iyunix/go-messenger/internal/ratelimit"
	"github.com/iyunix/go-messenger/internal/realtime"
	"github.com/iyunix/go-messenger/internal/repository"
	"github.com/iyunix/go-messenger/internal/repository/chat"
	"github.com/iyunix/go-messenger/internal/repository/message"
	"github.com/iyunix/go-messenger/internal/repository/user"
	"github.com/iyunix/go-messenger/internal/services"
	"github.com/iyunix/go-messenger/internal/services/blockgate"
	chatservice "github.com/iyunix/go-messenger/internal/services/chat"
	"github.com/iyunix/go-messenger/internal/services/directory"
	"github.com/iyunix/go-messenger/internal/services/media"
	"github.com/iyunix/go-messenger/internal/services/translation"
	"github.com/iyunix/go-messenger/internal/services/user_services"
	"github.com/iyunix/go-messenger/internal/tombstone"
)

// Application aggregates all services of one device
type Application struct {
	Config    *config.Config
	Logger    services.Logger
	DB        *gorm.DB
	Local     kv.Store
	Metrics   *metrics.Metrics
	Identity  *auth.Identity
	Directory *directory.Directory
	Engine    *chatservice.Engine
	Users     *user_services.UserService
	Messenger *services.Messenger

	// Overlay is nil when no translation backend is configured.
	Overlay *translation.Overlay

	limiter *ratelimit.Pool
}

// Provider functions

func ProvideTranslationConfig(cfg *config.Config) *translation.Config {
	tc := translation.DefaultConfig()
	tc.APIKey = cfg.TranslationAPIKey
	tc.BaseURL = cfg.TranslationBaseURL
	tc.Model = cfg.TranslationModel
	tc.Timeout = cfg.TranslationTimeout
	tc.MaxRetries = cfg.TranslationMaxRetries
	tc.Concurrency = cfg.TranslationConcurrency
	tc.RPS = cfg.TranslationRPS
	tc.Burst = cfg.TranslationBurst
	return tc
}

func ProvideRateLimiter(tc *translation.Config) *ratelimit.Pool {
	rc := ratelimit.DefaultTranslationConfig()
	if tc.RPS > 0 {
		rc.RPS = tc.RPS
	}
	if tc.Burst > 0 {
		rc.Burst = tc.Burst
	}
	return ratelimit.NewPool(rc)
}

func ProvideEngineConfig(cfg *config.Config) (*chatservice.Config, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	ec := chatservice.DefaultConfig()
	ec.Location = loc
	return ec, nil
}

// Build opens the shared store and the device-local state named by cfg and
// wires every service on top of them. reg may be nil.
func Build(cfg *config.Config, logger services.Logger, reg prometheus.Registerer) (*Application, error) {
	db, err := repository.Open(cfg.SharedStorePath)
	if err != nil {
		return nil, err
	}
	local, err := kv.Open(cfg.LocalStatePath)
	if err != nil {
		_ = repository.Close(db)
		return nil, err
	}
	a, err := Assemble(cfg, logger, reg, db, local)
	if err != nil {
		_ = local.Close()
		_ = repository.Close(db)
		return nil, err
	}
	return a, nil
}

// Assemble wires the services over an already opened shared store and
// local KV store.
func Assemble(cfg *config.Config, logger services.Logger, reg prometheus.Registerer, db *gorm.DB, local kv.Store) (*Application, error) {
	// --- Repositories ---
	userRepo := user.NewGormUserRepository(db, logger)
	chatRepo := chat.NewChatRepository(db, logger)
	messageRepo := message.NewMessageRepository(db, logger)

	// --- Services ---
	m := metrics.New(reg)
	dir := directory.New(chatRepo, logger)
	gate := blockgate.New(userRepo, logger)
	users := user_services.NewUserService(userRepo, logger)
	hub := realtime.NewHub(messageRepo.FindByChatID, logger)

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Local:     local,
		Metrics:   m,
		Directory: dir,
		Users:     users,
		Identity:  auth.NewIdentity([]byte(cfg.JWTSecretKey), logger),
	}

	tc := ProvideTranslationConfig(cfg)
	if err := tc.Validate(); err != nil {
		logger.Warn("Translation overlay disabled", "reason", err.Error())
	} else {
		a.limiter = ProvideRateLimiter(tc)
		a.Overlay = translation.NewOverlay(translation.NewOpenAIProvider(tc, logger), a.limiter, tc, logger)
	}

	engineConfig, err := ProvideEngineConfig(cfg)
	if err != nil {
		a.closeLimiter()
		return nil, err
	}
	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID = "default"
	}
	a.Engine, err = chatservice.NewEngine(chatservice.Dependencies{
		Messages:   messageRepo,
		Users:      userRepo,
		Directory:  dir,
		Gate:       gate,
		Tombstones: tombstone.New(local, deviceID, logger),
		Overlay:    a.Overlay,
		Hub:        hub,
		Metrics:    m,
		Logger:     logger,
	}, engineConfig)
	if err != nil {
		a.closeLimiter()
		return nil, fmt.Errorf("chat engine: %w", err)
	}

	blobs, err := media.NewFileBlobStore(cfg.BlobDir, cfg.BlobBaseURL)
	if err != nil {
		a.closeLimiter()
		return nil, err
	}
	a.Messenger, err = services.NewMessenger(services.MessengerDeps{
		Identity:  a.Identity,
		Directory: dir,
		Engine:    a.Engine,
		Users:     users,
		Gate:      gate,
		Blobs:     blobs,
		Logger:    logger,
	})
	if err != nil {
		a.closeLimiter()
		return nil, err
	}

	logger.Info("Application assembled", "device_id", deviceID, "translation", a.Overlay != nil)
	return a, nil
}

func (a *Application) closeLimiter() {
	if a.limiter != nil {
		a.limiter.Close()
	}
}

// Close shuts every open view and releases both stores.
func (a *Application) Close() error {
	if a.Messenger != nil {
		a.Messenger.Close()
	}
	a.closeLimiter()
	return multierr.Combine(a.Local.Close(), repository.Close(a.DB))
}
