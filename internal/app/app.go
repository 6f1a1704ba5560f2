// Package app assembles the server's long-lived dependencies from a Config.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mokayaj857/vireya/internal/apiclient"
	"github.com/mokayaj857/vireya/internal/chat"
	"github.com/mokayaj857/vireya/internal/config"
	"github.com/mokayaj857/vireya/internal/realtime"
	"github.com/mokayaj857/vireya/internal/repo"
	"github.com/mokayaj857/vireya/internal/services"
	"github.com/mokayaj857/vireya/internal/session"
	"github.com/mokayaj857/vireya/internal/shell"
	"github.com/mokayaj857/vireya/internal/upload"
)

// Realtime event carrying upload state changes.
const EventScan = "scan"

// App owns the process-wide state shared by all client sessions.
type App struct {
	Config        config.Config
	DB            *gorm.DB
	API           *apiclient.Client
	Previews      *upload.PreviewStore
	Hub           *realtime.Hub
	Sessions      *session.Manager
	Topics        chat.TopicTable
	Subscriptions *services.SubscriptionService
	Insights      *services.InsightsService
	Idempotency   repo.IdempotencyStore

	recognizer upload.Recognizer
	replier    chat.ReplyGenerator
}

// New opens storage and builds every component. The caller must Close the
// returned App.
func New(cfg config.Config) (*App, error) {
	db, err := repo.OpenSQLite(cfg.DBPath, repo.Options{Tracing: cfg.OTEL.Enabled, Silent: cfg.LogLevel != "debug"})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	topics := chat.DefaultTopics()
	if cfg.Chat.TopicsFile != "" {
		topics, err = chat.LoadTopicsFile(cfg.Chat.TopicsFile)
		if err != nil {
			closeDB(db)
			return nil, fmt.Errorf("load topics: %w", err)
		}
	}

	apiOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.Upstream.Timeout),
		apiclient.WithLogger(log.With().Str("component", "apiclient").Logger()),
	}
	if cfg.Upstream.APIKey != "" {
		apiOpts = append(apiOpts, apiclient.WithHeader(apiclient.HeaderAPIKey, cfg.Upstream.APIKey))
	}
	api := apiclient.New(cfg.Upstream.BaseURL, apiOpts...)

	a := &App{
		Config:        cfg,
		DB:            db,
		API:           api,
		Previews:      upload.NewPreviewStore(),
		Hub:           realtime.NewHub(cfg.CORS.AllowedOrigins),
		Topics:        topics,
		Subscriptions: &services.SubscriptionService{DB: db, HistorySize: cfg.Chat.HistoryContext},
		Insights:      &services.InsightsService{API: api},
		Idempotency:   repo.IdempotencyStore{DB: db, TTL: cfg.IdempotencyTTL},
		recognizer:    &services.DrugRecognizer{API: api},
		replier:       chat.SimulatedReplier{Delay: cfg.Chat.ReplyDelay, Text: chat.DefaultReplyText},
	}
	a.Sessions = session.NewManager(a.buildWorkspace, cfg.SessionIdleTTL)
	return a, nil
}

// PreviewPath is the public URL of a preview token.
func (a *App) PreviewPath(token string) string {
	return strings.TrimRight(a.Config.APIBasePath, "/") + "/previews/" + token
}

func (a *App) buildWorkspace(id string) *session.Workspace {
	logger := log.With().Str("session_id", id).Logger()
	kv := repo.LocalStorage{DB: a.DB, SessionID: id}

	store := chat.NewStore(chat.NewJSONPort(kv), chat.Options{
		Replier:      a.replier,
		Topics:       &a.Topics,
		Location:     a.Config.Chat.Location,
		ReplyTimeout: a.Config.Chat.ReplyTimeout,
		Logger:       &logger,
	})
	scan := upload.NewSession(a.Previews, a.recognizer, upload.Options{
		MaxBytes:   a.Config.UploadMaxBytes,
		Timeout:    a.Config.Upstream.Timeout,
		PreviewURL: a.PreviewPath,
		OnChange: func(st upload.State) {
			a.Hub.Broadcast(id, EventScan, st)
		},
	})

	w := &session.Workspace{
		Shell:   shell.New(),
		Chat:    store,
		Scan:    scan,
		Storage: kv,
	}
	w.OnClose(store.Subscribe(func(e chat.Event) {
		a.Hub.Broadcast(id, e.Type, e)
	}))
	return w
}

// Run drives the background loops until ctx is done: websocket fan-out,
// idle session eviction and idempotency record expiry.
func (a *App) Run(ctx context.Context) {
	go a.Hub.Run(ctx)
	go a.Sessions.Run(ctx, sweepInterval(a.Config.SessionIdleTTL))

	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, a.DB, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency records")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("purged idempotency records")
			}
		}
	}
}

// Close evicts every session and closes the database.
func (a *App) Close() {
	if a.Sessions != nil {
		a.Sessions.Close()
	}
	closeDB(a.DB)
}

func sweepInterval(ttl time.Duration) time.Duration {
	iv := ttl / 4
	if iv < time.Second {
		iv = time.Second
	}
	if iv > 5*time.Minute {
		iv = 5 * time.Minute
	}
	return iv
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
