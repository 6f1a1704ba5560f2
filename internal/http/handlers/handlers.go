package handlers

import (
	"context"
	"net/http"

	"github.com/mokayaj857/vireya/internal/domain"
	"github.com/mokayaj857/vireya/internal/services"
	"github.com/mokayaj857/vireya/internal/session"
	"github.com/mokayaj857/vireya/internal/upload"
)

// Workspaces resolves client sessions.
type Workspaces interface {
	Get(ctx context.Context, id string) (*session.Workspace, error)
}

// Subscriber records daily-recommendation opt-ins.
type Subscriber interface {
	Subscribe(ctx context.Context, sessionID string, src services.ConversationSource, req services.SubscribeRequest) (*domain.Subscription, error)
	List(ctx context.Context, sessionID string) ([]domain.Subscription, error)
}

// OverviewSource aggregates the landing-page payloads.
type OverviewSource interface {
	Overview(ctx context.Context) services.Overview
}

// ReplayStore remembers which message an Idempotency-Key produced.
type ReplayStore interface {
	Remember(ctx context.Context, sessionID, key, messageID string, status int) error
}

// PreviewSource serves preview bytes by token.
type PreviewSource interface {
	Open(token string) (upload.Preview, bool)
}

// Streamer upgrades a request to a realtime event stream for topic.
type Streamer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, topic string)
}

// Deps are the collaborators of Handlers. Nil optional fields disable the
// matching feature: no Idempotency means keys are validated but not stored.
type Deps struct {
	Sessions       Workspaces
	Subscriptions  Subscriber
	Insights       OverviewSource
	API            services.Backend
	Idempotency    ReplayStore
	Previews       PreviewSource
	Stream         Streamer
	Topics         []string // chips a user may toggle
	UploadMaxBytes int64
}

// Handlers groups every endpoint.
type Handlers struct {
	sessions      Workspaces
	subscriptions Subscriber
	insights      OverviewSource
	api           services.Backend
	idem          ReplayStore
	previews      PreviewSource
	stream        Streamer
	topics        map[string]bool
	maxUpload     int64
}

// New returns Handlers bound to d.
func New(d Deps) *Handlers {
	h := &Handlers{
		sessions:      d.Sessions,
		subscriptions: d.Subscriptions,
		insights:      d.Insights,
		api:           d.API,
		idem:          d.Idempotency,
		previews:      d.Previews,
		stream:        d.Stream,
		topics:        make(map[string]bool, len(d.Topics)),
		maxUpload:     d.UploadMaxBytes,
	}
	for _, t := range d.Topics {
		h.topics[t] = true
	}
	if h.maxUpload <= 0 {
		h.maxUpload = upload.DefaultMaxBytes
	}
	return h
}
