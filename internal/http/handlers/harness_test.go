package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mokayaj857/vireya/internal/apiclient"
	"github.com/mokayaj857/vireya/internal/chat"
	"github.com/mokayaj857/vireya/internal/domain"
	"github.com/mokayaj857/vireya/internal/http/middleware"
	"github.com/mokayaj857/vireya/internal/recognition"
	"github.com/mokayaj857/vireya/internal/repo"
	"github.com/mokayaj857/vireya/internal/services"
	"github.com/mokayaj857/vireya/internal/session"
	"github.com/mokayaj857/vireya/internal/shell"
	"github.com/mokayaj857/vireya/internal/upload"
)

const sid = "tab-00000001"

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

type fakeBackend struct {
	values map[string]any
	errs   map[string]error
	ticket apiclient.SupportTicket
}

func (f *fakeBackend) get(name string) (any, error) {
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return f.values[name], nil
}

func (f *fakeBackend) Welcome(context.Context) (any, error)          { return f.get("welcome") }
func (f *fakeBackend) AnalyticsSummary(context.Context) (any, error) { return f.get("analytics") }
func (f *fakeBackend) ContentList(context.Context) (any, error)      { return f.get("content") }
func (f *fakeBackend) CreateSupportTicket(_ context.Context, t apiclient.SupportTicket) (any, error) {
	f.ticket = t
	return f.get("support")
}
func (f *fakeBackend) RecognizeDrug(context.Context, apiclient.File, map[string]string) (any, error) {
	return f.get("recognize")
}

type fakeStream struct{ topic string }

func (f *fakeStream) ServeWS(w http.ResponseWriter, _ *http.Request, topic string) {
	f.topic = topic
	w.WriteHeader(http.StatusSwitchingProtocols)
}

type harness struct {
	t         *testing.T
	router    *gin.Engine
	db        *gorm.DB
	sessions  *session.Manager
	previews  *upload.PreviewStore
	backend   *fakeBackend
	stream    *fakeStream
	recognize func(context.Context, upload.File) (*recognition.Result, error)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	h := &harness{
		t:        t,
		db:       db,
		previews: upload.NewPreviewStore(),
		backend:  &fakeBackend{values: map[string]any{}, errs: map[string]error{}},
		stream:   &fakeStream{},
		recognize: func(context.Context, upload.File) (*recognition.Result, error) {
			return &recognition.Result{DrugName: "Paracetamol"}, nil
		},
	}
	replier := chat.ReplyFunc(func(context.Context, []domain.ChatMessage) (domain.ChatMessage, error) {
		return domain.ChatMessage{Text: "noted", Sender: domain.SenderAI}, nil
	})
	h.sessions = session.NewManager(func(id string) *session.Workspace {
		kv := repo.LocalStorage{DB: db, SessionID: id}
		return &session.Workspace{
			Shell:   shell.New(),
			Chat:    chat.NewStore(chat.NewJSONPort(kv), chat.Options{Replier: replier}),
			Scan: upload.NewSession(h.previews, upload.RecognizerFunc(func(ctx context.Context, f upload.File) (*recognition.Result, error) {
				return h.recognize(ctx, f)
			}), upload.Options{PreviewURL: func(tok string) string { return "/api/v1/previews/" + tok }}),
			Storage: kv,
		}
	}, time.Hour)
	t.Cleanup(h.sessions.Close)

	hd := New(Deps{
		Sessions:      h.sessions,
		Subscriptions: &services.SubscriptionService{DB: db, HistorySize: 10},
		Insights:      &services.InsightsService{API: h.backend},
		API:           h.backend,
		Idempotency:   repo.IdempotencyStore{DB: db, TTL: time.Hour},
		Previews:      h.previews,
		Stream:        h.stream,
		Topics:        chat.DefaultTopics().Names(),
	})

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, repo.IdempotencyStore{DB: db, TTL: time.Hour}.Lookup))
	r.GET("/features", hd.ListFeatures)
	r.GET("/languages", hd.ListLanguages)
	r.GET("/sessions/:sid/shell", hd.GetShell)
	r.POST("/sessions/:sid/shell/open", hd.OpenFeature)
	r.POST("/sessions/:sid/shell/close", hd.CloseFeature)
	r.POST("/sessions/:sid/shell/picker", hd.TogglePicker)
	r.GET("/sessions/:sid/chat", hd.GetChat)
	r.GET("/sessions/:sid/chat/messages", hd.ListMessages)
	r.POST("/sessions/:sid/chat/messages", hd.PostMessage)
	r.POST("/sessions/:sid/chat/topics/:topic/toggle", hd.ToggleTopic)
	r.POST("/sessions/:sid/chat/subscription", hd.Subscribe)
	r.GET("/sessions/:sid/chat/subscription", hd.ListSubscriptions)
	r.GET("/sessions/:sid/chat/ws", hd.ChatStream)
	r.GET("/sessions/:sid/preferences/sidebar", hd.GetSidebar)
	r.PUT("/sessions/:sid/preferences/sidebar", hd.PutSidebar)
	r.GET("/sessions/:sid/scan", hd.GetScan)
	r.POST("/sessions/:sid/scan/file", hd.SelectScanFile)
	r.DELETE("/sessions/:sid/scan/file", hd.ClearScanFile)
	r.POST("/sessions/:sid/scan/submit", hd.SubmitScan)
	r.GET("/previews/:token", hd.GetPreview)
	r.GET("/welcome", hd.Welcome)
	r.GET("/analytics/summary", hd.AnalyticsSummary)
	r.GET("/content", hd.ContentList)
	r.GET("/overview", hd.Overview)
	r.POST("/support", hd.CreateSupportTicket)
	h.router = r
	return h
}

func (h *harness) do(method, path string, body any, header ...string) *httptest.ResponseRecorder {
	h.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			h.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) upload(name, contentType string, data []byte) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		h.t.Fatal(err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sid+"/scan/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) workspace() *session.Workspace {
	h.t.Helper()
	w, err := h.sessions.Get(context.Background(), sid)
	if err != nil {
		h.t.Fatal(err)
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (%s)", w.Code, status, w.Body.String())
	}
	e := decode[ErrorResponse](t, w)
	if e.Code != code || e.RequestID == "" {
		t.Fatalf("error = %+v, want code %q", e, code)
	}
}
