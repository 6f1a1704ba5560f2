package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mokayaj857/vireya/internal/chat"
	"github.com/mokayaj857/vireya/internal/domain"
	"github.com/mokayaj857/vireya/internal/http/middleware"
	"github.com/mokayaj857/vireya/internal/services"
	"github.com/mokayaj857/vireya/internal/utils"
)

const maxMessagesLimit = 500

// PostMessageRequest is a user chat message.
type PostMessageRequest struct {
	Text string `json:"text" example:"Is it safe to take the pill with antibiotics?"`
}

// PostMessageResponse carries the appended user message. The assistant
// reply arrives later as a realtime event and in GetChat.
type PostMessageResponse struct {
	Message domain.ChatMessage `json:"message"`
	Typing  bool               `json:"typing"`
}

// MessagesResponse is a slice of the chat log in order.
type MessagesResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
}

// TopicsResponse is the current chip selection.
type TopicsResponse struct {
	SelectedTopics []string `json:"selected_topics"`
}

// SidebarPreference is the persisted sidebar state.
type SidebarPreference struct {
	Open *bool `json:"open" binding:"required" example:"true"`
}

// LanguagesResponse lists subscription languages.
type LanguagesResponse struct {
	Languages []services.LanguageOption `json:"languages"`
}

// GetChat godoc
// @ID          getChat
// @Summary     Chat snapshot
// @Description Messages grouped by day, typing flag and topic chips.
// @Tags        Chat
// @Produce     json
// @Param       sid  path  string  true  "Client session id"
// @Success     200  {object}  chat.Snapshot
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /sessions/{sid}/chat [get]
func (h *Handlers) GetChat(c *gin.Context) {
	w, found := h.workspace(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, w.Chat.Snapshot())
}

// ListMessages godoc
// @ID          listMessages
// @Summary     Chat log
// @Tags        Chat
// @Produce     json
// @Param       sid    path   string  true   "Client session id"
// @Param       limit  query  int     false  "Only the last N messages"  minimum(1) maximum(500)
// @Success     200  {object}  handlers.MessagesResponse
// @Router      /sessions/{sid}/chat/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	w, found := h.workspace(c)
	if !found {
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	var msgs []domain.ChatMessage
	if limit > 0 {
		msgs = w.Chat.RecentMessages(utils.Clamp(limit, 1, maxMessagesLimit))
	} else {
		msgs = w.Chat.Messages()
	}
	ok(c, http.StatusOK, MessagesResponse{Messages: msgs})
}

// PostMessage godoc
// @ID          postMessage
// @Summary     Send a chat message
// @Description Appends the user message and starts the assistant reply. With an
// @Description Idempotency-Key, a retry returns the originally appended message.
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Param       sid              path    string                         true   "Client session id"
// @Param       Idempotency-Key  header  string                         false  "Retry key"
// @Param       body             body    handlers.PostMessageRequest    true   "Message"
// @Success     202  {object}  handlers.PostMessageResponse
// @Success     200  {object}  handlers.PostMessageResponse  "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     410  {object}  handlers.ErrorResponse  "Session expired"
// @Router      /sessions/{sid}/chat/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	w, found := h.workspace(c)
	if !found {
		return
	}
	if id, replay := middleware.ReplayOf(c); replay {
		if msg, exists := w.Chat.Find(id); exists {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, PostMessageResponse{Message: msg, Typing: w.Chat.IsTyping()})
			return
		}
	}

	msg, err := w.Chat.SendUserMessage(c.Request.Context(), req.Text)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeEmptyMessage, "message text is empty")
		return
	case errors.Is(err, chat.ErrClosed):
		fail(c, http.StatusGone, ErrCodeGone, "session expired, reload to start again")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	if key, has := middleware.GetIdempotencyKey(c); has && h.idem != nil {
		if err := h.idem.Remember(c.Request.Context(), w.ID, key, msg.ID, http.StatusAccepted); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("store idempotency key")
		}
	}
	ok(c, http.StatusAccepted, PostMessageResponse{Message: msg, Typing: true})
}

// ToggleTopic godoc
// @ID          toggleTopic
// @Summary     Toggle a topic chip
// @Tags        Chat
// @Produce     json
// @Param       sid    path  string  true  "Client session id"
// @Param       topic  path  string  true  "Topic tag"  example(contraception)
// @Success     200  {object}  handlers.TopicsResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown topic"
// @Router      /sessions/{sid}/chat/topics/{topic}/toggle [post]
func (h *Handlers) ToggleTopic(c *gin.Context) {
	topic := strings.TrimSpace(c.Param("topic"))
	if !h.topics[topic] {
		fail(c, http.StatusNotFound, ErrCodeUnknownTopic, "unknown topic "+topic)
		return
	}
	w, found := h.workspace(c)
	if !found {
		return
	}
	sel, err := w.Chat.ToggleTopic(topic)
	if err != nil {
		fail(c, http.StatusGone, ErrCodeGone, "session expired, reload to start again")
		return
	}
	ok(c, http.StatusOK, TopicsResponse{SelectedTopics: sel})
}

// Subscribe godoc
// @ID          subscribe
// @Summary     Subscribe to daily recommendations
// @Description Stores the phone number and language with the detected topics
// @Description and the recent conversation as context.
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Param       sid   path  string                       true  "Client session id"
// @Param       body  body  services.SubscribeRequest    true  "Subscription form"
// @Success     201  {object}  domain.Subscription
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /sessions/{sid}/chat/subscription [post]
func (h *Handlers) Subscribe(c *gin.Context) {
	var req services.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	w, found := h.workspace(c)
	if !found {
		return
	}
	sub, err := h.subscriptions.Subscribe(c.Request.Context(), w.ID, w.Chat, req)
	switch {
	case errors.Is(err, services.ErrInvalidPhone):
		fail(c, http.StatusBadRequest, ErrCodeInvalidPhone, "phone number must be 7 to 15 digits")
	case errors.Is(err, services.ErrInvalidLanguage):
		fail(c, http.StatusBadRequest, ErrCodeInvalidLang, "unsupported language")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodePersist, "could not save subscription")
	default:
		ok(c, http.StatusCreated, sub)
	}
}

// SubscriptionsResponse lists a session's subscriptions, newest first.
type SubscriptionsResponse struct {
	Subscriptions []domain.Subscription `json:"subscriptions"`
}

// ListSubscriptions godoc
// @ID          listSubscriptions
// @Summary     Subscriptions of a client session
// @Tags        Chat
// @Produce     json
// @Param       sid  path  string  true  "Client session id"
// @Success     200  {object}  handlers.SubscriptionsResponse
// @Router      /sessions/{sid}/chat/subscription [get]
func (h *Handlers) ListSubscriptions(c *gin.Context) {
	w, found := h.workspace(c)
	if !found {
		return
	}
	subs, err := h.subscriptions.List(c.Request.Context(), w.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list subscriptions")
		return
	}
	ok(c, http.StatusOK, SubscriptionsResponse{Subscriptions: subs})
}

// ListLanguages godoc
// @ID          listLanguages
// @Summary     Subscription languages
// @Tags        Chat
// @Produce     json
// @Success     200  {object}  handlers.LanguagesResponse
// @Router      /languages [get]
func (h *Handlers) ListLanguages(c *gin.Context) {
	ok(c, http.StatusOK, LanguagesResponse{Languages: services.LanguageOptions()})
}

// ChatStream godoc
// @ID          chatStream
// @Summary     Realtime chat events
// @Description Websocket stream of message, typing, topics and scan events.
// @Tags        Chat
// @Param       sid  path  string  true  "Client session id"
// @Success     101  {string}  string  "Switching Protocols"
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /sessions/{sid}/chat/ws [get]
func (h *Handlers) ChatStream(c *gin.Context) {
	w, found := h.workspace(c)
	if !found {
		return
	}
	h.stream.ServeWS(c.Writer, c.Request, w.ID)
}

// GetSidebar godoc
// @ID          getSidebar
// @Summary     Sidebar preference
// @Tags        Preferences
// @Produce     json
// @Param       sid  path  string  true  "Client session id"
// @Success     200  {object}  handlers.SidebarPreference
// @Router      /sessions/{sid}/preferences/sidebar [get]
func (h *Handlers) GetSidebar(c *gin.Context) {
	w, found := h.workspace(c)
	if !found {
		return
	}
	open := chat.LoadSidebarOpen(c.Request.Context(), w.Storage)
	ok(c, http.StatusOK, SidebarPreference{Open: &open})
}

// PutSidebar godoc
// @ID          putSidebar
// @Summary     Save the sidebar preference
// @Tags        Preferences
// @Accept      json
// @Produce     json
// @Param       sid   path  string                       true  "Client session id"
// @Param       body  body  handlers.SidebarPreference   true  "Preference"
// @Success     200  {object}  handlers.SidebarPreference
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /sessions/{sid}/preferences/sidebar [put]
func (h *Handlers) PutSidebar(c *gin.Context) {
	var req SidebarPreference
	if err := c.ShouldBindJSON(&req); err != nil || req.Open == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "open (boolean) is required")
		return
	}
	w, found := h.workspace(c)
	if !found {
		return
	}
	if err := chat.SaveSidebarOpen(c.Request.Context(), w.Storage, *req.Open); err != nil {
		// like localStorage quota errors: the preference just is not kept
		middleware.LoggerFrom(c).Warn().Err(err).Msg("save sidebar preference")
	}
	ok(c, http.StatusOK, req)
}
