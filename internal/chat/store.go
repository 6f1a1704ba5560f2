// Package chat implements the session chat store: an ordered, append-only
// message log persisted through a Port, with day grouping, keyword topic
// detection and an asynchronous reply generator.
//
// A Store is safe for concurrent use. Reply generation runs in its own
// goroutine; when it finishes it re-acquires the lock and drops its result
// if the store was closed in the meantime.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mokayaj857/vireya/internal/domain"
)

var (
	// ErrEmptyMessage is returned when the text to send is blank.
	ErrEmptyMessage = errors.New("message text is empty")
	// ErrInvalidMessage is returned when Append gets a message without text
	// or with an unknown sender.
	ErrInvalidMessage = errors.New("invalid chat message")
	// ErrClosed is returned by mutating calls after Close.
	ErrClosed = errors.New("chat store closed")
)

// Event types published to listeners.
const (
	EventMessage = "message"
	EventTyping  = "typing"
	EventTopics  = "topics"
)

// Event describes a change of the store.
type Event struct {
	Type    string              `json:"type"`
	Message *domain.ChatMessage `json:"message,omitempty"`
	Typing  bool                `json:"typing"`
	Topics  []string            `json:"topics,omitempty"`
}

// Listener receives events after the change is applied. It runs on the
// goroutine that made the change and must not block.
type Listener func(Event)

// Options configures a Store. Zero values pick the defaults.
type Options struct {
	Replier      ReplyGenerator // default SimulatedReplier with DefaultReplyDelay
	Topics       *TopicTable    // default DefaultTopics()
	Location     *time.Location // grouping location, default UTC
	ReplyTimeout time.Duration  // 0 = none
	Now          func() time.Time
	NewID        func() string
	Logger       *zerolog.Logger
}

// Snapshot is a consistent view of the store.
type Snapshot struct {
	Days           []DayGroup `json:"days"`
	Typing         bool       `json:"typing"`
	SelectedTopics []string   `json:"selected_topics"`
	DetectedTopics []string   `json:"detected_topics"`
	Count          int        `json:"count"`
}

// Store is one session's chat log.
type Store struct {
	port     Port
	replier  ReplyGenerator
	topics   TopicTable
	loc      *time.Location
	timeout  time.Duration
	now      func() time.Time
	newID    func() string
	log      zerolog.Logger
	baseCtx  context.Context
	cancel   context.CancelFunc
	replies  sync.WaitGroup

	mu        sync.Mutex
	msgs      []domain.ChatMessage
	selected  []string
	pending   int
	closed    bool
	listeners map[int]Listener
	nextLis   int
}

// NewStore builds an empty store; call Initialize before use.
func NewStore(port Port, opts Options) *Store {
	s := &Store{
		port:      port,
		replier:   opts.Replier,
		loc:       opts.Location,
		timeout:   opts.ReplyTimeout,
		now:       opts.Now,
		newID:     opts.NewID,
		listeners: map[int]Listener{},
	}
	if s.replier == nil {
		s.replier = SimulatedReplier{Delay: DefaultReplyDelay, Text: DefaultReplyText}
	}
	if opts.Topics != nil {
		s.topics = *opts.Topics
	} else {
		s.topics = DefaultTopics()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	} else {
		s.log = zerolog.Nop()
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Initialize loads the saved log and adopts it verbatim. When nothing is
// saved, the saved value is unreadable or the log is empty, it seeds the
// welcome message instead. It never fails.
func (s *Store) Initialize(ctx context.Context) {
	msgs, err := s.port.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoLog) {
		persistFailures.WithLabelValues("load").Inc()
		s.log.Warn().Err(err).Msg("chat log unreadable, starting fresh")
	}

	s.mu.Lock()
	if err != nil || len(msgs) == 0 {
		msgs = []domain.ChatMessage{{
			ID:        domain.WelcomeMessageID,
			Text:      domain.WelcomeText,
			Sender:    domain.SenderAI,
			Timestamp: domain.FormatTimestamp(s.now()),
		}}
	}
	s.msgs = msgs
	s.selected = nil
	events := s.recomputeLocked()
	s.mu.Unlock()
	s.emit(events)
}

// Append adds msg at the end of the log, persists the whole log and
// recomputes topics. A missing id or timestamp is filled in, and a
// timestamp earlier than the last message is raised to it so log order
// stays timestamp order.
func (s *Store) Append(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	if strings.TrimSpace(msg.Text) == "" || !msg.Sender.Valid() {
		return domain.ChatMessage{}, ErrInvalidMessage
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ChatMessage{}, ErrClosed
	}
	msg, events := s.appendLocked(ctx, msg)
	s.mu.Unlock()
	s.emit(events)
	return msg, nil
}

// SendUserMessage appends a user message and starts generating the reply.
// Blank text is rejected with ErrEmptyMessage and leaves the store as is.
// Sends may overlap: each one gets its own reply, and the store reports
// typing while any reply is pending.
func (s *Store) SendUserMessage(ctx context.Context, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ChatMessage{}, ErrClosed
	}
	msg, events := s.appendLocked(ctx, domain.ChatMessage{Text: text, Sender: domain.SenderUser})
	s.pending++
	if s.pending == 1 {
		events = append(events, Event{Type: EventTyping, Typing: true})
	}
	history := append([]domain.ChatMessage(nil), s.msgs...)
	s.replies.Add(1)
	s.mu.Unlock()
	s.emit(events)

	go s.reply(history)
	return msg, nil
}

func (s *Store) reply(history []domain.ChatMessage) {
	defer s.replies.Done()

	ctx := s.baseCtx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	msg, err := s.replier.Generate(ctx, history)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending--
	var events []Event
	if err != nil {
		replyFailures.Inc()
		s.log.Warn().Err(err).Msg("reply generation failed")
	} else {
		msg.Sender = domain.SenderAI
		if strings.TrimSpace(msg.Text) == "" {
			msg.Text = DefaultReplyText
		}
		_, events = s.appendLocked(s.baseCtx, msg)
	}
	if s.pending == 0 {
		events = append(events, Event{Type: EventTyping, Typing: false})
	}
	s.mu.Unlock()
	s.emit(events)
}

// appendLocked stamps, appends and persists msg. Caller holds s.mu.
func (s *Store) appendLocked(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, []Event) {
	if msg.ID == "" {
		msg.ID = s.newID()
	}
	ts, err := msg.Time()
	if msg.Timestamp == "" || err != nil {
		ts = s.now()
	}
	if n := len(s.msgs); n > 0 {
		if last, err := s.msgs[n-1].Time(); err == nil && ts.Before(last) {
			ts = last
		}
	}
	msg.Timestamp = domain.FormatTimestamp(ts)

	s.msgs = append(s.msgs, msg)
	messagesAppended.WithLabelValues(string(msg.Sender)).Inc()
	if err := s.port.Save(ctx, s.msgs); err != nil {
		persistFailures.WithLabelValues("save").Inc()
		s.log.Warn().Err(err).Int("messages", len(s.msgs)).Msg("chat log not saved")
	}

	m := msg
	events := []Event{{Type: EventMessage, Message: &m, Typing: s.pending > 0}}
	return msg, append(events, s.recomputeLocked()...)
}

// recomputeLocked merges freshly detected topics into the selection.
// Caller holds s.mu.
func (s *Store) recomputeLocked() []Event {
	before := len(s.selected)
	s.selected = union(s.selected, s.topics.Detect(s.msgs))
	if len(s.selected) == before {
		return nil
	}
	return []Event{{Type: EventTopics, Topics: append([]string(nil), s.selected...), Typing: s.pending > 0}}
}

func union(prev, add []string) []string {
	seen := make(map[string]bool, len(prev)+len(add))
	out := append([]string(nil), prev...)
	for _, t := range prev {
		seen[t] = true
	}
	for _, t := range add {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// DetectTopics returns the topics found in the current log.
func (s *Store) DetectTopics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topics.Detect(s.msgs)
}

// SelectedTopics returns the current topic selection.
func (s *Store) SelectedTopics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selected...)
}

// ToggleTopic adds topic to the selection or removes it when present. It
// returns the new selection.
func (s *Store) ToggleTopic(topic string) ([]string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrInvalidMessage
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	out := make([]string, 0, len(s.selected)+1)
	found := false
	for _, t := range s.selected {
		if t == topic {
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		out = append(out, topic)
	}
	s.selected = out
	sel := append([]string(nil), out...)
	ev := Event{Type: EventTopics, Topics: sel, Typing: s.pending > 0}
	s.mu.Unlock()
	s.emit([]Event{ev})
	return append([]string(nil), sel...), nil
}

// GroupByDay groups the log by calendar day in the store's location.
func (s *Store) GroupByDay() []DayGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return GroupByDay(s.msgs, s.loc)
}

// Messages returns a copy of the log.
func (s *Store) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChatMessage(nil), s.msgs...)
}

// RecentMessages returns up to n trailing messages.
func (s *Store) RecentMessages(n int) []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.msgs) {
		n = len(s.msgs)
	}
	return append([]domain.ChatMessage(nil), s.msgs[len(s.msgs)-n:]...)
}

// Find looks a message up by id.
func (s *Store) Find(id string) (domain.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if m.ID == id {
			return m, true
		}
	}
	return domain.ChatMessage{}, false
}

// IsTyping reports whether a reply is pending.
func (s *Store) IsTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// Snapshot returns days, typing flag and topics read under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Days:           GroupByDay(s.msgs, s.loc),
		Typing:         s.pending > 0,
		SelectedTopics: append([]string{}, s.selected...),
		DetectedTopics: s.topics.Detect(s.msgs),
		Count:          len(s.msgs),
	}
}

// Subscribe registers fn for future events and returns its cancel func.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextLis
	s.nextLis++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()
	for _, ev := range events {
		for _, l := range ls {
			l(ev)
		}
	}
}

// Close marks the store defunct: pending replies are cancelled and their
// results dropped, and later mutations fail with ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = 0
	s.listeners = map[int]Listener{}
	s.mu.Unlock()
	s.cancel()
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Wait blocks until every started reply goroutine has returned.
func (s *Store) Wait() { s.replies.Wait() }
