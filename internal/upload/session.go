package upload

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mokayaj857/vireya/internal/apiclient"
	"github.com/mokayaj857/vireya/internal/recognition"
)

// Status is the lifecycle state of a Session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSelected   Status = "selected"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Recognizer identifies the drug shown in an image.
type Recognizer interface {
	Recognize(ctx context.Context, f File) (*recognition.Result, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, f File) (*recognition.Result, error)

// Recognize implements Recognizer.
func (fn RecognizerFunc) Recognize(ctx context.Context, f File) (*recognition.Result, error) {
	return fn(ctx, f)
}

// FileInfo describes the selected file without its bytes.
type FileInfo struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// State is a copy of a Session's observable fields.
type State struct {
	Status     Status              `json:"status"`
	File       *FileInfo           `json:"file,omitempty"`
	PreviewURL string              `json:"preview_url,omitempty"`
	Result     *recognition.Result `json:"result,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// Options configures a Session.
type Options struct {
	MaxBytes   int64               // default DefaultMaxBytes
	Timeout    time.Duration       // per submission, 0 = none
	PreviewURL func(string) string // maps a preview token to a URL
	OnChange   func(State)         // called after every transition, outside the lock
}

// Session holds at most one selected file and at most one submission in
// flight. Every selection or clear bumps a generation counter; a submission
// that completes under an older generation discards its result.
type Session struct {
	previews   PreviewRegistry
	recognizer Recognizer
	opts       Options

	mu     sync.Mutex
	status Status
	file   *File
	mime   string
	token  string
	result *recognition.Result
	errMsg string
	gen    uint64
	// a recognizer call is running, whatever generation it belongs to
	inflight bool
	closed   bool
}

// NewSession returns an idle session.
func NewSession(previews PreviewRegistry, recognizer Recognizer, opts Options) *Session {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.PreviewURL == nil {
		opts.PreviewURL = func(tok string) string { return tok }
	}
	return &Session{previews: previews, recognizer: recognizer, opts: opts, status: StatusIdle}
}

// SelectFile validates f and makes it the current file, replacing and
// releasing any previous one. A nil f clears the session. An invalid file
// leaves the session Failed with the validation message and no file.
func (s *Session) SelectFile(f *File) (State, error) {
	if f == nil {
		return s.Clear(), nil
	}
	mime, verr := Validate(*f, s.opts.MaxBytes)

	s.mu.Lock()
	if s.closed {
		st := s.stateLocked()
		s.mu.Unlock()
		return st, ErrClosed
	}
	s.releaseLocked()
	if verr != nil {
		rejections.WithLabelValues(rejectReason(verr)).Inc()
		s.status = StatusFailed
		s.errMsg = verr.Error()
	} else {
		cp := *f
		s.file = &cp
		s.mime = mime
		s.token = s.previews.Create(cp, mime)
		s.status = StatusSelected
	}
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
	return st, verr
}

// Clear drops the file, revokes its preview and returns to Idle. A pending
// submission's result will be discarded.
func (s *Session) Clear() State {
	s.mu.Lock()
	s.releaseLocked()
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
	return st
}

// releaseLocked resets everything to Idle. Caller holds s.mu.
func (s *Session) releaseLocked() {
	if s.token != "" {
		s.previews.Revoke(s.token)
		s.token = ""
	}
	s.file = nil
	s.mime = ""
	s.result = nil
	s.errMsg = ""
	s.status = StatusIdle
	s.gen++
}

// Submit sends the selected file for recognition and blocks until the
// outcome is known. It is allowed while a file is held and no recognizer
// call is running, including one a newer selection superseded; a failed
// submission can be retried. The returned State is the session state after
// the call.
func (s *Session) Submit(ctx context.Context) (State, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		st := s.stateLocked()
		s.mu.Unlock()
		return st, ErrClosed
	case s.inflight:
		st := s.stateLocked()
		s.mu.Unlock()
		return st, ErrInFlight
	case s.file == nil:
		st := s.stateLocked()
		s.mu.Unlock()
		return st, ErrNotSelected
	}
	gen := s.gen
	f := *s.file
	f.ContentType = s.mime
	s.status = StatusSubmitting
	s.inflight = true
	s.result = nil
	s.errMsg = ""
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	res, err := s.recognizer.Recognize(ctx, f)

	s.mu.Lock()
	s.inflight = false
	if s.closed || s.gen != gen {
		st := s.stateLocked()
		s.mu.Unlock()
		submissions.WithLabelValues("superseded").Inc()
		return st, ErrSuperseded
	}
	if err != nil {
		s.status = StatusFailed
		s.errMsg = failureMessage(err)
		submissions.WithLabelValues("failed").Inc()
	} else {
		s.status = StatusSucceeded
		s.result = res
		submissions.WithLabelValues("succeeded").Inc()
	}
	st = s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
	return st, err
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Close clears the session and rejects further use.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.releaseLocked()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) stateLocked() State {
	st := State{Status: s.status, Result: s.result, Error: s.errMsg}
	if s.file != nil {
		st.File = &FileInfo{Name: s.file.Name, Size: s.file.Size(), ContentType: s.mime}
	}
	if s.token != "" {
		st.PreviewURL = s.opts.PreviewURL(s.token)
	}
	return st
}

func (s *Session) notify(st State) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(st)
	}
}

func failureMessage(err error) string {
	var m interface{ Message() string }
	if errors.As(err, &m) {
		if msg := strings.TrimSpace(m.Message()); msg != "" {
			return msg
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "recognition timed out"
	}
	// transport details name internal hosts
	if apiclient.IsUnreachable(err) {
		return "request failed"
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return "recognition failed"
}

func rejectReason(err error) string {
	if errors.Is(err, ErrTooLarge) {
		return "too_large"
	}
	return "invalid_type"
}
