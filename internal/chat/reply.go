package chat

import (
	"context"
	"time"

	"github.com/mokayaj857/vireya/internal/domain"
)

// DefaultReplyText is the canned answer of the simulated assistant.
const DefaultReplyText = "Thanks — I hear you. If symptoms persist, please consult a healthcare provider."

// DefaultReplyDelay is how long the simulated assistant "types".
const DefaultReplyDelay = 1200 * time.Millisecond

// ReplyGenerator produces the assistant's answer to the conversation so far.
// The store fills in ID, Sender and Timestamp when they are left empty.
type ReplyGenerator interface {
	Generate(ctx context.Context, history []domain.ChatMessage) (domain.ChatMessage, error)
}

// ReplyFunc adapts a function to ReplyGenerator.
type ReplyFunc func(ctx context.Context, history []domain.ChatMessage) (domain.ChatMessage, error)

// Generate implements ReplyGenerator.
func (f ReplyFunc) Generate(ctx context.Context, history []domain.ChatMessage) (domain.ChatMessage, error) {
	return f(ctx, history)
}

// SimulatedReplier answers every message with fixed text after a delay.
// No inference happens.
type SimulatedReplier struct {
	Delay time.Duration
	Text  string
}

// Generate implements ReplyGenerator.
func (r SimulatedReplier) Generate(ctx context.Context, _ []domain.ChatMessage) (domain.ChatMessage, error) {
	if r.Delay > 0 {
		t := time.NewTimer(r.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return domain.ChatMessage{}, ctx.Err()
		case <-t.C:
		}
	}
	text := r.Text
	if text == "" {
		text = DefaultReplyText
	}
	return domain.ChatMessage{Text: text, Sender: domain.SenderAI}, nil
}
