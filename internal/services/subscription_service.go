package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gorm.io/gorm"

	"github.com/mokayaj857/vireya/internal/domain"
	"github.com/mokayaj857/vireya/internal/repo"
)

// SupportedLanguages lists the languages recommendations are sent in.
var SupportedLanguages = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
	language.Arabic,
	language.Swahili,
	language.Portuguese,
}

var languageMatcher = language.NewMatcher(SupportedLanguages)

// LanguageOption is a selectable language with its native name.
type LanguageOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// LanguageOptions returns SupportedLanguages with self-names ("Español", ...).
func LanguageOptions() []LanguageOption {
	out := make([]LanguageOption, 0, len(SupportedLanguages))
	for _, t := range SupportedLanguages {
		out = append(out, LanguageOption{Code: t.String(), Name: display.Self.Name(t)})
	}
	return out
}

// ConversationSource is what a subscription takes its context from.
type ConversationSource interface {
	DetectTopics() []string
	RecentMessages(n int) []domain.ChatMessage
}

// SubscribeRequest is the user input of the subscription form.
type SubscribeRequest struct {
	PhoneNumber string `json:"phone_number"`
	Language    string `json:"language"`
}

// SubscriptionService records opt-ins to daily recommendations.
type SubscriptionService struct {
	DB *gorm.DB
	// HistorySize is how many trailing messages are kept as context.
	HistorySize int
}

// Subscribe validates req and stores a subscription carrying the detected
// topics and the last HistorySize messages of src.
func (s *SubscriptionService) Subscribe(ctx context.Context, sessionID string, src ConversationSource, req SubscribeRequest) (*domain.Subscription, error) {
	tr := otel.Tracer("services/SubscriptionService")
	ctx, span := tr.Start(ctx, "Subscribe", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	lang, err := NormalizeLanguage(req.Language)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	var phone *string
	if p := strings.TrimSpace(req.PhoneNumber); p != "" {
		norm, err := NormalizePhone(p)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		phone = &norm
	}

	n := s.HistorySize
	if n <= 0 {
		n = 10
	}
	sub := &domain.Subscription{
		SessionID:   sessionID,
		PhoneNumber: phone,
		Language:    lang,
		Type:        domain.SubscriptionDaily,
		Topics:      src.DetectTopics(),
		History:     src.RecentMessages(n),
	}
	if err := repo.CreateSubscription(ctx, s.DB, sub); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("subscription.language", lang), attribute.Int("subscription.topics", len(sub.Topics)))
	return sub, nil
}

// List returns a session's subscriptions, newest first.
func (s *SubscriptionService) List(ctx context.Context, sessionID string) ([]domain.Subscription, error) {
	return repo.ListSubscriptions(ctx, s.DB, sessionID)
}

// NormalizeLanguage maps a BCP 47 tag such as "pt-BR" or "SW" onto one of
// SupportedLanguages and returns its base code. Empty means English.
func NormalizeLanguage(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return language.English.String(), nil
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", ErrInvalidLanguage
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf < language.High {
		return "", ErrInvalidLanguage
	}
	return SupportedLanguages[idx].String(), nil
}

// NormalizePhone strips separators and checks the digit count.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", ErrInvalidPhone
		}
	}
	out := b.String()
	digits := len(strings.TrimPrefix(out, "+"))
	if digits < 7 || digits > 15 {
		return "", ErrInvalidPhone
	}
	return out, nil
}
