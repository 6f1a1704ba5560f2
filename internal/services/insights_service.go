package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/mokayaj857/vireya/internal/apiclient"
)

// Backend is the part of the API client the handlers and services use.
type Backend interface {
	Welcome(ctx context.Context) (any, error)
	AnalyticsSummary(ctx context.Context) (any, error)
	ContentList(ctx context.Context) (any, error)
	CreateSupportTicket(ctx context.Context, t apiclient.SupportTicket) (any, error)
	RecognizeDrug(ctx context.Context, f apiclient.File, extra map[string]string) (any, error)
}

// PartError reports why one part of an Overview is missing.
type PartError struct {
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// Overview bundles the landing-page payloads. A part that failed is nil and
// has an entry in Errors; the others are still returned.
type Overview struct {
	Welcome   any                  `json:"welcome"`
	Analytics any                  `json:"analytics"`
	Content   any                  `json:"content"`
	Errors    map[string]PartError `json:"errors,omitempty"`
	FetchedAt time.Time            `json:"fetched_at"`
}

// InsightsService aggregates backend payloads.
type InsightsService struct {
	API Backend
}

// Overview fetches welcome, analytics and content concurrently.
func (s *InsightsService) Overview(ctx context.Context) Overview {
	ctx, span := otel.Tracer("services/InsightsService").Start(ctx, "Overview")
	defer span.End()

	type part struct {
		name string
		call func(context.Context) (any, error)
		dst  *any
	}
	var out Overview
	parts := []part{
		{"welcome", s.API.Welcome, &out.Welcome},
		{"analytics", s.API.AnalyticsSummary, &out.Analytics},
		{"content", s.API.ContentList, &out.Content},
	}
	errs := make([]error, len(parts))

	var g errgroup.Group
	for i, p := range parts {
		g.Go(func() error {
			v, err := p.call(ctx)
			if err != nil {
				errs[i] = err
				return nil
			}
			*p.dst = v
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if out.Errors == nil {
			out.Errors = map[string]PartError{}
		}
		out.Errors[parts[i].name] = partError(err)
		log.Ctx(ctx).Warn().Err(err).Str("part", parts[i].name).Msg("overview part failed")
	}
	out.FetchedAt = time.Now().UTC()
	return out
}

func partError(err error) PartError {
	var he *apiclient.HTTPError
	switch {
	case errors.As(err, &he):
		return PartError{Status: he.Status, Message: he.Message()}
	case apiclient.IsUnreachable(err):
		return PartError{Message: "request failed"}
	default:
		return PartError{Message: fmt.Sprint(err)}
	}
}
