package apiclient

import (
	"context"
	"strings"
)

// Upstream paths.
const (
	PathWelcome          = "/api/welcome/"
	PathAnalyticsSummary = "/api/analytics/summary/"
	PathContent          = "/api/content/"
	PathSupport          = "/api/support/"
	PathDrugRecognize    = "/api/drug/recognize/"
)

// SupportTicket is the body of a support request. Email is optional.
type SupportTicket struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
}

// Welcome fetches the welcome payload.
func (c *Client) Welcome(ctx context.Context) (any, error) {
	return c.Get(ctx, PathWelcome)
}

// AnalyticsSummary fetches the analytics summary.
func (c *Client) AnalyticsSummary(ctx context.Context) (any, error) {
	return c.Get(ctx, PathAnalyticsSummary)
}

// ContentList fetches the published content list.
func (c *Client) ContentList(ctx context.Context) (any, error) {
	return c.Get(ctx, PathContent)
}

// CreateSupportTicket submits a support request.
func (c *Client) CreateSupportTicket(ctx context.Context, t SupportTicket) (any, error) {
	t.Email = strings.TrimSpace(t.Email)
	return c.Post(ctx, PathSupport, t)
}

// RecognizeDrug uploads an image for drug identification.
func (c *Client) RecognizeDrug(ctx context.Context, f File, extra map[string]string) (any, error) {
	return c.PostMultipart(ctx, PathDrugRecognize, f, extra)
}
