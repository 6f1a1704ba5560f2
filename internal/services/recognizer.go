package services

import (
	"bytes"
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mokayaj857/vireya/internal/apiclient"
	"github.com/mokayaj857/vireya/internal/recognition"
	"github.com/mokayaj857/vireya/internal/upload"
)

// DrugRecognizer sends scans to the backend and normalizes the answer.
// It satisfies upload.Recognizer.
type DrugRecognizer struct {
	API Backend
	// Extra fields sent with every upload.
	Extra map[string]string
}

// Recognize implements upload.Recognizer.
func (r *DrugRecognizer) Recognize(ctx context.Context, f upload.File) (*recognition.Result, error) {
	ctx, span := otel.Tracer("services/DrugRecognizer").Start(ctx, "Recognize")
	defer span.End()
	span.SetAttributes(attribute.Int64("file.size", f.Size()), attribute.String("file.type", f.ContentType))

	raw, err := r.API.RecognizeDrug(ctx, apiclient.File{
		Name:        f.Name,
		ContentType: f.ContentType,
		Content:     bytes.NewReader(f.Data),
	}, r.Extra)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	res, err := recognition.Normalize(raw)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return res, nil
}
