// Package greeting serves the configured greeting together with the time the
// request was handled.
package greeting

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/hello-openshift/internal/platform/logging"
	"github.com/janisto/hello-openshift/internal/platform/timeutil"
)

// Handler answers GET / with a fixed message. Safe for concurrent use.
type Handler struct {
	message string
	now     timeutil.Clock
}

// Option customizes a Handler.
type Option func(*Handler)

// WithClock replaces the wall clock.
func WithClock(clock timeutil.Clock) Option {
	return func(h *Handler) {
		if clock != nil {
			h.now = clock
		}
	}
}

// New returns a Handler that always greets with message.
func New(message string, opts ...Option) *Handler {
	h := &Handler{message: message, now: timeutil.SystemClock}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register wires the greeting route into the provided API router.
func (h *Handler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-greeting",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Get the greeting",
		Description: "Returns the configured greeting message and the current UTC time.",
	}, h.get)
}

func (h *Handler) get(ctx context.Context, _ *struct{}) (*GetOutput, error) {
	out := &GetOutput{Body: h.Greet()}
	applog.LogInfo(ctx, "greeting get", zap.String("path", "/"), zap.String("greetingTimestamp", out.Body.Timestamp))
	return out, nil
}

// Greet builds the payload for the current instant.
func (h *Handler) Greet() Data {
	return Data{
		Message:   h.message,
		Timestamp: timeutil.FormatMillis(h.now()),
	}
}
