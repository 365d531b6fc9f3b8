package assistant

import (
	"context"

	"go.uber.org/zap"
)

// FallbackResponder tries primary first and answers with secondary when the
// primary fails for any reason.
type FallbackResponder struct {
	primary   Responder
	secondary Responder
	log       *zap.Logger
}

func NewFallbackResponder(primary, secondary Responder, log *zap.Logger) *FallbackResponder {
	return &FallbackResponder{primary: primary, secondary: secondary, log: log}
}

// Model is the preferred model. The model that actually answered is reported
// in each Reply.
func (f *FallbackResponder) Model() string { return f.primary.Model() }

func (f *FallbackResponder) Respond(ctx context.Context, prompt string) (Reply, error) {
	reply, err := f.primary.Respond(ctx, prompt)
	if err == nil {
		return reply, nil
	}
	f.log.Warn("chat responder failed, falling back",
		zap.String("primary", f.primary.Model()),
		zap.String("secondary", f.secondary.Model()),
		zap.Error(err),
	)
	return f.secondary.Respond(ctx, prompt)
}
