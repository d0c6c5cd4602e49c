// Package dispatch routes typed requests through an ordered chain of
// cross-cutting behaviors to a handler. The chain is composed once at
// startup; each behavior wraps the call to the rest of the chain, so the
// first behavior observes everything that happens inside the later ones and
// the handler itself.
package dispatch

import (
	"context"
	"fmt"

	"github.com/simp-lee/customerbase/internal/domain"
)

// Request is a message routed through the pipeline. RequestName identifies
// the request type in logs and errors.
type Request interface {
	RequestName() string
}

// Next invokes the remainder of the chain.
type Next func(ctx context.Context) (any, error)

// Behavior is a cross-cutting wrapper around the rest of the chain. A
// behavior may short-circuit by returning without calling next.
type Behavior func(ctx context.Context, req Request, next Next) (any, error)

// Handler handles exactly one request type.
type Handler[Req Request, Res any] interface {
	Handle(ctx context.Context, req Req) (Res, error)
}

// Pipeline is an immutable, ordered behavior chain.
type Pipeline struct {
	behaviors []Behavior
}

// NewPipeline composes the given behaviors in invocation order: the first
// behavior is the outermost wrapper.
func NewPipeline(behaviors ...Behavior) *Pipeline {
	return &Pipeline{behaviors: behaviors}
}

// Execute runs req through every behavior and finally through handler.
func (p *Pipeline) Execute(ctx context.Context, req Request, handler Next) (any, error) {
	next := handler
	for i := len(p.behaviors) - 1; i >= 0; i-- {
		b := p.behaviors[i]
		inner := next
		next = func(ctx context.Context) (any, error) {
			return b(ctx, req, inner)
		}
	}
	return next(ctx)
}

// Send dispatches req through the pipeline into h and returns the typed
// result. Errors from behaviors and the handler surface unchanged.
func Send[Req Request, Res any](ctx context.Context, p *Pipeline, h Handler[Req, Res], req Req) (Res, error) {
	var zero Res

	out, err := p.Execute(ctx, req, func(ctx context.Context) (any, error) {
		return h.Handle(ctx, req)
	})
	if err != nil {
		return zero, err
	}

	res, ok := out.(Res)
	if !ok {
		return zero, domain.NewAppError(domain.CodeInternal,
			fmt.Sprintf("unexpected response type %T for %s", out, req.RequestName()), nil)
	}
	return res, nil
}
