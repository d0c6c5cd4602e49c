package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/customerbase/internal/domain"
)

// ErrorLogging returns the outermost behavior: it invokes the rest of the
// chain and, on failure, logs the request name and failure message before
// returning the error unchanged. Translation here is observability, not
// recovery; nothing is swallowed or converted.
func ErrorLogging(logger *slog.Logger) Behavior {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, req Request, next Next) (any, error) {
		res, err := next(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "request failed",
				slog.String("request", req.RequestName()),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		return res, nil
	}
}

// RequestLogging returns a behavior that logs a started event with a
// serialized snapshot of the request before invoking the rest of the chain,
// and a finished event with the same snapshot after it returns.
func RequestLogging(logger *slog.Logger) Behavior {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, req Request, next Next) (any, error) {
		snap := snapshot(req)
		logger.InfoContext(ctx, "request started",
			slog.String("request", req.RequestName()),
			slog.String("payload", snap),
		)

		res, err := next(ctx)
		if err != nil {
			return nil, err
		}

		logger.InfoContext(ctx, "request finished",
			slog.String("request", req.RequestName()),
			slog.String("payload", snap),
		)
		return res, nil
	}
}

// Validation returns the innermost behavior: it runs the constraints
// declared on the request type via validate struct tags and short-circuits
// the handler when any check fails, enumerating every violation in a single
// validation error. Requests without tags pass through untouched.
func Validation(v *validator.Validate) Behavior {
	return func(ctx context.Context, req Request, next Next) (any, error) {
		if err := v.StructCtx(ctx, req); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				msgs := make([]string, 0, len(ve))
				for _, fe := range ve {
					m := fe.Field() + ": " + fe.Tag()
					if fe.Param() != "" {
						m += "=" + fe.Param()
					}
					msgs = append(msgs, m)
				}
				return nil, domain.NewAppError(domain.CodeValidation, strings.Join(msgs, "; "), err)
			}
			return nil, domain.NewAppError(domain.CodeValidation, err.Error(), err)
		}
		return next(ctx)
	}
}

// snapshot serializes a request for logging. Requests are small command and
// query structs; a marshal failure degrades to a placeholder rather than
// failing the request.
func snapshot(req Request) string {
	b, err := json.Marshal(req)
	if err != nil {
		return "{}"
	}
	return string(b)
}
