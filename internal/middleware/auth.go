package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/blast/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// OperatorKey is the context key for the authenticated operator name.
	OperatorKey contextKey = "operator"
	// operatorSlotKey holds the slot LoggingInterceptor reads after the call.
	operatorSlotKey contextKey = "operator_slot"
)

// operatorSlot lets an inner interceptor report the operator to an outer one.
type operatorSlot struct {
	name string
}

// GetOperator extracts the operator name from the context.
// Returns empty string if not found.
func GetOperator(ctx context.Context) string {
	operator, _ := ctx.Value(OperatorKey).(string)
	return operator
}

// WithOperator returns a copy of ctx carrying the operator name. It also
// fills the logging slot when LoggingInterceptor runs further out.
func WithOperator(ctx context.Context, operator string) context.Context {
	if slot, ok := ctx.Value(operatorSlotKey).(*operatorSlot); ok {
		slot.name = operator
	}
	return context.WithValue(ctx, OperatorKey, operator)
}

// Authenticate validates a raw Authorization header value and returns the
// context enriched with the operator.
func Authenticate(ctx context.Context, jwtManager *auth.JWTManager, authHeader string) (context.Context, error) {
	if authHeader == "" {
		return ctx, auth.ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ctx, auth.ErrInvalidToken
	}

	claims, err := jwtManager.Validate(parts[1])
	if err != nil {
		return ctx, err
	}
	return WithOperator(ctx, claims.Operator), nil
}

// RequireAuth returns an interceptor that validates JWT tokens on every
// procedure except those listed in public.
func RequireAuth(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	skip := make(map[string]bool, len(public))
	for _, p := range public {
		skip[p] = true
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if skip[req.Spec().Procedure] {
				return next(ctx, req)
			}

			ctx, err := Authenticate(ctx, jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(ctx, req)
		}
	}
}

// RequireAuthHTTP is the plain net/http form of RequireAuth. Preflight
// OPTIONS requests pass through unauthenticated.
func RequireAuthHTTP(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			ctx, err := Authenticate(r.Context(), jwtManager, r.Header.Get("Authorization"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
