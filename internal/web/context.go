package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/sgq/internal/core"
)

// WithRequestMetadata adds the client IP to ctx for the audit trail.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // Already processed by chi middleware.RealIP
	return core.ContextWithIPAddress(ctx, ip)
}
