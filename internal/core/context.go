package core

import "context"

type contextKey string

const (
	ctxKeyIdentity  contextKey = "identity"
	ctxKeyIPAddress contextKey = "audit_ip"
)

// Identity is the caller every store call is made on behalf of.
type Identity struct {
	UserID string
	Name   string
}

// SystemIdentity is used when no caller is attached, e.g. by the CLI.
var SystemIdentity = Identity{UserID: "system", Name: "system"}

// ContextWithIdentity attaches the caller to ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the attached caller, or SystemIdentity.
func IdentityFromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(ctxKeyIdentity).(Identity); ok && id.UserID != "" {
		return id
	}
	return SystemIdentity
}

// ContextWithIPAddress adds IP address to context for audit logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// GetIPAddressFromContext extracts IP address from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}
