package auth

import (
	"context"
	"net/http"
	"strings"
)

// AnonymousOwner is the shared identity for unauthenticated clients.
const AnonymousOwner = "anonymous"

type ownerKey struct{}

// Middleware resolves the opaque owner identity for a request. Real
// authentication lives in an external collaborator in front of this service;
// whatever identity it forwarded is accepted as-is, and unauthenticated
// requests run as the anonymous owner.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if owner == "" {
			owner = AnonymousOwner
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	})
}

// Owner returns the owner identity resolved for the request context.
func Owner(ctx context.Context) string {
	if owner, ok := ctx.Value(ownerKey{}).(string); ok && owner != "" {
		return owner
	}
	return AnonymousOwner
}
