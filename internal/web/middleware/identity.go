package middleware

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/sgq/internal/core"
)

// Header names read by Identity.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

// Anonymous is attached when the request carries no user headers.
var Anonymous = core.Identity{UserID: "anonymous", Name: "anonymous"}

// Identity attaches the caller to the request context. Every request is
// accepted: the user headers name who is acting, they are not verified.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Anonymous
		if userID := strings.TrimSpace(r.Header.Get(HeaderUserID)); userID != "" {
			id = core.Identity{UserID: userID, Name: userID}
			if name := strings.TrimSpace(r.Header.Get(HeaderUserName)); name != "" {
				id.Name = name
			}
		}
		next.ServeHTTP(w, r.WithContext(core.ContextWithIdentity(r.Context(), id)))
	})
}
