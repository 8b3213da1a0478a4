package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface used for federated ID-token checks
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// CookieName is the portal session cookie.
const CookieName = "portal_session"

const identityKey = "identity"

// Identity is the authenticated caller attached to the request context by
// the session guard. A plain value, deliberately free of any persistence
// concern.
type Identity struct {
	UserID    string
	Username  string
	Role      string
	SessionID string
}

// CookieVerifier validates the signed session cookie and extracts the identity
type CookieVerifier interface {
	VerifySessionCookie(raw string) (*Identity, error)
}

// SessionChecker reports whether the server-side session behind a cookie is still live
type SessionChecker interface {
	SessionActive(ctx context.Context, id string) (bool, error)
}

// SessionRequired guards page routes: requests without a valid session are
// redirected to /login before the handler runs. The cookie signature is
// checked first, then the server-side session record, so logged-out
// cookies are rejected even before their expiry.
func SessionRequired(ver CookieVerifier, store SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := resolveIdentity(c, ver, store)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

// SessionRequiredJSON is the API-shaped variant: 401 JSON instead of a redirect.
func SessionRequiredJSON(ver CookieVerifier, store SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := resolveIdentity(c, ver, store)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

// RequireRole gates a page route on the session role. Mismatched callers
// are redirected to their own landing page; the handler never runs.
// Must be registered after SessionRequired.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if ident.Role != role {
			c.Redirect(http.StatusFound, LandingFor(ident.Role)+"?aviso=acceso_denegado")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoleJSON is the API-shaped role gate: 403 JSON on mismatch.
func RequireRoleJSON(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if ident.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the authenticated identity set by the session guard.
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	ident, ok := v.(*Identity)
	return ident, ok
}

// LandingFor maps a role to its post-login landing page.
func LandingFor(role string) string {
	if role == "doctor" {
		return "/panel_medico"
	}
	return "/portal"
}

func resolveIdentity(c *gin.Context, ver CookieVerifier, store SessionChecker) (*Identity, bool) {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return nil, false
	}
	ident, err := ver.VerifySessionCookie(raw)
	if err != nil {
		return nil, false
	}
	active, err := store.SessionActive(c.Request.Context(), ident.SessionID)
	if err != nil || !active {
		return nil, false
	}
	return ident, true
}
