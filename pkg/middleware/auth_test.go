package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeCookieVerifier struct {
	ident *Identity
	err   error
}

func (f *fakeCookieVerifier) VerifySessionCookie(raw string) (*Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ident, nil
}

type fakeSessionChecker struct {
	active map[string]bool
}

func (f *fakeSessionChecker) SessionActive(ctx context.Context, id string) (bool, error) {
	return f.active[id], nil
}

func patientIdent() *Identity {
	return &Identity{UserID: "u1", Username: "a@x.com", Role: "patient", SessionID: "sid-1"}
}

func TestSessionRequired_RedirectsWithoutCookie(t *testing.T) {
	r := gin.New()
	ran := false
	r.GET("/portal", SessionRequired(&fakeCookieVerifier{}, &fakeSessionChecker{}), func(c *gin.Context) {
		ran = true
		c.String(200, "ok")
	})

	req := httptest.NewRequest("GET", "/portal", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
	require.False(t, ran, "handler must not run for unauthenticated callers")
}

func TestSessionRequired_RejectsRevokedSession(t *testing.T) {
	ver := &fakeCookieVerifier{ident: patientIdent()}
	store := &fakeSessionChecker{active: map[string]bool{}} // nothing active

	r := gin.New()
	r.GET("/portal", SessionRequired(ver, store), func(c *gin.Context) { c.String(200, "ok") })

	req := httptest.NewRequest("GET", "/portal", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "signed-but-revoked"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
}

func TestSessionRequired_AttachesIdentity(t *testing.T) {
	ver := &fakeCookieVerifier{ident: patientIdent()}
	store := &fakeSessionChecker{active: map[string]bool{"sid-1": true}}

	r := gin.New()
	var got *Identity
	r.GET("/portal", SessionRequired(ver, store), func(c *gin.Context) {
		got, _ = IdentityFrom(c)
		c.String(200, "ok")
	})

	req := httptest.NewRequest("GET", "/portal", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "signed"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	require.Equal(t, "u1", got.UserID)
	require.Equal(t, "patient", got.Role)
}

func TestSessionRequiredJSON_Returns401(t *testing.T) {
	r := gin.New()
	r.POST("/api", SessionRequiredJSON(&fakeCookieVerifier{err: errors.New("bad")}, &fakeSessionChecker{}), func(c *gin.Context) {
		c.String(200, "ok")
	})

	req := httptest.NewRequest("POST", "/api", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_RedirectsMismatch(t *testing.T) {
	ver := &fakeCookieVerifier{ident: patientIdent()}
	store := &fakeSessionChecker{active: map[string]bool{"sid-1": true}}

	r := gin.New()
	ran := false
	r.GET("/panel_medico", SessionRequired(ver, store), RequireRole("doctor"), func(c *gin.Context) {
		ran = true
		c.String(200, "ok")
	})

	req := httptest.NewRequest("GET", "/panel_medico", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "signed"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	require.Contains(t, w.Header().Get("Location"), "/portal")
	require.False(t, ran, "handler must not run on role mismatch")
}

func TestRequireRoleJSON_Forbidden(t *testing.T) {
	ver := &fakeCookieVerifier{ident: patientIdent()}
	store := &fakeSessionChecker{active: map[string]bool{"sid-1": true}}

	r := gin.New()
	r.POST("/confirmar", SessionRequiredJSON(ver, store), RequireRoleJSON("doctor"), func(c *gin.Context) {
		c.String(200, "ok")
	})

	req := httptest.NewRequest("POST", "/confirmar", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "signed"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_AllowsMatch(t *testing.T) {
	ident := &Identity{UserID: "d1", Username: "doc@x.com", Role: "doctor", SessionID: "sid-d"}
	ver := &fakeCookieVerifier{ident: ident}
	store := &fakeSessionChecker{active: map[string]bool{"sid-d": true}}

	r := gin.New()
	r.GET("/panel_medico", SessionRequired(ver, store), RequireRole("doctor"), func(c *gin.Context) {
		c.String(200, "ok")
	})

	req := httptest.NewRequest("GET", "/panel_medico", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "signed"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
