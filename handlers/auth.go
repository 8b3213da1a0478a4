package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medifed/portal/internal/config"
	"github.com/medifed/portal/internal/models"
	"github.com/medifed/portal/internal/sessions"
	"github.com/medifed/portal/internal/tokens"
	"github.com/medifed/portal/internal/users"
	"github.com/medifed/portal/pkg/logger"
	"github.com/medifed/portal/pkg/metrics"
	"github.com/medifed/portal/pkg/middleware"
)

// GoogleLoginRequest carries the ID token obtained client-side
type GoogleLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

// test-doctor credentials used by the seeding route (dev only)
const (
	testDoctorUsername = "doctor@medifed.com"
	testDoctorPassword = "medico123"
)

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg      *config.Config
	usersSvc *users.Service
	sessSvc  *sessions.Service
	verifier middleware.Verifier // Google ID-token verifier; nil when not configured
}

func NewAuthHandler(cfg *config.Config, u *users.Service, s *sessions.Service, ver middleware.Verifier) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, sessSvc: s, verifier: ver}
}

// Register wires the public auth routes plus the guarded logout.
func (h *AuthHandler) Register(r *gin.Engine, sessionGuard gin.HandlerFunc) {
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.POST("/login_google", h.LoginGoogle)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.RegisterUser)
	r.GET("/error", h.ErrorPage)
	r.GET("/logout", sessionGuard, h.Logout)
	r.GET("/crear_medico_prueba", h.SeedTestDoctor)
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, loginHTML)
}

// Login authenticates the form credentials and establishes a session.
// Unknown user and wrong password both land on the same generic error
// page so callers cannot enumerate accounts.
func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	u, err := h.usersSvc.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("password", "failure").Inc()
		c.Redirect(http.StatusFound, "/error")
		return
	}
	if err := h.establishSession(c, u); err != nil {
		logger.Errorf("login: session setup failed: %v", err)
		metrics.LoginAttempts.WithLabelValues("password", "failure").Inc()
		c.Redirect(http.StatusFound, "/error")
		return
	}
	metrics.LoginAttempts.WithLabelValues("password", "success").Inc()
	c.Redirect(http.StatusFound, middleware.LandingFor(u.Role))
}

// LoginGoogle accepts a Google ID token, verifies it, provisions the
// account on first sign-in and establishes a session. Failures report a
// structured reason instead of the generic error page.
func (h *AuthHandler) LoginGoogle(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "token requerido"})
		return
	}
	if h.verifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Google sign-in no configurado"})
		return
	}
	tok, err := h.verifier.Verify(c.Request.Context(), req.Token)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("google", "failure").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "token inválido"})
		return
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		metrics.LoginAttempts.WithLabelValues("google", "failure").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "no se pudieron leer los claims del token"})
		return
	}
	email, _ := claims["email"].(string)
	if email == "" {
		metrics.LoginAttempts.WithLabelValues("google", "failure").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "el token no contiene email"})
		return
	}
	u, err := h.usersSvc.EnsureFederated(c.Request.Context(), email)
	if err != nil {
		logger.Errorf("login_google: provisioning failed: %v", err)
		metrics.LoginAttempts.WithLabelValues("google", "failure").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "no se pudo crear la cuenta"})
		return
	}
	if err := h.establishSession(c, u); err != nil {
		logger.Errorf("login_google: session setup failed: %v", err)
		metrics.LoginAttempts.WithLabelValues("google", "failure").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "no se pudo iniciar la sesión"})
		return
	}
	metrics.LoginAttempts.WithLabelValues("google", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "login correcto"})
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, registerHTML)
}

// RegisterUser creates a patient account and sends the user to /login.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	if _, err := h.usersSvc.Register(c.Request.Context(), email, password); err != nil {
		if err != users.ErrUserExists && err != users.ErrInvalidCredentials {
			logger.Errorf("register: %v", err)
		}
		c.Redirect(http.StatusFound, "/error")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ErrorPage(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, errorHTML)
}

// Logout tears down the server-side session and clears the cookie.
// Idempotent: logging out twice is harmless.
func (h *AuthHandler) Logout(c *gin.Context) {
	if ident, ok := middleware.IdentityFrom(c); ok {
		if err := h.sessSvc.Delete(c.Request.Context(), ident.SessionID); err != nil {
			logger.Warnf("logout: session delete failed: %v", err)
		}
	}
	c.SetCookie(middleware.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// SeedTestDoctor provisions the fixed test doctor account. Only enabled
// outside production; this is the single role-doctor producer.
func (h *AuthHandler) SeedTestDoctor(c *gin.Context) {
	if h.cfg.Server.Environment == "production" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	u, err := h.usersSvc.SeedDoctor(c.Request.Context(), testDoctorUsername, testDoctorPassword)
	if err != nil {
		logger.Errorf("seed doctor: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "no se pudo crear el médico de prueba"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "username": u.Username, "role": u.Role})
}

func (h *AuthHandler) establishSession(c *gin.Context, u *models.User) error {
	ttl := h.cfg.Session.TTL
	sid, err := h.sessSvc.Create(c.Request.Context(), u.ID, u.Username, u.Role, ttl)
	if err != nil {
		return err
	}
	token, err := tokens.GenerateSessionToken(h.cfg.Session.Secret, u, sid, ttl)
	if err != nil {
		return err
	}
	c.SetCookie(middleware.CookieName, token, int(ttl.Seconds()), "/", "", false, true)
	return nil
}

const loginHTML = `<!doctype html>
<html><head><meta charset="utf-8"><title>Medifed — Iniciar sesión</title></head>
<body><h2>Iniciar sesión</h2>
<form method="post" action="/login">
  <input type="email" name="email" placeholder="Email" required>
  <input type="password" name="password" placeholder="Contraseña" required>
  <button type="submit">Entrar</button>
</form>
<p><a href="/register">Crear cuenta</a></p>
</body></html>`

const registerHTML = `<!doctype html>
<html><head><meta charset="utf-8"><title>Medifed — Registro</title></head>
<body><h2>Crear cuenta</h2>
<form method="post" action="/register">
  <input type="email" name="email" placeholder="Email" required>
  <input type="password" name="password" placeholder="Contraseña" required>
  <button type="submit">Registrarme</button>
</form>
</body></html>`

const errorHTML = `<!doctype html>
<html><head><meta charset="utf-8"><title>Medifed — Error</title></head>
<body><h2>No se pudo iniciar sesión</h2>
<p>Verificá tus datos e intentá de nuevo.</p>
<p><a href="/login">Volver al login</a></p>
</body></html>`
