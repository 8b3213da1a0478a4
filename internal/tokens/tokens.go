package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/medifed/portal/internal/models"
	"github.com/medifed/portal/pkg/middleware"
)

var ErrInvalidToken = errors.New("invalid session token")

// GenerateSessionToken creates the signed JWT placed in the portal cookie.
// It binds the account, its role and the server-side session ID, so the
// guard can both trust the claims and revoke via the session store.
func GenerateSessionToken(secret string, u *models.User, sessionID string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"role":     u.Role,
		"sid":      sessionID,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// CookieVerifier validates session cookies signed with the shared secret.
// Implements middleware.CookieVerifier.
type CookieVerifier struct {
	Secret string
}

func NewCookieVerifier(secret string) *CookieVerifier {
	return &CookieVerifier{Secret: secret}
}

func (v *CookieVerifier) VerifySessionCookie(raw string) (*middleware.Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(v.Secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	sid, _ := claims["sid"].(string)
	if sub == "" || sid == "" {
		return nil, ErrInvalidToken
	}
	return &middleware.Identity{UserID: sub, Username: username, Role: role, SessionID: sid}, nil
}
