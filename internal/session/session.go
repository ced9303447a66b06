// Package session seals the logged-in user's profile snapshot in a signed
// cookie. The profile is the only thing persisted client-side: no upstream
// password or token is ever retained. The session is an explicit object set
// on login, cleared on logout, and read once per request by middleware --
// never mutated anywhere else.
package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the session cookie. The cookie itself has browser-session
// lifetime; the token inside carries a hard expiry cap.
const CookieName = "clientiq_session"

const tokenTTL = 7 * 24 * time.Hour

// Profile is the user snapshot kept for UI display and logged-in gating.
type Profile struct {
	UserID    int    `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Claims is the token payload: the profile plus registered claims.
type Claims struct {
	Profile
	jwt.RegisteredClaims
}

// IssueToken signs a session token carrying the profile snapshot.
func IssueToken(secret string, p Profile) (string, error) {
	claims := Claims{
		Profile: p,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken verifies a session token and returns the embedded profile.
func ValidateToken(secret, tokenStr string) (*Profile, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &claims.Profile, nil
}

// FromRequest reads and validates the session cookie.
func FromRequest(r *http.Request, secret string) (*Profile, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, err
	}
	return ValidateToken(secret, c.Value)
}

// SetCookie attaches the session token as an HttpOnly session cookie.
func SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
