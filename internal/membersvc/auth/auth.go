package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/jwtauth"
)

// CookieName is the session cookie holding the operator token.
const CookieName = "admin-token"

const sessionTTL = 24 * time.Hour

// Identity is the payload bound into a session token. There is exactly one
// operator credential for the whole system, no user table exists.
type Identity struct {
	Username string `json:"username"`
}

type Auth struct {
	tokenAuth  *jwtauth.JWTAuth
	username   string
	password   string
	production bool
}

// New builds the session authority from the environment. A missing
// JWT_SECRET_KEY or ADMIN_PASSWORD is a startup error, there is no
// hardcoded fallback.
func New() (*Auth, error) {
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		return nil, errors.New("JWT_SECRET_KEY is not set")
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return nil, errors.New("ADMIN_PASSWORD is not set")
	}

	return &Auth{
		tokenAuth:  jwtauth.New("HS256", []byte(secret), nil),
		username:   username,
		password:   password,
		production: os.Getenv("APP_ENV") == "production",
	}, nil
}

// Authenticate reports whether the pair matches the configured operator.
func (a *Auth) Authenticate(username, password string) bool {
	userOk := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOk := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOk && passOk
}

// Issue signs a 24h session token for the given operator identity.
func (a *Auth) Issue(username string) (string, error) {
	expirationTime := time.Now().Add(sessionTTL).Unix()

	_, tokenString, err := a.tokenAuth.Encode(map[string]interface{}{
		"username": username,
		"exp":      expirationTime,
	})
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify returns the embedded identity when the token is well formed, signed
// with our key and unexpired. Every failure mode yields nil, absence of a
// session is not an error.
func (a *Auth) Verify(tokenString string) *Identity {
	token, err := jwtauth.VerifyToken(a.tokenAuth, tokenString)
	if err != nil {
		return nil
	}

	v, ok := token.Get("username")
	if !ok {
		return nil
	}
	username, ok := v.(string)
	if !ok || username == "" {
		return nil
	}

	return &Identity{Username: username}
}

// TokenAuth exposes the underlying verifier for route middleware.
func (a *Auth) TokenAuth() *jwtauth.JWTAuth {
	return a.tokenAuth
}

// SetCookie stores the token as the httpOnly session cookie.
func (a *Auth) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.production,
	})
}

// ClearCookie removes the session cookie.
func (a *Auth) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.production,
	})
}

// TokenFromCookie extracts the session token from the admin cookie. Used as a
// find-token function for the jwtauth verifier alongside the bearer header.
func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
