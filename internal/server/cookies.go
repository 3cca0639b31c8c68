package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

const (
	// stateCookie carries the anti-forgery value across the authorization redirect.
	stateCookie = "oauth_state"

	// sessionCookie carries the opaque session id; tokens never leave the server.
	sessionCookie = "sid"

	// stateCookieTTL bounds how long a pending authorization attempt stays valid.
	stateCookieTTL = 10 * time.Minute
)

// Cookies signs and verifies cookie values with HMAC-SHA256 so a tampered
// value reads as absent rather than as someone else's session.
type Cookies struct {
	secret []byte
}

// NewCookies creates a cookie codec keyed by secret.
func NewCookies(secret string) *Cookies {
	return &Cookies{secret: []byte(secret)}
}

func (c *Cookies) sign(value string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

// Set writes a signed, HttpOnly, SameSite=Lax cookie. A maxAge of zero makes
// it a session cookie.
func (c *Cookies) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value + "." + c.sign(value),
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the verified value of the named cookie. A missing cookie,
// a malformed value, or a bad signature all report false.
func (c *Cookies) Read(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", false
	}

	dot := strings.LastIndex(cookie.Value, ".")
	if dot < 0 {
		return "", false
	}

	value, sig := cookie.Value[:dot], cookie.Value[dot+1:]
	if !hmac.Equal([]byte(sig), []byte(c.sign(value))) {
		return "", false
	}
	return value, true
}

// Clear expires the named cookie immediately.
func (c *Cookies) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
