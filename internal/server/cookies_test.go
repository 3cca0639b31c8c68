package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// signedCookie produces the cookie Set would write, for attaching to requests.
func signedCookie(c *Cookies, name, value string) *http.Cookie {
	rec := httptest.NewRecorder()
	c.Set(rec, name, value, 0)
	return rec.Result().Cookies()[0]
}

func TestCookies(t *testing.T) {
	codec := NewCookies("test-secret")

	t.Run("round trip", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(signedCookie(codec, sessionCookie, "abc123"))

		value, ok := codec.Read(req, sessionCookie)
		if !ok {
			t.Fatal("expected valid cookie")
		}
		if value != "abc123" {
			t.Errorf("expected 'abc123', got %s", value)
		}
	})

	t.Run("missing cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)

		if _, ok := codec.Read(req, sessionCookie); ok {
			t.Error("expected missing cookie to read as absent")
		}
	})

	t.Run("tampered value reads as absent", func(t *testing.T) {
		cookie := signedCookie(codec, sessionCookie, "abc123")
		cookie.Value = "evil" + cookie.Value[4:]

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(cookie)

		if _, ok := codec.Read(req, sessionCookie); ok {
			t.Error("expected tampered cookie to read as absent")
		}
	})

	t.Run("unsigned value reads as absent", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "abc123"})

		if _, ok := codec.Read(req, sessionCookie); ok {
			t.Error("expected unsigned cookie to read as absent")
		}
	})

	t.Run("different secret fails verification", func(t *testing.T) {
		other := NewCookies("other-secret")

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(signedCookie(codec, sessionCookie, "abc123"))

		if _, ok := other.Read(req, sessionCookie); ok {
			t.Error("expected signature from another key to fail")
		}
	})

	t.Run("set attributes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		codec.Set(rec, stateCookie, "state", 600)

		cookie := rec.Result().Cookies()[0]
		if !cookie.HttpOnly {
			t.Error("expected HttpOnly")
		}
		if cookie.SameSite != http.SameSiteLaxMode {
			t.Error("expected SameSite=Lax")
		}
		if cookie.MaxAge != 600 {
			t.Errorf("expected MaxAge 600, got %d", cookie.MaxAge)
		}
	})

	t.Run("clear expires immediately", func(t *testing.T) {
		rec := httptest.NewRecorder()
		codec.Clear(rec, sessionCookie)

		cookie := rec.Result().Cookies()[0]
		if cookie.MaxAge != -1 {
			t.Errorf("expected MaxAge -1, got %d", cookie.MaxAge)
		}
		if cookie.Value != "" {
			t.Errorf("expected empty value, got %s", cookie.Value)
		}
	})
}
