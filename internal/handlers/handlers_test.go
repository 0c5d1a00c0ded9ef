package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/view"
)

func init() {
	view.SetBaseDir("../../templates")
}

// authedRequest builds a request carrying a valid signed session cookie.
func authedRequest(t *testing.T, method, target string, form url.Values) *http.Request {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	r := httptest.NewRequest(method, target, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, auth.Session{Token: "test-token", Username: "tester"})
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func flashMessage(t *testing.T, res *http.Response) string {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == "flash" {
			dec, err := url.QueryUnescape(c.Value)
			if err != nil {
				t.Fatalf("flash cookie not url-escaped: %v", err)
			}
			return dec
		}
	}
	return ""
}

func sessionCleared(res *http.Response) bool {
	for _, c := range res.Cookies() {
		if c.Name == "session" && c.MaxAge < 0 {
			return true
		}
	}
	return false
}
