package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/api"
)

func authMux(fb *fakeBackend) http.Handler {
	mux := http.NewServeMux()
	NewAuthHandler(api.New(fb.srv.URL), nil).Register(mux)
	return auth.Middleware(mux)
}

func TestLoginSuccessSetsSessionAndRedirects(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("POST /token/", 200, `{"access": "jwt-access", "refresh": "jwt-refresh"}`)

	form := url.Values{"username": {"joao"}, "password": {"s3cret"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	authMux(fb).ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Fatalf("redirect = %q", loc)
	}
	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("session cookie not set")
	}

	// The cookie round-trips into a usable session.
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(session)
	s, ok := auth.ParseSession(r2)
	if !ok || s.Token != "jwt-access" || s.Username != "joao" {
		t.Fatalf("parsed session = %+v ok=%v", s, ok)
	}
}

func TestLoginInvalidCredentialsRerenders(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("POST /token/", 401, `{"detail": "No active account found with the given credentials"}`)

	form := url.Values{"username": {"joao"}, "password": {"wrong"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	authMux(fb).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Usuário ou senha inválidos.") {
		t.Fatal("credential error missing")
	}
	if !strings.Contains(body, `value="joao"`) {
		t.Fatal("username not preserved")
	}
}

func TestRegisterSuccessRedirectsToLogin(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("POST /user/register/", 201, `{"id": 1, "username": "maria"}`)

	form := url.Values{
		"username": {"maria"},
		"email":    {"maria@example.com"},
		"password": {"s3cret"},
	}
	r := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	authMux(fb).ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect = %q", loc)
	}
}

func TestRegisterBackendErrorRerenders(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("POST /user/register/", 400, `{"username": ["Um usuário com este nome já existe."]}`)

	form := url.Values{
		"username": {"maria"},
		"email":    {"maria@example.com"},
		"password": {"s3cret"},
	}
	r := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	authMux(fb).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "já existe") {
		t.Fatal("backend reason missing")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	fb := newFakeBackend(t)

	w := httptest.NewRecorder()
	authMux(fb).ServeHTTP(w, authedRequest(t, http.MethodPost, "/logout", nil))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect = %q", loc)
	}
	if !sessionCleared(w.Result()) {
		t.Fatal("session cookie not cleared")
	}
}
