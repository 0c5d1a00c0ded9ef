package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/api"
	"github.com/sistemaos/webapp/internal/prefs"
)

func testHandler(t *testing.T, backendURL string) http.Handler {
	t.Helper()
	store, err := prefs.Open("file:" + filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return New(api.New(backendURL), store)
}

func TestHealth(t *testing.T) {
	h := testHandler(t, "http://127.0.0.1:0")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHealthzChecksStore(t *testing.T) {
	h := testHandler(t, "http://127.0.0.1:0")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestProtectedPagesRedirectAnonymous(t *testing.T) {
	h := testHandler(t, "http://127.0.0.1:0")
	for _, path := range []string{"/", "/ordens", "/clientes", "/servicos", "/materiais", "/agenda", "/settings"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.Header.Set("Accept", "text/html")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d", path, w.Code)
			continue
		}
		if loc := w.Header().Get("Location"); loc != "/login" {
			t.Errorf("%s: redirect = %q", path, loc)
		}
	}
}

func TestLoginPageIsPublic(t *testing.T) {
	h := testHandler(t, "http://127.0.0.1:0")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Entrar") {
		t.Fatal("login form missing")
	}
}

func TestAuthenticatedDashboard(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/dashboard/stats/":
			w.Write([]byte(`{"total_clientes": 1, "ordens_abertas": 2, "faturamento_mes": "10.00", "receita_total": "10.00", "ticket_medio": "10.00"}`))
		case "/clientes/":
			w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	h := testHandler(t, backend.URL)

	rec := httptest.NewRecorder()
	auth.CreateSession(rec, auth.Session{Token: "tok", Username: "tester"})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "text/html")
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Dashboard") {
		t.Fatal("dashboard content missing")
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatal("request id header missing")
	}
}
