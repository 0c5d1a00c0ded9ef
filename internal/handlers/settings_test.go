package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/prefs"
)

func settingsMux(t *testing.T) (http.Handler, *prefs.Store) {
	t.Helper()
	store, err := prefs.Open("file:" + filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	mux := http.NewServeMux()
	NewSettingsHandler(store).Register(mux)
	return auth.Middleware(mux), store
}

func TestSettingsSavePersistsAndMirrorsCookies(t *testing.T) {
	h, store := settingsMux(t)

	form := url.Values{
		"theme":     {"light"},
		"paleta":    {"pintor"},
		"forma_PIX": {"1"},
		"forma_DIN": {"1"},
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(t, http.MethodPost, "/settings", form))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}

	p, err := store.Get("tester")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Theme != "light" || p.Paleta != "pintor" {
		t.Fatalf("saved pref = %+v", p)
	}
	if p.FormaEnabled("CC") {
		t.Fatal("unchecked method should be disabled")
	}

	var theme, paleta string
	for _, c := range w.Result().Cookies() {
		switch c.Name {
		case "theme":
			theme = c.Value
		case "paleta":
			paleta = c.Value
		}
	}
	if theme != "light" || paleta != "pintor" {
		t.Fatalf("cookies not mirrored: theme=%q paleta=%q", theme, paleta)
	}
}

func TestSettingsRejectsDisablingEveryMethod(t *testing.T) {
	h, store := settingsMux(t)

	form := url.Values{"theme": {"dark"}, "paleta": {"geral"}}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(t, http.MethodPost, "/settings", form))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if msg := flashMessage(t, w.Result()); !strings.Contains(msg, "ao menos uma forma de pagamento") {
		t.Fatalf("flash = %q", msg)
	}
	p, _ := store.Get("tester")
	if !p.FormaEnabled("PIX") {
		t.Fatal("defaults must survive a rejected save")
	}
}

func TestSettingsInvalidThemeFallsBack(t *testing.T) {
	h, store := settingsMux(t)

	form := url.Values{"theme": {"neon"}, "paleta": {"inexistente"}, "forma_PIX": {"1"}}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(t, http.MethodPost, "/settings", form))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	p, _ := store.Get("tester")
	if p.Theme != prefs.DefaultTheme || p.Paleta != prefs.DefaultPaleta {
		t.Fatalf("fallback not applied: %+v", p)
	}
}

func TestSettingsPageRendersCurrentState(t *testing.T) {
	h, store := settingsMux(t)
	if err := store.Save(prefs.Preference{Username: "tester", Theme: "light", Paleta: "encanador", FormasPagamento: "PIX"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, authedRequest(t, http.MethodGet, "/settings", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `value="encanador" selected`) {
		t.Fatal("saved palette not selected")
	}
}
