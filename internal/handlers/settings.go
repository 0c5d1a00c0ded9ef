package handlers

import (
	"net/http"
	"strings"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/api"
	"github.com/sistemaos/webapp/internal/middleware"
	"github.com/sistemaos/webapp/internal/prefs"
)

type SettingsHandler struct {
	Prefs *prefs.Store
}

func NewSettingsHandler(store *prefs.Store) *SettingsHandler {
	return &SettingsHandler{Prefs: store}
}

func (h *SettingsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /settings", h.index)
	mux.HandleFunc("POST /settings", h.save)
}

func (h *SettingsHandler) index(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	pref, err := h.Prefs.Get(sess.Username)
	if err != nil {
		pref = prefs.Preference{Username: sess.Username, Theme: prefs.DefaultTheme, Paleta: prefs.DefaultPaleta}
	}
	habilitadas := map[string]bool{}
	for _, code := range pref.FormasList() {
		habilitadas[code] = true
	}
	render(w, r, "settings.html", map[string]any{
		"Title":       "Configurações",
		"Pref":        pref,
		"Paletas":     prefs.Paletas,
		"Formas":      api.FormasPagamento,
		"Habilitadas": habilitadas,
	})
}

func (h *SettingsHandler) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess, _ := auth.SessionFromContext(r.Context())

	theme := r.PostForm.Get("theme")
	switch theme {
	case "light", "dark", "system":
	default:
		theme = prefs.DefaultTheme
	}
	paleta := r.PostForm.Get("paleta")
	valida := false
	for _, p := range prefs.Paletas {
		if p.Key == paleta {
			valida = true
			break
		}
	}
	if !valida {
		paleta = prefs.DefaultPaleta
	}

	formas := make([]string, 0, len(api.FormasPagamento))
	for _, f := range api.FormasPagamento {
		if r.PostForm.Get("forma_"+f.Code) != "" {
			formas = append(formas, f.Code)
		}
	}
	if len(formas) == 0 {
		middleware.Flash(w, "error", "Mantenha ao menos uma forma de pagamento habilitada.")
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	pref, err := h.Prefs.Get(sess.Username)
	if err != nil {
		pref = prefs.Preference{Username: sess.Username}
	}
	pref.Username = sess.Username
	pref.Theme = theme
	pref.Paleta = paleta
	pref.FormasPagamento = strings.Join(formas, ",")
	if err := h.Prefs.Save(pref); err != nil {
		middleware.Flash(w, "error", "Erro ao salvar as configurações.")
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	middleware.SetPrefCookies(w, theme, paleta)
	middleware.Flash(w, "success", "Configurações salvas com sucesso!")
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}
