package handlers

import (
	"errors"
	"net/http"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/api"
	"github.com/sistemaos/webapp/internal/middleware"
	"github.com/sistemaos/webapp/view"
)

// render executes a page template, folding any pending flash message into
// the data so the layout's snackbar can show it.
func render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Flash"]; !ok {
		if sev, msg, ok := middleware.PopFlash(w, r); ok {
			data["Flash"] = msg
			data["FlashSeverity"] = sev
		}
	}
	if err := view.Render(w, r, name, data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte("template error")); werr != nil {
			_ = werr
		}
	}
}

// forceLogout clears the session and sends the operator back to the login
// page. Every handler funnels backend 401s through here, whatever page
// detected them.
func forceLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	middleware.Flash(w, "warning", "Sua sessão expirou. Faça login novamente.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// failRedirect maps an API error onto a flash notice and redirects.
// Unauthorized short-circuits to logout; APIError surfaces the backend's
// own text (detail or first field violation); anything else gets fallback.
func failRedirect(w http.ResponseWriter, r *http.Request, err error, fallback, location string) {
	if errors.Is(err, api.ErrUnauthorized) {
		forceLogout(w, r)
		return
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		middleware.Flash(w, "error", apiErr.Message(fallback))
	} else {
		middleware.Flash(w, "error", fallback)
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	w.WriteHeader(http.StatusMethodNotAllowed)
}
