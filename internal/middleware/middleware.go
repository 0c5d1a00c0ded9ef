package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

type ctxKey string

const (
	ctxRequestID ctxKey = "request_id"
	ctxTheme     ctxKey = "pref_theme"
	ctxPaleta    ctxKey = "pref_paleta"
)

// RequestID tags every request with a uuid, echoed in the X-Request-ID
// header and available to the logging middleware.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), ctxRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the request id or empty.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxRequestID).(string); ok {
		return v
	}
	return ""
}

// Prefs extracts theme/palette presentation preferences from cookies and
// stores them in context for the view layer. The cookies are mirrors of the
// durable preference store, written at login and on settings save.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		theme := "dark"
		if c, err := r.Cookie("theme"); err == nil && c.Value != "" {
			theme = c.Value
		}
		if theme != "light" && theme != "dark" && theme != "system" {
			theme = "dark"
		}
		paleta := "geral"
		if c, err := r.Cookie("paleta"); err == nil && c.Value != "" {
			paleta = c.Value
		}
		ctx := context.WithValue(r.Context(), ctxTheme, theme)
		ctx = context.WithValue(ctx, ctxPaleta, paleta)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ThemeFrom returns the theme preference from context or the default.
func ThemeFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxTheme).(string); ok && v != "" {
		return v
	}
	return "dark"
}

// PaletaFrom returns the profession palette key from context or the default.
func PaletaFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxPaleta).(string); ok && v != "" {
		return v
	}
	return "geral"
}

// SetPrefCookies mirrors durable preferences into cookies (~30 days) so the
// layout renders without touching the prefs store on every request.
func SetPrefCookies(w http.ResponseWriter, theme, paleta string) {
	http.SetCookie(w, &http.Cookie{Name: "theme", Value: theme, Path: "/", MaxAge: 86400 * 30})
	http.SetCookie(w, &http.Cookie{Name: "paleta", Value: paleta, Path: "/", MaxAge: 86400 * 30})
}

// Flash sets a transient snackbar message consumed by the next page render.
// severity is one of success, warning, error.
func Flash(w http.ResponseWriter, severity, msg string) {
	v := url.QueryEscape(severity + "|" + msg)
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: v, Path: "/"})
}

// PopFlash reads and clears the flash cookie, returning severity and message.
func PopFlash(w http.ResponseWriter, r *http.Request) (severity, msg string, ok bool) {
	c, err := r.Cookie("flash")
	if err != nil || c.Value == "" {
		return "", "", false
	}
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: "", Path: "/", MaxAge: -1})
	dec, derr := url.QueryUnescape(c.Value)
	if derr != nil {
		dec = c.Value
	}
	parts := strings.SplitN(dec, "|", 2)
	if len(parts) != 2 {
		return "success", dec, true
	}
	return parts[0], parts[1], true
}
