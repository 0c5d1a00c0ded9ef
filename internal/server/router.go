package server

import (
	"log"
	"net/http"
	"time"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/httpx"
	"github.com/sistemaos/webapp/internal/api"
	"github.com/sistemaos/webapp/internal/handlers"
	"github.com/sistemaos/webapp/internal/middleware"
	"github.com/sistemaos/webapp/internal/prefs"
	"github.com/sistemaos/webapp/view"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(client *api.Client, store *prefs.Store) http.Handler {
	view.SetThemeResolver(middleware.ThemeFrom)
	view.SetPaletteResolver(middleware.PaletaFrom)

	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if store != nil {
			if err := store.Ping(); err != nil {
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Public routes
	handlers.NewAuthHandler(client, store).Register(mux)

	// Everything else sits behind the session gate.
	protected := http.NewServeMux()
	handlers.NewDashboardHandler(client).Register(protected)
	handlers.NewClientesPage(client).Register(protected)
	handlers.NewServicosPage(client).Register(protected)
	handlers.NewMateriaisPage(client).Register(protected)
	handlers.NewOrdensHandler(client).Register(protected)
	handlers.NewOrdemDetailHandler(client, store).Register(protected)
	handlers.NewAgendaHandler(client).Register(protected)
	handlers.NewSettingsHandler(store).Register(protected)
	mux.Handle("/", auth.RequireAuth(protected))

	return middleware.RequestID(middleware.Prefs(auth.Middleware(withRecover(withLogging(mux)))))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s rid=%s", r.Method, r.URL.Path, time.Since(start), middleware.RequestIDFrom(r))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v rid=%s", rec, middleware.RequestIDFrom(r))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
