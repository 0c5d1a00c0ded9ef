package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/api"
)

type DashboardHandler struct {
	API *api.Client
}

func NewDashboardHandler(client *api.Client) *DashboardHandler {
	return &DashboardHandler{API: client}
}

func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.index)
}

func (h *DashboardHandler) index(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	data := map[string]any{"Title": "Dashboard", "ClienteSelecionado": 0}

	var (
		stats    api.DashboardStats
		clientes []api.Cliente
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var gerr error
		stats, gerr = h.API.GetDashboardStats(gctx, token)
		return gerr
	})
	g.Go(func() error {
		var gerr error
		clientes, gerr = h.API.ListClientes(gctx, token)
		return gerr
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			forceLogout(w, r)
			return
		}
		data["LoadError"] = true
		data["Flash"] = "Erro ao carregar o dashboard."
		data["FlashSeverity"] = "error"
		render(w, r, "dashboard.html", data)
		return
	}
	data["Stats"] = stats
	data["Clientes"] = clientes

	// Per-client report, fetched only for the selected client.
	if raw := r.URL.Query().Get("cliente_id"); raw != "" {
		clienteID, convErr := strconv.Atoi(raw)
		if convErr == nil && clienteID > 0 {
			cs, err := h.API.GetClienteStats(r.Context(), token, clienteID)
			switch {
			case errors.Is(err, api.ErrUnauthorized):
				forceLogout(w, r)
				return
			case err != nil:
				data["ClienteStatsError"] = true
			default:
				data["ClienteStats"] = cs
				data["ClienteSelecionado"] = clienteID
			}
		}
	}

	render(w, r, "dashboard.html", data)
}
