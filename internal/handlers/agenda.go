package handlers

import (
	"errors"
	"net/http"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/httpx"
	"github.com/sistemaos/webapp/internal/api"
)

type AgendaHandler struct {
	API *api.Client
}

func NewAgendaHandler(client *api.Client) *AgendaHandler {
	return &AgendaHandler{API: client}
}

func (h *AgendaHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /agenda", h.index)
	mux.HandleFunc("GET /agenda/events", h.events)
}

func (h *AgendaHandler) index(w http.ResponseWriter, r *http.Request) {
	render(w, r, "agenda.html", map[string]any{"Title": "Agenda"})
}

// events feeds the calendar widget. Colors follow the order status so the
// agenda and the list read the same.
func (h *AgendaHandler) events(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	events, err := h.API.ListAgendaEvents(r.Context(), token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			httpx.JSONError(w, http.StatusUnauthorized, "sessão expirada", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "erro ao buscar eventos da agenda", nil)
		return
	}
	if events == nil {
		events = []api.AgendaEvent{}
	}
	httpx.JSON(w, http.StatusOK, events)
}
