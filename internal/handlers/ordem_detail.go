package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/api"
	"github.com/sistemaos/webapp/internal/middleware"
	"github.com/sistemaos/webapp/internal/prefs"
)

// Payments may overshoot the pending amount by float noise only; anything
// a full cent above it is refused before touching the backend.
const pagamentoTolerancia = 0.005

type OrdemDetailHandler struct {
	API   *api.Client
	Prefs *prefs.Store
}

func NewOrdemDetailHandler(client *api.Client, store *prefs.Store) *OrdemDetailHandler {
	return &OrdemDetailHandler{API: client, Prefs: store}
}

func (h *OrdemDetailHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /ordens/{id}", h.detail)
	mux.HandleFunc("POST /ordens/{id}/materiais", h.addMaterial)
	mux.HandleFunc("POST /ordens/{id}/materiais/remover", h.removeMaterial)
	mux.HandleFunc("POST /ordens/{id}/pagamentos", h.addPagamento)
	mux.HandleFunc("POST /ordens/{id}/pagamentos/remover", h.removePagamento)
	mux.HandleFunc("POST /ordens/{id}/reagendar", h.reagendar)
	mux.HandleFunc("POST /ordens/{id}/finalizar", h.finalizar)
}

func ordemID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("ordem id inválido: %q", r.PathValue("id"))
	}
	return id, nil
}

func detailPath(id int) string {
	return fmt.Sprintf("/ordens/%d", id)
}

func (h *OrdemDetailHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := ordemID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	token, _ := auth.TokenFromContext(r.Context())

	var (
		ordem     api.OrdemDeServico
		materiais []api.Material
		lojas     []string
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var gerr error
		ordem, gerr = h.API.GetOrdem(gctx, token, id)
		return gerr
	})
	g.Go(func() error {
		var gerr error
		materiais, gerr = h.API.ListMateriais(gctx, token)
		return gerr
	})
	g.Go(func() error {
		var gerr error
		lojas, gerr = h.API.ListLojas(gctx, token)
		return gerr
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			forceLogout(w, r)
			return
		}
		if errors.Is(err, api.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		middleware.Flash(w, "error", "Erro ao carregar a Ordem de Serviço.")
		http.Redirect(w, r, "/ordens", http.StatusSeeOther)
		return
	}

	// Optional vendor filter narrows the add-material dropdown.
	loja := r.URL.Query().Get("loja")
	if loja != "" {
		filtrados := materiais[:0]
		for _, m := range materiais {
			if m.Loja == loja {
				filtrados = append(filtrados, m)
			}
		}
		materiais = filtrados
	}

	formas := h.formasHabilitadas(r)

	render(w, r, "ordem_detail.html", map[string]any{
		"Title":     fmt.Sprintf("Ordem de Serviço #%d", ordem.ID),
		"Ordem":     ordem,
		"Materiais": materiais,
		"Lojas":     lojas,
		"Loja":      loja,
		"Formas":    formas,
	})
}

// formasHabilitadas reduces the payment method catalog to the ones the
// operator keeps enabled in settings. All methods stay available when the
// preference lookup fails.
func (h *OrdemDetailHandler) formasHabilitadas(r *http.Request) []struct{ Code, Label string } {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok || h.Prefs == nil {
		return api.FormasPagamento
	}
	pref, err := h.Prefs.Get(sess.Username)
	if err != nil {
		return api.FormasPagamento
	}
	habilitadas := make([]struct{ Code, Label string }, 0, len(api.FormasPagamento))
	for _, f := range api.FormasPagamento {
		if pref.FormaEnabled(f.Code) {
			habilitadas = append(habilitadas, f)
		}
	}
	if len(habilitadas) == 0 {
		return api.FormasPagamento
	}
	return habilitadas
}

func (h *OrdemDetailHandler) addMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := ordemID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	back := detailPath(id)
	materialID, _ := strconv.Atoi(r.PostForm.Get("material_id"))
	quantidade, _ := strconv.Atoi(r.PostForm.Get("quantidade"))
	if materialID <= 0 || quantidade < 1 {
		middleware.Flash(w, "error", "Selecione um material e uma quantidade válida.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	token, _ := auth.TokenFromContext(r.Context())
	if _, err := h.API.AddMaterialUtilizado(r.Context(), token, id, materialID, quantidade); err != nil {
		failRedirect(w, r, err, "Erro ao adicionar material.", back)
		return
	}
	middleware.Flash(w, "success", "Material adicionado com sucesso!")
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *OrdemDetailHandler) removeMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := ordemID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	back := detailPath(id)
	usoID, _ := strconv.Atoi(r.PostForm.Get("material_utilizado_id"))
	if usoID <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	token, _ := auth.TokenFromContext(r.Context())
	if err := h.API.DeleteMaterialUtilizado(r.Context(), token, usoID); err != nil {
		failRedirect(w, r, err, "Erro ao remover material.", back)
		return
	}
	middleware.Flash(w, "success", "Material removido com sucesso!")
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// valorPagamento resolves the requested amount from the chosen mode against
// the pending balance the page carried along.
func valorPagamento(modo, valorRaw string, pendente float64) (float64, error) {
	switch modo {
	case "metade":
		return math.Round(pendente/2*100) / 100, nil
	case "restante":
		return pendente, nil
	case "outro":
		v, err := parseMoney(valorRaw)
		if err != nil {
			return 0, errors.New("valor inválido")
		}
		return v, nil
	default:
		return 0, errors.New("forma de valor inválida")
	}
}

func (h *OrdemDetailHandler) addPagamento(w http.ResponseWriter, r *http.Request) {
	id, err := ordemID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	back := detailPath(id)

	forma := r.PostForm.Get("forma_pagamento")
	conhecida := false
	for _, f := range api.FormasPagamento {
		if f.Code == forma {
			conhecida = true
			break
		}
	}
	if !conhecida {
		middleware.Flash(w, "error", "Selecione a forma de pagamento.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	pendente, perr := parseMoney(r.PostForm.Get("pendente"))
	if perr != nil {
		pendente = 0
	}
	valor, verr := valorPagamento(r.PostForm.Get("modo"), r.PostForm.Get("valor"), pendente)
	if verr != nil {
		middleware.Flash(w, "error", "Informe um valor de pagamento válido.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if valor <= 0 {
		middleware.Flash(w, "error", "O valor do pagamento deve ser maior que zero.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if valor > pendente+pagamentoTolerancia {
		middleware.Flash(w, "error", "O valor do pagamento não pode ser maior que o valor pendente.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	token, _ := auth.TokenFromContext(r.Context())
	if _, err := h.API.AddPagamento(r.Context(), token, id, valor, forma); err != nil {
		failRedirect(w, r, err, "Erro ao registrar pagamento.", back)
		return
	}
	middleware.Flash(w, "success", "Pagamento registrado com sucesso!")
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *OrdemDetailHandler) removePagamento(w http.ResponseWriter, r *http.Request) {
	id, err := ordemID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	back := detailPath(id)
	pagamentoID, _ := strconv.Atoi(r.PostForm.Get("pagamento_id"))
	if pagamentoID <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	token, _ := auth.TokenFromContext(r.Context())
	if err := h.API.DeletePagamento(r.Context(), token, pagamentoID); err != nil {
		failRedirect(w, r, err, "Erro ao remover pagamento.", back)
		return
	}
	middleware.Flash(w, "success", "Pagamento removido com sucesso!")
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *OrdemDetailHandler) reagendar(w http.ResponseWriter, r *http.Request) {
	id, err := ordemID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	back := detailPath(id)

	var quando *time.Time
	if raw := r.PostForm.Get("data_agendamento"); raw != "" {
		t, perr := time.ParseInLocation(datetimeLocalLayout, raw, time.Local)
		if perr != nil {
			middleware.Flash(w, "error", "Data de agendamento inválida.")
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		quando = &t
	}

	token, _ := auth.TokenFromContext(r.Context())
	if _, err := h.API.Reagendar(r.Context(), token, id, quando); err != nil {
		failRedirect(w, r, err, "Erro ao reagendar a Ordem de Serviço.", back)
		return
	}
	if quando == nil {
		middleware.Flash(w, "success", "Agendamento removido com sucesso!")
	} else {
		middleware.Flash(w, "success", "Ordem de Serviço reagendada com sucesso!")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *OrdemDetailHandler) finalizar(w http.ResponseWriter, r *http.Request) {
	id, err := ordemID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	back := detailPath(id)
	token, _ := auth.TokenFromContext(r.Context())
	if _, err := h.API.Finalizar(r.Context(), token, id); err != nil {
		failRedirect(w, r, err, "Erro ao finalizar a Ordem de Serviço.", back)
		return
	}
	middleware.Flash(w, "success", "Ordem de Serviço finalizada com sucesso!")
	http.Redirect(w, r, back, http.StatusSeeOther)
}
