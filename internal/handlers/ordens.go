package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/api"
	"github.com/sistemaos/webapp/internal/middleware"
	"github.com/sistemaos/webapp/validation"
)

// datetime-local inputs post this layout, interpreted in server-local time.
const datetimeLocalLayout = "2006-01-02T15:04"

type OrdensHandler struct {
	API *api.Client
}

func NewOrdensHandler(client *api.Client) *OrdensHandler {
	return &OrdensHandler{API: client}
}

func (h *OrdensHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /ordens", h.list)
	mux.HandleFunc("POST /ordens/excluir", h.remove)
	mux.HandleFunc("GET /ordens/novo", h.wizardForm)
	mux.HandleFunc("POST /ordens/novo", h.wizardSubmit)
}

func (h *OrdensHandler) list(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	data := map[string]any{"Title": "Ordens de Serviço"}
	ordens, err := h.API.ListOrdens(r.Context(), token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			forceLogout(w, r)
			return
		}
		data["LoadError"] = true
		data["Flash"] = "Erro ao buscar Ordens de Serviço."
		data["FlashSeverity"] = "error"
		render(w, r, "ordens.html", data)
		return
	}
	data["Ordens"] = ordens
	data["Count"] = len(ordens)
	render(w, r, "ordens.html", data)
}

func (h *OrdensHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id, _ := strconv.Atoi(r.PostForm.Get("id"))
	if id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	token, _ := auth.TokenFromContext(r.Context())
	if err := h.API.DeleteOrdem(r.Context(), token, id); err != nil {
		failRedirect(w, r, err, "Não foi possível excluir a Ordem de Serviço.", "/ordens")
		return
	}
	middleware.Flash(w, "success", "Ordem de Serviço excluída com sucesso!")
	http.Redirect(w, r, "/ordens", http.StatusSeeOther)
}

// --- creation wizard ---

// cartItem is one line of the materials cart while the order is being
// assembled. Nome/Unidade exist only for display; submission reduces the
// cart to {material_id, quantidade} pairs.
type cartItem struct {
	MaterialID int
	Nome       string
	Unidade    string
	Quantidade int
}

var errDuplicateMaterial = errors.New("material already in cart")

// parseCart reads the cart carried across renders as parallel hidden fields.
func parseCart(form url.Values) []cartItem {
	ids := form["cart_material_id"]
	nomes := form["cart_nome"]
	unidades := form["cart_unidade"]
	qtds := form["cart_quantidade"]
	cart := make([]cartItem, 0, len(ids))
	for i, idStr := range ids {
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			continue
		}
		it := cartItem{MaterialID: id}
		if i < len(nomes) {
			it.Nome = nomes[i]
		}
		if i < len(unidades) {
			it.Unidade = unidades[i]
		}
		if i < len(qtds) {
			it.Quantidade, _ = strconv.Atoi(qtds[i])
		}
		if it.Quantidade <= 0 {
			continue
		}
		cart = append(cart, it)
	}
	return cart
}

// addToCart appends an item, rejecting a second line for the same material.
func addToCart(cart []cartItem, item cartItem) ([]cartItem, error) {
	for _, it := range cart {
		if it.MaterialID == item.MaterialID {
			return cart, errDuplicateMaterial
		}
	}
	return append(cart, item), nil
}

func removeFromCart(cart []cartItem, materialID int) []cartItem {
	out := cart[:0]
	for _, it := range cart {
		if it.MaterialID != materialID {
			out = append(out, it)
		}
	}
	return out
}

// buildNovaOrdem composes the single creation payload from the wizard form
// and the cart. The order always starts open; the backend owns every later
// transition.
func buildNovaOrdem(form url.Values, cart []cartItem) (api.NovaOrdem, validation.Violations) {
	v := validation.Violations{}
	ordem := api.NovaOrdem{Status: api.StatusAberta}

	clienteID, err := strconv.Atoi(form.Get("cliente_id"))
	if err != nil || clienteID <= 0 {
		v["cliente"] = "selecione um cliente"
	}
	ordem.ClienteID = clienteID

	ordem.EnderecoServico = form.Get("endereco_servico")
	validation.Required("endereco_servico", ordem.EnderecoServico, v)

	if raw := form.Get("data_agendamento"); raw != "" {
		t, perr := time.ParseInLocation(datetimeLocalLayout, raw, time.Local)
		if perr != nil {
			v["data_agendamento"] = "data inválida"
		} else {
			iso := t.Format(time.RFC3339)
			ordem.DataAgendamento = &iso
		}
	}
	if raw := form.Get("duracao_estimada_horas"); raw != "" {
		d, perr := parseMoney(raw)
		if perr != nil || d <= 0 {
			v["duracao_estimada_horas"] = "duração inválida"
		} else {
			ordem.DuracaoEstimadaHoras = &d
		}
	}

	ordem.ServicosIDs = []int{}
	for _, s := range form["servicos"] {
		if id, perr := strconv.Atoi(s); perr == nil && id > 0 {
			ordem.ServicosIDs = append(ordem.ServicosIDs, id)
		}
	}
	if len(ordem.ServicosIDs) == 0 {
		v["servicos"] = "selecione ao menos um serviço"
	}

	ordem.MateriaisParaAdicionar = make([]api.NovoMaterialUtilizado, 0, len(cart))
	for _, it := range cart {
		ordem.MateriaisParaAdicionar = append(ordem.MateriaisParaAdicionar, api.NovoMaterialUtilizado{
			MaterialID: it.MaterialID,
			Quantidade: it.Quantidade,
		})
	}
	return ordem, v
}

type wizardCatalogs struct {
	Clientes  []api.Cliente
	Servicos  []api.Servico
	Materiais []api.Material
}

// loadCatalogs fetches the three wizard catalogs in parallel.
func (h *OrdensHandler) loadCatalogs(ctx context.Context, token string) (wizardCatalogs, error) {
	var cat wizardCatalogs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cat.Clientes, err = h.API.ListClientes(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		cat.Servicos, err = h.API.ListServicos(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		cat.Materiais, err = h.API.ListMateriais(gctx, token)
		return err
	})
	err := g.Wait()
	return cat, err
}

func (h *OrdensHandler) wizardForm(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	cat, err := h.loadCatalogs(r.Context(), token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			forceLogout(w, r)
			return
		}
		// Catalog load failure blocks the whole form; this is not the
		// empty-catalog case.
		render(w, r, "ordem_novo.html", map[string]any{
			"Title":      "Criar Nova Ordem de Serviço",
			"FatalError": true,
		})
		return
	}
	h.renderWizard(w, r, cat, url.Values{}, nil, nil)
}

// renderWizard shows the wizard with the current form values, cart and
// violations so nothing the operator typed is lost between round trips.
func (h *OrdensHandler) renderWizard(w http.ResponseWriter, r *http.Request, cat wizardCatalogs, form url.Values, cart []cartItem, v validation.Violations) {
	data := h.wizardData(cat, form, cart)
	if v != nil && !v.Empty() {
		data["Violations"] = v
		if field, msg, ok := v.First(); ok {
			data["Flash"] = field + ": " + msg
			data["FlashSeverity"] = "error"
		}
	}
	render(w, r, "ordem_novo.html", data)
}

func (h *OrdensHandler) wizardData(cat wizardCatalogs, form url.Values, cart []cartItem) map[string]any {
	selecionados := map[int]bool{}
	for _, s := range form["servicos"] {
		if id, err := strconv.Atoi(s); err == nil {
			selecionados[id] = true
		}
	}
	clienteID, _ := strconv.Atoi(form.Get("cliente_id"))
	return map[string]any{
		"Title":                "Criar Nova Ordem de Serviço",
		"Clientes":             cat.Clientes,
		"Servicos":             cat.Servicos,
		"Materiais":            cat.Materiais,
		"Cart":                 cart,
		"Form":                 form,
		"ClienteSelecionado":   clienteID,
		"ServicosSelecionados": selecionados,
	}
}

func (h *OrdensHandler) wizardSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	token, _ := auth.TokenFromContext(r.Context())
	cat, err := h.loadCatalogs(r.Context(), token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			forceLogout(w, r)
			return
		}
		render(w, r, "ordem_novo.html", map[string]any{
			"Title":      "Criar Nova Ordem de Serviço",
			"FatalError": true,
		})
		return
	}
	cart := parseCart(r.PostForm)

	// The remove buttons submit their material id directly; every other
	// submit carries an explicit action.
	if raw := r.PostForm.Get("remover_material_id"); raw != "" {
		id, _ := strconv.Atoi(raw)
		h.renderWizard(w, r, cat, r.PostForm, removeFromCart(cart, id), nil)
		return
	}
	if r.PostForm.Get("action") == "add-material" {
		h.cartAdd(w, r, cat, cart)
		return
	}
	h.create(w, r, cat, cart)
}

func (h *OrdensHandler) cartAdd(w http.ResponseWriter, r *http.Request, cat wizardCatalogs, cart []cartItem) {
	materialID, _ := strconv.Atoi(r.PostForm.Get("novo_material_id"))
	quantidade, _ := strconv.Atoi(r.PostForm.Get("nova_quantidade"))
	if materialID <= 0 || quantidade < 1 {
		h.renderWizard(w, r, cat, r.PostForm, cart, validation.Violations{"material": "selecione um material e uma quantidade válida"})
		return
	}
	var material *api.Material
	for i := range cat.Materiais {
		if cat.Materiais[i].ID == materialID {
			material = &cat.Materiais[i]
			break
		}
	}
	if material == nil {
		h.renderWizard(w, r, cat, r.PostForm, cart, validation.Violations{"material": "material não encontrado"})
		return
	}
	updated, err := addToCart(cart, cartItem{
		MaterialID: material.ID,
		Nome:       material.Nome,
		Unidade:    material.UnidadeMedida,
		Quantidade: quantidade,
	})
	if err != nil {
		h.renderWizardFlash(w, r, cat, r.PostForm, cart, "warning", "Este material já foi adicionado.")
		return
	}
	h.renderWizard(w, r, cat, r.PostForm, updated, nil)
}

func (h *OrdensHandler) renderWizardFlash(w http.ResponseWriter, r *http.Request, cat wizardCatalogs, form url.Values, cart []cartItem, severity, msg string) {
	data := h.wizardData(cat, form, cart)
	data["Flash"] = msg
	data["FlashSeverity"] = severity
	render(w, r, "ordem_novo.html", data)
}

func (h *OrdensHandler) create(w http.ResponseWriter, r *http.Request, cat wizardCatalogs, cart []cartItem) {
	token, _ := auth.TokenFromContext(r.Context())
	payload, v := buildNovaOrdem(r.PostForm, cart)
	if !v.Empty() {
		h.renderWizard(w, r, cat, r.PostForm, cart, v)
		return
	}
	ordem, err := h.API.CreateOrdem(r.Context(), token, payload)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			forceLogout(w, r)
			return
		}
		msg := "Erro ao criar Ordem de Serviço."
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			msg = apiErr.Message(msg)
		}
		// Leave the whole form intact for correction.
		h.renderWizardFlash(w, r, cat, r.PostForm, cart, "error", msg)
		return
	}
	middleware.Flash(w, "success", "Ordem de Serviço criada com sucesso!")
	http.Redirect(w, r, fmt.Sprintf("/ordens/%d", ordem.ID), http.StatusSeeOther)
}
