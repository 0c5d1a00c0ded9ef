package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/api"
	"github.com/sistemaos/webapp/internal/middleware"
	"github.com/sistemaos/webapp/validation"
)

// FormField describes one input of a resource form; the crud-form partial
// renders the whole form from this schema.
type FormField struct {
	Name        string
	Label       string
	Kind        string // text, textarea, money, number
	Placeholder string
	Required    bool
}

// CrudPage is the one list+form page the catalog entities share: the same
// fetch/create/edit/delete/confirm/snackbar cycle, parameterized by field
// schema and API calls instead of being copied per entity.
type CrudPage[T any] struct {
	Slug      string // route segment and template name ("clientes")
	Title     string
	Singular  string // "Cliente", used in notices and the confirm dialog
	EmptyText string // distinct "no records yet" state
	Fields    []FormField

	List       func(ctx context.Context, token string) ([]T, error)
	ItemID     func(T) int
	ItemLabel  func(T) string
	FormValues func(T) map[string]string

	// Validate adds entity-specific checks on top of the required-field
	// pass. Optional.
	Validate func(form url.Values, v validation.Violations)
	// Save creates (id == 0) or updates. The list is refetched after the
	// redirect, so nothing here patches local state.
	Save   func(ctx context.Context, token string, id int, form url.Values) error
	Delete func(ctx context.Context, token string, id int) error
}

func (p *CrudPage[T]) Register(mux *http.ServeMux) {
	mux.HandleFunc("/"+p.Slug, p.index)
	mux.HandleFunc("/"+p.Slug+"/salvar", p.save)
	mux.HandleFunc("/"+p.Slug+"/excluir", p.remove)
}

func (p *CrudPage[T]) path() string { return "/" + p.Slug }

func (p *CrudPage[T]) baseData() map[string]any {
	return map[string]any{
		"Title":     p.Title,
		"Singular":  p.Singular,
		"Slug":      p.Slug,
		"EmptyText": p.EmptyText,
		"Fields":    p.Fields,
	}
}

func (p *CrudPage[T]) index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	token, _ := auth.TokenFromContext(r.Context())
	data := p.baseData()
	items, err := p.List(r.Context(), token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			forceLogout(w, r)
			return
		}
		// Load failure is not the same as "no records yet".
		data["LoadError"] = true
		data["Flash"] = "Erro ao buscar dados."
		data["FlashSeverity"] = "error"
		render(w, r, p.Slug+".html", data)
		return
	}
	data["Items"] = items
	data["Count"] = len(items)
	// ?editar=<id> reopens the shared form in edit mode for that record.
	if idStr := r.URL.Query().Get("editar"); idStr != "" {
		if id, convErr := strconv.Atoi(idStr); convErr == nil {
			for _, it := range items {
				if p.ItemID(it) == id {
					data["EditingID"] = id
					data["EditingLabel"] = p.ItemLabel(it)
					data["Values"] = p.FormValues(it)
					data["FormOpen"] = true
					break
				}
			}
		}
	}
	render(w, r, p.Slug+".html", data)
}

func (p *CrudPage[T]) save(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	token, _ := auth.TokenFromContext(r.Context())
	id, _ := strconv.Atoi(r.PostForm.Get("id"))

	v := validation.Violations{}
	for _, f := range p.Fields {
		if f.Required {
			validation.Required(f.Name, r.PostForm.Get(f.Name), v)
		}
	}
	if p.Validate != nil && v.Empty() {
		p.Validate(r.PostForm, v)
	}
	if !v.Empty() {
		p.rerenderForm(w, r, token, id, v)
		return
	}

	if err := p.Save(r.Context(), token, id, r.PostForm); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			forceLogout(w, r)
			return
		}
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			// Keep the operator's input and show the backend's field error.
			p.rerenderForm(w, r, token, id, validation.Violations(apiErr.Fields))
			return
		}
		fallback := "Não foi possível salvar."
		if errors.As(err, &apiErr) {
			fallback = apiErr.Message(fallback)
		}
		middleware.Flash(w, "error", fallback)
		http.Redirect(w, r, p.path(), http.StatusSeeOther)
		return
	}
	if id > 0 {
		middleware.Flash(w, "success", p.Singular+" atualizado com sucesso!")
	} else {
		middleware.Flash(w, "success", p.Singular+" cadastrado com sucesso!")
	}
	// Redirect-after-POST: the next list render is the authoritative state
	// and the form comes back in create mode.
	http.Redirect(w, r, p.path(), http.StatusSeeOther)
}

// rerenderForm shows the page again with the submitted values and the
// violations, keeping the form open.
func (p *CrudPage[T]) rerenderForm(w http.ResponseWriter, r *http.Request, token string, id int, v validation.Violations) {
	data := p.baseData()
	items, err := p.List(r.Context(), token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			forceLogout(w, r)
			return
		}
		data["LoadError"] = true
	} else {
		data["Items"] = items
		data["Count"] = len(items)
	}
	values := map[string]string{}
	for _, f := range p.Fields {
		values[f.Name] = r.PostForm.Get(f.Name)
	}
	data["Values"] = values
	data["Violations"] = v
	data["FormOpen"] = true
	if id > 0 {
		data["EditingID"] = id
	}
	if field, msg, ok := v.First(); ok {
		data["Flash"] = field + ": " + msg
		data["FlashSeverity"] = "error"
	}
	w.WriteHeader(http.StatusBadRequest)
	render(w, r, p.Slug+".html", data)
}

func (p *CrudPage[T]) remove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
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
	if err := p.Delete(r.Context(), token, id); err != nil {
		// Referential rejections carry the backend's reason verbatim.
		failRedirect(w, r, err, "Não foi possível excluir.", p.path())
		return
	}
	middleware.Flash(w, "success", p.Singular+" excluído com sucesso!")
	http.Redirect(w, r, p.path(), http.StatusSeeOther)
}
