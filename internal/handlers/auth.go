package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/api"
	"github.com/sistemaos/webapp/internal/middleware"
	"github.com/sistemaos/webapp/internal/prefs"
)

type AuthHandler struct {
	API   *api.Client
	Prefs *prefs.Store
}

func NewAuthHandler(client *api.Client, store *prefs.Store) *AuthHandler {
	return &AuthHandler{API: client, Prefs: store}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/register", h.register)
	mux.HandleFunc("/logout", h.logout)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if _, ok := auth.TokenFromContext(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		render(w, r, "login.html", nil)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "GET,POST")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		render(w, r, "login.html", map[string]any{"Error": "Informe usuário e senha.", "Username": username})
		return
	}
	token, err := h.API.Login(r.Context(), username, password)
	if err != nil {
		msg := "Não foi possível fazer login. Tente novamente."
		if errors.Is(err, api.ErrUnauthorized) {
			msg = "Usuário ou senha inválidos."
		}
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			msg = apiErr.Message(msg)
		}
		render(w, r, "login.html", map[string]any{"Error": msg, "Username": username})
		return
	}
	auth.CreateSession(w, auth.Session{Token: token, Username: username})
	// Mirror durable presentation prefs into cookies for the layout.
	if h.Prefs != nil {
		if p, perr := h.Prefs.Get(username); perr == nil {
			middleware.SetPrefCookies(w, p.Theme, p.Paleta)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if _, ok := auth.TokenFromContext(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		render(w, r, "register.html", nil)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "GET,POST")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := api.RegisterInput{
		Username:  strings.TrimSpace(r.PostForm.Get("username")),
		Password:  r.PostForm.Get("password"),
		Email:     strings.TrimSpace(r.PostForm.Get("email")),
		FirstName: strings.TrimSpace(r.PostForm.Get("first_name")),
		LastName:  strings.TrimSpace(r.PostForm.Get("last_name")),
	}
	values := map[string]string{
		"username": in.Username, "email": in.Email,
		"first_name": in.FirstName, "last_name": in.LastName,
	}
	if in.Username == "" || in.Password == "" || in.Email == "" {
		render(w, r, "register.html", map[string]any{"Error": "Preencha usuário, email e senha.", "Values": values})
		return
	}
	if err := h.API.RegisterUser(r.Context(), in); err != nil {
		msg := "Não foi possível concluir o cadastro."
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			msg = apiErr.Message(msg)
		}
		render(w, r, "register.html", map[string]any{"Error": msg, "Values": values})
		return
	}
	middleware.Flash(w, "success", "Cadastro realizado com sucesso! Faça o login.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
