package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/api"
)

// fakeBackend records every request the frontend makes, keyed by
// "METHOD path".
type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	bodies   map[string][]byte
	handlers map[string]http.HandlerFunc
	srv      *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{bodies: map[string][]byte{}, handlers: map[string]http.HandlerFunc{}}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.calls = append(fb.calls, key)
		fb.bodies[key] = body
		h := fb.handlers[key]
		fb.mu.Unlock()
		if h == nil {
			t.Errorf("unexpected backend call: %s", key)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) on(key string, status int, payload string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.handlers[key] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if payload != "" {
			w.Write([]byte(payload))
		}
	}
}

func (fb *fakeBackend) count(key string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n := 0
	for _, c := range fb.calls {
		if c == key {
			n++
		}
	}
	return n
}

func (fb *fakeBackend) body(key string) []byte {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.bodies[key]
}

func clientesMux(fb *fakeBackend) http.Handler {
	mux := http.NewServeMux()
	NewClientesPage(api.New(fb.srv.URL)).Register(mux)
	return auth.Middleware(mux)
}

func TestClientesListRendersRecords(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("GET /clientes/", 200, `[{"id": 1, "nome": "Ana Souza", "telefone": "11 99999-0000"}]`)

	w := httptest.NewRecorder()
	clientesMux(fb).ServeHTTP(w, authedRequest(t, http.MethodGet, "/clientes", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Ana Souza") {
		t.Fatal("client name missing from page")
	}
}

func TestClientesEmptyStateDistinctFromError(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("GET /clientes/", 200, `[]`)

	w := httptest.NewRecorder()
	clientesMux(fb).ServeHTTP(w, authedRequest(t, http.MethodGet, "/clientes", nil))
	if !strings.Contains(w.Body.String(), "Você ainda não cadastrou nenhum cliente.") {
		t.Fatal("empty state text missing")
	}

	fb2 := newFakeBackend(t)
	fb2.on("GET /clientes/", 500, `{"detail": "boom"}`)
	w2 := httptest.NewRecorder()
	clientesMux(fb2).ServeHTTP(w2, authedRequest(t, http.MethodGet, "/clientes", nil))
	if strings.Contains(w2.Body.String(), "Você ainda não cadastrou nenhum cliente.") {
		t.Fatal("load failure must not render the empty state")
	}
}

func TestClientesCreatePostsOnceAndRedirects(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("POST /clientes/", 201, `{"id": 7, "nome": "Bruno Lima"}`)

	form := url.Values{"nome": {"Bruno Lima"}, "telefone": {"11 98888-7777"}}
	w := httptest.NewRecorder()
	clientesMux(fb).ServeHTTP(w, authedRequest(t, http.MethodPost, "/clientes/salvar", form))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/clientes" {
		t.Fatalf("redirect = %q", loc)
	}
	if n := fb.count("POST /clientes/"); n != 1 {
		t.Fatalf("expected exactly one create call, got %d", n)
	}
	var sent api.ClienteInput
	if err := json.Unmarshal(fb.body("POST /clientes/"), &sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	if sent.Nome != "Bruno Lima" || sent.Telefone != "11 98888-7777" {
		t.Fatalf("unexpected payload: %+v", sent)
	}
	if msg := flashMessage(t, w.Result()); !strings.Contains(msg, "Cliente cadastrado com sucesso!") {
		t.Fatalf("flash = %q", msg)
	}
}

func TestClientesValidationBlocksBackendCall(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("GET /clientes/", 200, `[]`)

	form := url.Values{"nome": {"   "}}
	w := httptest.NewRecorder()
	clientesMux(fb).ServeHTTP(w, authedRequest(t, http.MethodPost, "/clientes/salvar", form))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if n := fb.count("POST /clientes/"); n != 0 {
		t.Fatalf("create must not reach the backend, got %d calls", n)
	}
	if !strings.Contains(w.Body.String(), "obrigatório") {
		t.Fatal("violation message missing")
	}
}

func TestClientesEditUsesPut(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("PUT /clientes/3/", 200, `{"id": 3, "nome": "Carla"}`)

	form := url.Values{"id": {"3"}, "nome": {"Carla"}}
	w := httptest.NewRecorder()
	clientesMux(fb).ServeHTTP(w, authedRequest(t, http.MethodPost, "/clientes/salvar", form))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if n := fb.count("PUT /clientes/3/"); n != 1 {
		t.Fatalf("expected one update call, got %d", n)
	}
	if msg := flashMessage(t, w.Result()); !strings.Contains(msg, "atualizado") {
		t.Fatalf("flash = %q", msg)
	}
}

func TestClientesDeleteRejectionShowsBackendReason(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("DELETE /clientes/2/", 400, `{"detail": "Não é possível excluir um cliente com ordens de serviço."}`)

	form := url.Values{"id": {"2"}}
	w := httptest.NewRecorder()
	clientesMux(fb).ServeHTTP(w, authedRequest(t, http.MethodPost, "/clientes/excluir", form))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if msg := flashMessage(t, w.Result()); !strings.Contains(msg, "Não é possível excluir um cliente com ordens de serviço.") {
		t.Fatalf("backend reason missing from flash: %q", msg)
	}
}

func TestClientesBackendFieldErrorKeepsInput(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("POST /clientes/", 400, `{"email": ["Informe um endereço de email válido."]}`)
	fb.on("GET /clientes/", 200, `[]`)

	form := url.Values{"nome": {"Davi"}, "email": {"nao-é-email"}}
	w := httptest.NewRecorder()
	clientesMux(fb).ServeHTTP(w, authedRequest(t, http.MethodPost, "/clientes/salvar", form))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Informe um endereço de email válido.") {
		t.Fatal("backend field message missing")
	}
	if !strings.Contains(body, "nao-é-email") {
		t.Fatal("submitted value lost on re-render")
	}
}

func TestClientesExpiredSessionForcesLogout(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("GET /clientes/", 401, `{"detail": "token inválido"}`)

	w := httptest.NewRecorder()
	clientesMux(fb).ServeHTTP(w, authedRequest(t, http.MethodGet, "/clientes", nil))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect = %q", loc)
	}
	res := w.Result()
	if !sessionCleared(res) {
		t.Fatal("session cookie not cleared")
	}
	if msg := flashMessage(t, res); !strings.Contains(msg, "Sua sessão expirou") {
		t.Fatalf("flash = %q", msg)
	}
}

func TestParseMoneyAcceptsBrazilianFormats(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12.50", 12.50},
		{"12,50", 12.50},
		{"1.234,56", 1234.56},
		{"1.234.567,80", 1234567.80},
		{" 55,5 ", 55.5},
		{"100", 100},
	}
	for _, c := range cases {
		got, err := parseMoney(c.in)
		if err != nil || got != c.want {
			t.Errorf("parseMoney(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
	}
	if _, err := parseMoney("abc"); err == nil {
		t.Fatal("non-numeric input accepted")
	}
}
