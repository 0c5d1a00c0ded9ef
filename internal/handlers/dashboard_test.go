package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sistemaos/webapp/auth"
	"github.com/sistemaos/webapp/internal/api"
)

func dashboardMux(fb *fakeBackend) http.Handler {
	mux := http.NewServeMux()
	NewDashboardHandler(api.New(fb.srv.URL)).Register(mux)
	return auth.Middleware(mux)
}

const statsJSON = `{
  "total_clientes": 12,
  "total_servicos": 4,
  "total_ordens_geral": 30,
  "ordens_abertas": 3,
  "ordens_em_andamento": 2,
  "ordens_finalizadas_pendentes": 1,
  "ordens_pagas": 20,
  "ordens_concluidas": 24,
  "faturamento_mes": "1234.56",
  "receita_total": "9876.00",
  "ticket_medio": "411.50"
}`

func TestDashboardRendersKPIs(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("GET /dashboard/stats/", 200, statsJSON)
	fb.on("GET /clientes/", 200, `[{"id": 1, "nome": "Ana"}]`)

	w := httptest.NewRecorder()
	dashboardMux(fb).ServeHTTP(w, authedRequest(t, http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "R$ 1.234,56") {
		t.Fatal("monthly revenue missing or misformatted")
	}
	if !strings.Contains(body, "Ordens abertas") {
		t.Fatal("open orders card missing")
	}
}

func TestDashboardClientReportFetchedOnSelection(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("GET /dashboard/stats/", 200, statsJSON)
	fb.on("GET /clientes/", 200, `[{"id": 1, "nome": "Ana"}]`)
	fb.on("GET /clientes/1/stats/", 200, `{"total_faturado": "500.00", "total_pendente": "120.00", "total_os_concluidas": 3, "total_os_geral": 5}`)

	w := httptest.NewRecorder()
	dashboardMux(fb).ServeHTTP(w, authedRequest(t, http.MethodGet, "/?cliente_id=1", nil))

	if !strings.Contains(w.Body.String(), "R$ 500,00") {
		t.Fatal("client report missing")
	}
	if n := fb.count("GET /clientes/1/stats/"); n != 1 {
		t.Fatalf("expected one stats fetch, got %d", n)
	}
}

func TestDashboardWithoutSelectionSkipsClientStats(t *testing.T) {
	fb := newFakeBackend(t)
	fb.on("GET /dashboard/stats/", 200, statsJSON)
	fb.on("GET /clientes/", 200, `[{"id": 1, "nome": "Ana"}]`)

	w := httptest.NewRecorder()
	dashboardMux(fb).ServeHTTP(w, authedRequest(t, http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if n := fb.count("GET /clientes/1/stats/"); n != 0 {
		t.Fatalf("no client selected, stats fetched %d times", n)
	}
}
