package api

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Money is a backend DecimalField. The Django serializers emit decimals as
// JSON strings ("150.00"); older endpoints emit plain numbers. Accept both,
// and marshal back as a two-decimal string the way DRF expects.
type Money float64

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = Money(f)
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatFloat(float64(m), 'f', 2, 64))), nil
}

func (m Money) Float() float64 { return float64(m) }

// Order status codes as stored by the backend.
const (
	StatusAberta      = "AB"
	StatusEmAndamento = "EA"
	StatusFinalizada  = "FN" // finished, payment pending
	StatusPaga        = "PG"
	StatusCancelada   = "CA"
)

var statusLabels = map[string]string{
	StatusAberta:      "Aberta",
	StatusEmAndamento: "Em Andamento",
	StatusFinalizada:  "Finalizada (Pendente)",
	StatusPaga:        "Paga",
	StatusCancelada:   "Cancelada",
}

// Same palette the agenda feed uses for event colors.
var statusColors = map[string]string{
	StatusAberta:      "#0288d1",
	StatusEmAndamento: "#ed6c02",
	StatusFinalizada:  "#ed6c02",
	StatusPaga:        "#2e7d32",
	StatusCancelada:   "#d32f2f",
}

func StatusLabel(code string) string {
	if l, ok := statusLabels[code]; ok {
		return l
	}
	return code
}

func StatusColor(code string) string {
	if c, ok := statusColors[code]; ok {
		return c
	}
	return "#9e9e9e"
}

// Payment method codes accepted by the backend.
const (
	PagamentoPix      = "PIX"
	PagamentoDinheiro = "DIN"
	PagamentoCredito  = "CC"
	PagamentoDebito   = "CD"
	PagamentoBoleto   = "BOL"
)

// FormasPagamento lists every method the backend accepts, in display order.
var FormasPagamento = []struct{ Code, Label string }{
	{PagamentoPix, "Pix"},
	{PagamentoDinheiro, "Dinheiro"},
	{PagamentoCredito, "Cartão de Crédito"},
	{PagamentoDebito, "Cartão de Débito"},
	{PagamentoBoleto, "Boleto"},
}

func FormaPagamentoLabel(code string) string {
	for _, f := range FormasPagamento {
		if f.Code == code {
			return f.Label
		}
	}
	return code
}

type Cliente struct {
	ID              int       `json:"id"`
	Nome            string    `json:"nome"`
	Email           string    `json:"email,omitempty"`
	Telefone        string    `json:"telefone,omitempty"`
	Endereco        string    `json:"endereco,omitempty"`
	PontoReferencia string    `json:"ponto_referencia,omitempty"`
	Observacoes     string    `json:"observacoes,omitempty"`
	DataCriacao     time.Time `json:"data_criacao,omitzero"`
}

type Servico struct {
	ID        int    `json:"id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao,omitempty"`
	Preco     Money  `json:"preco"`
}

type Material struct {
	ID            int    `json:"id"`
	Nome          string `json:"nome"`
	Descricao     string `json:"descricao,omitempty"`
	PrecoUnidade  Money  `json:"preco_unidade"`
	UnidadeMedida string `json:"unidade_medida,omitempty"`
	Loja          string `json:"loja,omitempty"`
}

type MaterialUtilizado struct {
	ID         int      `json:"id"`
	Material   Material `json:"material"`
	Quantidade int      `json:"quantidade"`
}

type Pagamento struct {
	ID                    int       `json:"id"`
	ValorPago             Money     `json:"valor_pago"`
	FormaPagamento        string    `json:"forma_pagamento"`
	FormaPagamentoDisplay string    `json:"forma_pagamento_display,omitempty"`
	DataPagamento         time.Time `json:"data_pagamento,omitzero"`
}

type OrdemDeServico struct {
	ID                   int                 `json:"id"`
	Cliente              Cliente             `json:"cliente"`
	Servicos             []Servico           `json:"servicos"`
	MateriaisUtilizados  []MaterialUtilizado `json:"materiais_utilizados"`
	Pagamentos           []Pagamento         `json:"pagamentos"`
	Status               string              `json:"status"`
	EnderecoServico      string              `json:"endereco_servico,omitempty"`
	DataAbertura         time.Time           `json:"data_abertura,omitzero"`
	DataAgendamento      *time.Time          `json:"data_agendamento"`
	DuracaoEstimadaHoras *Money              `json:"duracao_estimada_horas"`
	DataFinalizacao      *time.Time          `json:"data_finalizacao"`
	ValorServicos        Money               `json:"valor_servicos"`
	ValorMateriais       Money               `json:"valor_materiais"`
	ValorTotal           Money               `json:"valor_total"`
	ValorPago            Money               `json:"valor_pago"`
	ValorPendente        Money               `json:"valor_pendente"`
}

// Ativa reports whether the order still accepts finalize/reschedule actions.
func (o OrdemDeServico) Ativa() bool {
	return o.Status == StatusAberta || o.Status == StatusEmAndamento
}

type ClienteInput struct {
	Nome            string `json:"nome"`
	Email           string `json:"email"`
	Telefone        string `json:"telefone"`
	Endereco        string `json:"endereco"`
	PontoReferencia string `json:"ponto_referencia"`
	Observacoes     string `json:"observacoes"`
}

type ServicoInput struct {
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
	Preco     Money  `json:"preco"`
}

type MaterialInput struct {
	Nome          string `json:"nome"`
	Descricao     string `json:"descricao"`
	PrecoUnidade  Money  `json:"preco_unidade"`
	UnidadeMedida string `json:"unidade_medida"`
	Loja          string `json:"loja,omitempty"`
}

// NovoMaterialUtilizado is a cart line reduced to what the backend stores.
type NovoMaterialUtilizado struct {
	MaterialID int `json:"material_id"`
	Quantidade int `json:"quantidade"`
}

// NovaOrdem is the single composed payload the creation wizard posts.
type NovaOrdem struct {
	ClienteID              int                     `json:"cliente_id"`
	EnderecoServico        string                  `json:"endereco_servico"`
	DataAgendamento        *string                 `json:"data_agendamento"` // RFC3339 or null
	DuracaoEstimadaHoras   *float64                `json:"duracao_estimada_horas,omitempty"`
	ServicosIDs            []int                   `json:"servicos_ids"`
	MateriaisParaAdicionar []NovoMaterialUtilizado `json:"materiais_para_adicionar"`
	Status                 string                  `json:"status"`
}

type RegisterInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type DashboardStats struct {
	TotalClientes              int   `json:"total_clientes"`
	TotalServicos              int   `json:"total_servicos"`
	TotalOrdensGeral           int   `json:"total_ordens_geral"`
	OrdensAbertas              int   `json:"ordens_abertas"`
	OrdensEmAndamento          int   `json:"ordens_em_andamento"`
	OrdensFinalizadasPendentes int   `json:"ordens_finalizadas_pendentes"`
	OrdensPagas                int   `json:"ordens_pagas"`
	OrdensConcluidas           int   `json:"ordens_concluidas"`
	FaturamentoMes             Money `json:"faturamento_mes"`
	ReceitaTotal               Money `json:"receita_total"`
	TicketMedio                Money `json:"ticket_medio"`
}

type ClienteStats struct {
	TotalFaturado     Money `json:"total_faturado"`
	TotalPendente     Money `json:"total_pendente"`
	TotalOSConcluidas int   `json:"total_os_concluidas"`
	TotalOSGeral      int   `json:"total_os_geral"`
}

// AgendaEvent is shaped for the calendar widget: start/end/url/color are
// consumed as-is by the frontend calendar.
type AgendaEvent struct {
	ID     int        `json:"id"`
	Title  string     `json:"title"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
	URL    string     `json:"url"`
	Color  string     `json:"color"`
	Status string     `json:"status"`
}
