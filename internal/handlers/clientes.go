package handlers

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/sistemaos/webapp/internal/api"
)

// NewClientesPage wires the generic CRUD page to the client catalog.
func NewClientesPage(client *api.Client) *CrudPage[api.Cliente] {
	clienteInput := func(form url.Values) api.ClienteInput {
		return api.ClienteInput{
			Nome:            form.Get("nome"),
			Email:           form.Get("email"),
			Telefone:        form.Get("telefone"),
			Endereco:        form.Get("endereco"),
			PontoReferencia: form.Get("ponto_referencia"),
			Observacoes:     form.Get("observacoes"),
		}
	}
	return &CrudPage[api.Cliente]{
		Slug:      "clientes",
		Title:     "Meus Clientes",
		Singular:  "Cliente",
		EmptyText: "Você ainda não cadastrou nenhum cliente.",
		Fields: []FormField{
			{Name: "nome", Label: "Nome", Kind: "text", Required: true},
			{Name: "email", Label: "Email", Kind: "text"},
			{Name: "telefone", Label: "Telefone", Kind: "text"},
			{Name: "endereco", Label: "Endereço", Kind: "text"},
			{Name: "ponto_referencia", Label: "Ponto de Referência", Kind: "text"},
			{Name: "observacoes", Label: "Observações", Kind: "textarea"},
		},
		List:      client.ListClientes,
		ItemID:    func(c api.Cliente) int { return c.ID },
		ItemLabel: func(c api.Cliente) string { return c.Nome },
		FormValues: func(c api.Cliente) map[string]string {
			return map[string]string{
				"nome":             c.Nome,
				"email":            c.Email,
				"telefone":         c.Telefone,
				"endereco":         c.Endereco,
				"ponto_referencia": c.PontoReferencia,
				"observacoes":      c.Observacoes,
			}
		},
		Save: func(ctx context.Context, token string, id int, form url.Values) error {
			if id > 0 {
				_, err := client.UpdateCliente(ctx, token, id, clienteInput(form))
				return err
			}
			_, err := client.CreateCliente(ctx, token, clienteInput(form))
			return err
		},
		Delete: client.DeleteCliente,
	}
}

// parseMoney accepts "12.50", "12,50" and "1.234,56" the way the forms are
// typed. A comma marks pt-BR formatting, so dots before it are thousands
// separators.
func parseMoney(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}
