package handlers

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sistemaos/webapp/internal/api"
	"github.com/sistemaos/webapp/validation"
)

// NewServicosPage wires the generic CRUD page to the service catalog.
func NewServicosPage(client *api.Client) *CrudPage[api.Servico] {
	servicoInput := func(form url.Values) api.ServicoInput {
		preco, _ := parseMoney(form.Get("preco"))
		return api.ServicoInput{
			Nome:      form.Get("nome"),
			Descricao: form.Get("descricao"),
			Preco:     api.Money(preco),
		}
	}
	return &CrudPage[api.Servico]{
		Slug:      "servicos",
		Title:     "Meus Serviços",
		Singular:  "Serviço",
		EmptyText: "Você ainda não cadastrou nenhum serviço.",
		Fields: []FormField{
			{Name: "nome", Label: "Nome do Serviço", Kind: "text", Required: true},
			{Name: "preco", Label: "Preço (R$)", Kind: "money", Required: true},
			{Name: "descricao", Label: "Descrição", Kind: "textarea"},
		},
		List:      client.ListServicos,
		ItemID:    func(s api.Servico) int { return s.ID },
		ItemLabel: func(s api.Servico) string { return s.Nome },
		FormValues: func(s api.Servico) map[string]string {
			return map[string]string{
				"nome":      s.Nome,
				"preco":     strconv.FormatFloat(s.Preco.Float(), 'f', 2, 64),
				"descricao": s.Descricao,
			}
		},
		Validate: func(form url.Values, v validation.Violations) {
			preco, err := parseMoney(form.Get("preco"))
			if err != nil {
				v["preco"] = "preço inválido"
				return
			}
			validation.PositiveFloat("preco", preco, v)
		},
		Save: func(ctx context.Context, token string, id int, form url.Values) error {
			if id > 0 {
				_, err := client.UpdateServico(ctx, token, id, servicoInput(form))
				return err
			}
			_, err := client.CreateServico(ctx, token, servicoInput(form))
			return err
		},
		Delete: client.DeleteServico,
	}
}
