package handlers

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sistemaos/webapp/internal/api"
	"github.com/sistemaos/webapp/validation"
)

// NewMateriaisPage wires the generic CRUD page to the material catalog.
func NewMateriaisPage(client *api.Client) *CrudPage[api.Material] {
	materialInput := func(form url.Values) api.MaterialInput {
		preco, _ := parseMoney(form.Get("preco_unidade"))
		return api.MaterialInput{
			Nome:          form.Get("nome"),
			Descricao:     form.Get("descricao"),
			PrecoUnidade:  api.Money(preco),
			UnidadeMedida: form.Get("unidade_medida"),
			Loja:          form.Get("loja"),
		}
	}
	return &CrudPage[api.Material]{
		Slug:      "materiais",
		Title:     "Meus Materiais",
		Singular:  "Material",
		EmptyText: "Você ainda não cadastrou nenhum material.",
		Fields: []FormField{
			{Name: "nome", Label: "Nome do Material", Kind: "text", Required: true},
			{Name: "unidade_medida", Label: "Unidade (ex: un, m, cx)", Kind: "text", Placeholder: "un", Required: true},
			{Name: "preco_unidade", Label: "Preço (R$)", Kind: "money", Required: true},
			{Name: "loja", Label: "Loja / Fornecedor", Kind: "text"},
			{Name: "descricao", Label: "Descrição", Kind: "textarea"},
		},
		List:      client.ListMateriais,
		ItemID:    func(m api.Material) int { return m.ID },
		ItemLabel: func(m api.Material) string { return m.Nome },
		FormValues: func(m api.Material) map[string]string {
			return map[string]string{
				"nome":           m.Nome,
				"unidade_medida": m.UnidadeMedida,
				"preco_unidade":  strconv.FormatFloat(m.PrecoUnidade.Float(), 'f', 2, 64),
				"loja":           m.Loja,
				"descricao":      m.Descricao,
			}
		},
		Validate: func(form url.Values, v validation.Violations) {
			preco, err := parseMoney(form.Get("preco_unidade"))
			if err != nil {
				v["preco_unidade"] = "preço inválido"
				return
			}
			validation.PositiveFloat("preco_unidade", preco, v)
		},
		Save: func(ctx context.Context, token string, id int, form url.Values) error {
			if id > 0 {
				_, err := client.UpdateMaterial(ctx, token, id, materialInput(form))
				return err
			}
			_, err := client.CreateMaterial(ctx, token, materialInput(form))
			return err
		},
		Delete: client.DeleteMaterial,
	}
}
