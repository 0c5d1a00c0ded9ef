package api

import (
	"context"
	"fmt"
)

func (c *Client) ListServicos(ctx context.Context, token string) ([]Servico, error) {
	var out []Servico
	if err := c.get(ctx, token, "/servicos/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateServico(ctx context.Context, token string, in ServicoInput) (Servico, error) {
	var out Servico
	err := c.post(ctx, token, "/servicos/", in, &out)
	return out, err
}

func (c *Client) UpdateServico(ctx context.Context, token string, id int, in ServicoInput) (Servico, error) {
	var out Servico
	err := c.put(ctx, token, fmt.Sprintf("/servicos/%d/", id), in, &out)
	return out, err
}

func (c *Client) DeleteServico(ctx context.Context, token string, id int) error {
	return c.delete(ctx, token, fmt.Sprintf("/servicos/%d/", id))
}
