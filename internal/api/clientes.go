package api

import (
	"context"
	"fmt"
)

func (c *Client) ListClientes(ctx context.Context, token string) ([]Cliente, error) {
	var out []Cliente
	if err := c.get(ctx, token, "/clientes/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCliente(ctx context.Context, token string, in ClienteInput) (Cliente, error) {
	var out Cliente
	err := c.post(ctx, token, "/clientes/", in, &out)
	return out, err
}

func (c *Client) UpdateCliente(ctx context.Context, token string, id int, in ClienteInput) (Cliente, error) {
	var out Cliente
	err := c.put(ctx, token, fmt.Sprintf("/clientes/%d/", id), in, &out)
	return out, err
}

func (c *Client) DeleteCliente(ctx context.Context, token string, id int) error {
	return c.delete(ctx, token, fmt.Sprintf("/clientes/%d/", id))
}

// GetClienteStats fetches the per-client report shown on the dashboard.
func (c *Client) GetClienteStats(ctx context.Context, token string, id int) (ClienteStats, error) {
	var out ClienteStats
	err := c.get(ctx, token, fmt.Sprintf("/clientes/%d/stats/", id), &out)
	return out, err
}
