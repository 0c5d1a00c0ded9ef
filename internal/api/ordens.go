package api

import (
	"context"
	"fmt"
	"time"
)

func (c *Client) ListOrdens(ctx context.Context, token string) ([]OrdemDeServico, error) {
	var out []OrdemDeServico
	if err := c.get(ctx, token, "/ordens/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrdem(ctx context.Context, token string, id int) (OrdemDeServico, error) {
	var out OrdemDeServico
	err := c.get(ctx, token, fmt.Sprintf("/ordens/%d/", id), &out)
	return out, err
}

func (c *Client) CreateOrdem(ctx context.Context, token string, in NovaOrdem) (OrdemDeServico, error) {
	var out OrdemDeServico
	err := c.post(ctx, token, "/ordens/", in, &out)
	return out, err
}

func (c *Client) UpdateOrdem(ctx context.Context, token string, id int, in NovaOrdem) (OrdemDeServico, error) {
	var out OrdemDeServico
	err := c.put(ctx, token, fmt.Sprintf("/ordens/%d/", id), in, &out)
	return out, err
}

func (c *Client) DeleteOrdem(ctx context.Context, token string, id int) error {
	return c.delete(ctx, token, fmt.Sprintf("/ordens/%d/", id))
}

// Reagendar PATCHes only the schedule; nil clears it.
func (c *Client) Reagendar(ctx context.Context, token string, id int, when *time.Time) (OrdemDeServico, error) {
	var iso *string
	if when != nil {
		s := when.Format(time.RFC3339)
		iso = &s
	}
	body := map[string]*string{"data_agendamento": iso}
	var out OrdemDeServico
	err := c.patch(ctx, token, fmt.Sprintf("/ordens/%d/", id), body, &out)
	return out, err
}

// Finalizar posts the finalize action; the backend owns the status
// transition and the finalization timestamp.
func (c *Client) Finalizar(ctx context.Context, token string, id int) (OrdemDeServico, error) {
	var out OrdemDeServico
	err := c.post(ctx, token, fmt.Sprintf("/ordens/%d/finalizar/", id), nil, &out)
	return out, err
}

// AddMaterialUtilizado posts one line item onto an order.
func (c *Client) AddMaterialUtilizado(ctx context.Context, token string, ordemID, materialID, quantidade int) (MaterialUtilizado, error) {
	body := map[string]int{
		"ordem_de_servico": ordemID,
		"material_id":      materialID,
		"quantidade":       quantidade,
	}
	var out MaterialUtilizado
	err := c.post(ctx, token, "/materiais-utilizados/", body, &out)
	return out, err
}

func (c *Client) DeleteMaterialUtilizado(ctx context.Context, token string, id int) error {
	return c.delete(ctx, token, fmt.Sprintf("/materiais-utilizados/%d/", id))
}

// AddPagamento records a payment against an order.
func (c *Client) AddPagamento(ctx context.Context, token string, ordemID int, valor float64, forma string) (Pagamento, error) {
	body := map[string]any{
		"ordem_de_servico": ordemID,
		"valor_pago":       Money(valor),
		"forma_pagamento":  forma,
	}
	var out Pagamento
	err := c.post(ctx, token, "/pagamentos/", body, &out)
	return out, err
}

func (c *Client) DeletePagamento(ctx context.Context, token string, id int) error {
	return c.delete(ctx, token, fmt.Sprintf("/pagamentos/%d/", id))
}

func (c *Client) GetDashboardStats(ctx context.Context, token string) (DashboardStats, error) {
	var out DashboardStats
	err := c.get(ctx, token, "/dashboard/stats/", &out)
	return out, err
}

func (c *Client) ListAgendaEvents(ctx context.Context, token string) ([]AgendaEvent, error) {
	var out []AgendaEvent
	if err := c.get(ctx, token, "/agenda/", &out); err != nil {
		return nil, err
	}
	return out, nil
}
