package api

import (
	"context"
	"fmt"
)

func (c *Client) ListMateriais(ctx context.Context, token string) ([]Material, error) {
	var out []Material
	if err := c.get(ctx, token, "/materiais/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListLojas fetches the distinct store/vendor tags used by the material
// catalog, for the add-material vendor filter.
func (c *Client) ListLojas(ctx context.Context, token string) ([]string, error) {
	var out []string
	if err := c.get(ctx, token, "/materiais/lojas/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateMaterial(ctx context.Context, token string, in MaterialInput) (Material, error) {
	var out Material
	err := c.post(ctx, token, "/materiais/", in, &out)
	return out, err
}

func (c *Client) UpdateMaterial(ctx context.Context, token string, id int, in MaterialInput) (Material, error) {
	var out Material
	err := c.put(ctx, token, fmt.Sprintf("/materiais/%d/", id), in, &out)
	return out, err
}

func (c *Client) DeleteMaterial(ctx context.Context, token string, id int) error {
	return c.delete(ctx, token, fmt.Sprintf("/materiais/%d/", id))
}
