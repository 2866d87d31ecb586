package client

import (
	"context"
	"net/http"

	"github.com/weaverhq/weaver/internal/dto"
)

// SetCulture asks the server to set the culture cookie and sends the
// culture as Accept-Language afterwards.
func (c *Client) SetCulture(ctx context.Context, culture string) error {
	if err := c.do(ctx, http.MethodPost, "/api/culture", dto.CultureRequest{Culture: culture}, nil, http.StatusNoContent); err != nil {
		return err
	}
	c.culture = culture
	return nil
}

func (c *Client) ClearCulture(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/api/culture", nil, nil, http.StatusNoContent); err != nil {
		return err
	}
	c.culture = ""
	return nil
}

// Culture returns the culture cookie value held in the jar.
func (c *Client) Culture() string {
	return c.cookie(CultureCookieName)
}
