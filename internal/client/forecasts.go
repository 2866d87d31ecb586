package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/weaverhq/weaver/internal/dto"
)

const forecastsPath = "/api/weather-forecasts"

func (c *Client) ListForecasts(ctx context.Context) ([]dto.ForecastResponse, error) {
	var out []dto.ForecastResponse
	if err := c.do(ctx, http.MethodGet, forecastsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetForecast(ctx context.Context, id string) (*dto.ForecastResponse, error) {
	var out dto.ForecastResponse
	if err := c.do(ctx, http.MethodGet, forecastsPath+"/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateForecast(ctx context.Context, req dto.CreateForecastRequest) (*dto.ForecastResponse, error) {
	var out dto.ForecastResponse
	if err := c.do(ctx, http.MethodPost, forecastsPath, req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateForecast(ctx context.Context, id string, req dto.UpdateForecastRequest) error {
	return c.do(ctx, http.MethodPut, forecastsPath+"/"+url.PathEscape(id), req, nil, http.StatusNoContent)
}

func (c *Client) DeleteForecast(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, forecastsPath+"/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (c *Client) BulkDeleteForecasts(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodPost, forecastsPath+"/bulk-delete",
		dto.BulkDeleteForecastsRequest{IDs: ids}, nil, http.StatusNoContent)
}
