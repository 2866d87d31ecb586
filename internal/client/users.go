package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/weaverhq/weaver/internal/dto"
)

const usersPath = "/api/users"

func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodGet, usersPath+"/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	var out []dto.UserResponse
	if err := c.do(ctx, http.MethodGet, usersPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, usersPath+"/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (c *Client) BulkDeleteUsers(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodPost, usersPath+"/bulk-delete",
		dto.BulkDeleteUsersRequest{IDs: ids}, nil, http.StatusNoContent)
}
