package client

import (
	"context"

	"github.com/weaverhq/weaver/internal/client/query"
)

// Query keys of the list reads. Mutations name these in
// query.MutationMeta.InvalidatesQuery.
var (
	ForecastsKey = query.NewKey("get", forecastsPath)
	UsersKey     = query.NewKey("get", usersPath)
	MeKey        = query.NewKey("get", usersPath+"/me")
)

func ForecastKey(id string) query.Key {
	return query.NewKey("get", forecastsPath+"/{id}", map[string]string{"id": id})
}

func (c *Client) ForecastsQuery() query.Fetcher {
	return func(ctx context.Context) (any, error) { return c.ListForecasts(ctx) }
}

func (c *Client) UsersQuery() query.Fetcher {
	return func(ctx context.Context) (any, error) { return c.ListUsers(ctx) }
}

func (c *Client) MeQuery() query.Fetcher {
	return func(ctx context.Context) (any, error) { return c.Me(ctx) }
}
