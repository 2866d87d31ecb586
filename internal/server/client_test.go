package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaverhq/weaver/internal/client"
	"github.com/weaverhq/weaver/internal/client/query"
	"github.com/weaverhq/weaver/internal/dto"
)

func TestClientAgainstServer(t *testing.T) {
	s := newTestServer(t, nil)
	s.registerConfirmed(t, "alice@example.com")

	srv := httptest.NewServer(adaptor.FiberApp(s.app))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	api, err := client.New(srv.URL)
	require.NoError(t, err)

	_, err = api.Login(ctx, dto.LoginRequest{Email: "alice@example.com", Password: userPassword}, true)
	require.NoError(t, err)
	require.NotEmpty(t, api.Session())

	cache := query.NewClient()
	list := cache.Observe(ctx, client.ForecastsKey, api.ForecastsQuery())
	defer list.Unmount()
	data, err := list.Result()
	require.NoError(t, err)
	assert.Empty(t, data)

	summary := "Sunny"
	_, err = cache.Mutate(ctx, query.Mutation{
		Fn: func(ctx context.Context) (any, error) {
			return api.CreateForecast(ctx, dto.CreateForecastRequest{Date: "2024-05-01", TemperatureC: 21, Summary: &summary})
		},
		Meta: query.MutationMeta{InvalidatesQuery: client.ForecastsKey},
	})
	require.NoError(t, err)

	data, err = list.Result()
	require.NoError(t, err)
	forecasts := data.([]dto.ForecastResponse)
	require.Len(t, forecasts, 1)
	assert.Equal(t, 21, forecasts[0].TemperatureC)

	// a rejected update still settles and re-fetches, leaving the list as it was
	_, err = cache.Mutate(ctx, query.Mutation{
		Fn: func(ctx context.Context) (any, error) {
			return nil, api.UpdateForecast(ctx, forecasts[0].ID, dto.UpdateForecastRequest{Date: "2024-05-01", TemperatureC: 101})
		},
		Meta: query.MutationMeta{InvalidatesQuery: client.ForecastsKey},
	})
	var pe *client.ProblemError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
	assert.Equal(t, []string{dto.MsgForecastTemperatureRange}, pe.FieldErrors()["temperatureC"])
	assert.Equal(t, 3, list.Fetches())

	require.NoError(t, api.SetCulture(ctx, "fr"))
	_, err = api.CreateForecast(ctx, dto.CreateForecastRequest{TemperatureC: 1})
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, []string{"La date de la prévision doit être indiquée."}, pe.FieldErrors()["date"])

	require.NoError(t, api.Logout(ctx))
	_, err = api.Me(ctx)
	assert.Equal(t, http.StatusUnauthorized, client.StatusCode(err))
}
