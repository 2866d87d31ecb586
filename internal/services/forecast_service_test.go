package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/models"
)

func strPtr(s string) *string { return &s }

func TestForecastService_CreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com", models.RoleMember)

	late, err := f.forecast.Create(ctx, alice.ID, &dto.CreateForecastRequest{Date: "2025-06-02", TemperatureC: 21, Summary: strPtr("Mild")})
	require.NoError(t, err)
	early, err := f.forecast.Create(ctx, alice.ID, &dto.CreateForecastRequest{Date: "2025-06-01", TemperatureC: -5})
	require.NoError(t, err)

	assert.Contains(t, late.ID, models.ForecastIDPrefix)
	assert.Equal(t, "2025-06-02", late.Date)
	assert.Nil(t, late.UpdatedAt)

	list, err := f.forecast.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, early.ID, list[0].ID)
	assert.Equal(t, late.ID, list[1].ID)
	assert.Equal(t, "Mild", *list[1].Summary)
	assert.Nil(t, list[0].Summary)
}

func TestForecastService_CreateAcceptsUnboundedTemperature(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", models.RoleMember)

	resp, err := f.forecast.Create(context.Background(), alice.ID, &dto.CreateForecastRequest{Date: "2025-06-01", TemperatureC: 500})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.TemperatureC)
}

func TestForecastService_OwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com", models.RoleMember)
	bob := f.createUser(t, "bob@example.com", models.RoleMember)

	created, err := f.forecast.Create(ctx, alice.ID, &dto.CreateForecastRequest{Date: "2025-06-01", TemperatureC: 10})
	require.NoError(t, err)

	list, err := f.forecast.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.forecast.Get(ctx, bob.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.forecast.Update(ctx, bob.ID, created.ID, &dto.UpdateForecastRequest{Date: "2025-06-01", TemperatureC: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.forecast.Delete(ctx, bob.ID, created.ID), ErrNotFound)

	got, err := f.forecast.Get(ctx, alice.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.TemperatureC)
}

func TestForecastService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com", models.RoleMember)
	fixed := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	f.forecast.now = func() time.Time { return fixed }

	created, err := f.forecast.Create(ctx, alice.ID, &dto.CreateForecastRequest{Date: "2025-06-01", TemperatureC: 10, Summary: strPtr("Cool")})
	require.NoError(t, err)

	require.NoError(t, f.forecast.Update(ctx, alice.ID, created.ID, &dto.UpdateForecastRequest{Date: "2025-06-03", TemperatureC: 30}))

	got, err := f.forecast.Get(ctx, alice.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", got.Date)
	assert.Equal(t, 30, got.TemperatureC)
	assert.Nil(t, got.Summary)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, fixed.Equal(*got.UpdatedAt))
}

func TestForecastService_UpdateMissing(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", models.RoleMember)

	err := f.forecast.Update(context.Background(), alice.ID, "wf_missing", &dto.UpdateForecastRequest{Date: "2025-06-01"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForecastService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com", models.RoleMember)

	created, err := f.forecast.Create(ctx, alice.ID, &dto.CreateForecastRequest{Date: "2025-06-01", TemperatureC: 10})
	require.NoError(t, err)

	require.NoError(t, f.forecast.Delete(ctx, alice.ID, created.ID))
	assert.ErrorIs(t, f.forecast.Delete(ctx, alice.ID, created.ID), ErrNotFound)
}

func TestForecastService_BulkDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com", models.RoleMember)
	bob := f.createUser(t, "bob@example.com", models.RoleMember)

	a1, err := f.forecast.Create(ctx, alice.ID, &dto.CreateForecastRequest{Date: "2025-06-01", TemperatureC: 1})
	require.NoError(t, err)
	a2, err := f.forecast.Create(ctx, alice.ID, &dto.CreateForecastRequest{Date: "2025-06-02", TemperatureC: 2})
	require.NoError(t, err)
	b1, err := f.forecast.Create(ctx, bob.ID, &dto.CreateForecastRequest{Date: "2025-06-03", TemperatureC: 3})
	require.NoError(t, err)

	t.Run("empty ids", func(t *testing.T) {
		_, err := f.forecast.BulkDelete(ctx, alice.ID, nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{dto.MsgForecastIDsRequired}, verr.Errors["ids"])
	})

	t.Run("only foreign ids", func(t *testing.T) {
		_, err := f.forecast.BulkDelete(ctx, alice.ID, []string{b1.ID, "wf_unknown"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("mixed ids delete owned rows", func(t *testing.T) {
		n, err := f.forecast.BulkDelete(ctx, alice.ID, []string{a1.ID, a2.ID, b1.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		left, err := f.forecast.List(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, left)

		_, err = f.forecast.Get(ctx, bob.ID, b1.ID)
		assert.NoError(t, err)
	})
}
