package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPrincipalRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", func(c *fiber.Ctx) error {
		_, err := GetUserID(c)
		assert.ErrorIs(t, err, ErrNoPrincipal)
		assert.Nil(t, GetPrincipal(c))
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/auth", func(c *fiber.Ctx) error {
		SetPrincipal(c, &Principal{UserID: "u_1", Roles: []string{"Admin"}})
		id, err := GetUserID(c)
		require.NoError(t, err)
		assert.Equal(t, "u_1", id)
		assert.True(t, GetPrincipal(c).HasRole("admin"))
		assert.False(t, GetPrincipal(c).HasRole("Member"))
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, path := range []string{"/anon", "/auth"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}

type ownedRow struct {
	ID     string `gorm:"primaryKey"`
	UserID string
}

func TestOwnedBy(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&ownedRow{}))
	require.NoError(t, db.Create(&[]ownedRow{{ID: "a", UserID: "u_1"}, {ID: "b", UserID: "u_2"}, {ID: "c", UserID: "u_1"}}).Error)

	var rows []ownedRow
	require.NoError(t, db.Scopes(OwnedBy("u_1")).Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].ID)
	assert.Equal(t, "c", rows[1].ID)

	var foreign ownedRow
	err = db.Scopes(OwnedBy("u_1")).First(&foreign, "id = ?", "b").Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
