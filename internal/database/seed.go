package database

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/weaverhq/weaver/internal/config"
	"github.com/weaverhq/weaver/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed creates the built-in roles and, when configured, the administrator
// account. It is safe to run on every start.
func Seed(db *gorm.DB, cfg *config.Config) error {
	for _, name := range []string{models.RoleMember, models.RoleAdmin} {
		role := models.Role{ID: models.NewID(models.RoleIDPrefix), Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	var admin models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}

	user := models.User{
		ID:             models.NewID(models.UserIDPrefix),
		Email:          email,
		UserName:       email,
		PasswordHash:   string(hash),
		EmailConfirmed: true,
		SecurityStamp:  uuid.NewString(),
		Roles:          []models.Role{admin},
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	slog.Info("admin user seeded", "email", email)
	return nil
}
