package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/models"
	"github.com/weaverhq/weaver/internal/tokens"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService manages accounts on behalf of administrators and exposes the
// caller's own profile.
type UserService struct {
	db       *gorm.DB
	sessions tokens.SessionStore
}

func NewUserService(db *gorm.DB, sessions tokens.SessionStore) *UserService {
	return &UserService{db: db, sessions: sessions}
}

func (s *UserService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles").Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	resp := toUserResponse(&user)
	return &resp, nil
}

func (s *UserService) List(ctx context.Context) ([]dto.UserResponse, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Roles").Order("email").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	return s.remove(ctx, &user)
}

// BulkDelete removes every existing user among ids, one account at a time.
// Unknown ids are skipped; ErrNotFound is returned only when none matched.
func (s *UserService) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return NewValidationError("ids", dto.MsgUserIDsRequired)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if len(users) == 0 {
		return ErrNotFound
	}

	for i := range users {
		if err := s.remove(ctx, &users[i]); err != nil {
			return err
		}
	}
	return nil
}

// remove deletes the account with its role links, forecasts and refresh
// tokens, then drops its cookie sessions.
func (s *UserService) remove(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Select(clause.Associations).Delete(user).Error; err != nil {
		return fmt.Errorf("delete user %s: %w", user.ID, err)
	}
	if err := s.sessions.DeleteUser(ctx, user.ID); err != nil {
		slog.Warn("failed to drop sessions of deleted user", "user_id", user.ID, "error", err)
	}
	slog.Info("user deleted", "user_id", user.ID, "action", "user_delete")
	return nil
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Roles:            u.RoleNames(),
		IsEmailConfirmed: u.EmailConfirmed,
	}
}
