package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/identity"
	"github.com/weaverhq/weaver/internal/models"
	"gorm.io/gorm"
)

// ForecastService implements owner-scoped CRUD over weather forecasts. Every
// query is filtered by the caller's user id, so rows of other users look
// exactly like missing rows.
type ForecastService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewForecastService(db *gorm.DB) *ForecastService {
	return &ForecastService{db: db, now: time.Now}
}

func (s *ForecastService) List(ctx context.Context, userID string) ([]dto.ForecastResponse, error) {
	var forecasts []models.WeatherForecast
	if err := s.db.WithContext(ctx).
		Scopes(identity.OwnedBy(userID)).
		Order("date, created_at").
		Find(&forecasts).Error; err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}

	out := make([]dto.ForecastResponse, 0, len(forecasts))
	for i := range forecasts {
		out = append(out, toForecastResponse(&forecasts[i]))
	}
	return out, nil
}

func (s *ForecastService) Get(ctx context.Context, userID, id string) (*dto.ForecastResponse, error) {
	forecast, err := s.find(s.db.WithContext(ctx), userID, id)
	if err != nil {
		return nil, err
	}
	resp := toForecastResponse(forecast)
	return &resp, nil
}

func (s *ForecastService) Create(ctx context.Context, userID string, req *dto.CreateForecastRequest) (*dto.ForecastResponse, error) {
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, NewValidationError("date", dto.MsgForecastDateRequired)
	}

	forecast := models.WeatherForecast{
		ID:           models.NewID(models.ForecastIDPrefix),
		UserID:       userID,
		Date:         date,
		TemperatureC: req.TemperatureC,
		Summary:      req.Summary,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&forecast).Error; err != nil {
		return nil, fmt.Errorf("create forecast: %w", err)
	}

	resp := toForecastResponse(&forecast)
	return &resp, nil
}

func (s *ForecastService) Update(ctx context.Context, userID, id string, req *dto.UpdateForecastRequest) error {
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return NewValidationError("date", dto.MsgForecastDateRequired)
	}

	db := s.db.WithContext(ctx)
	forecast, err := s.find(db, userID, id)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	forecast.UserID = userID
	forecast.Date = date
	forecast.TemperatureC = req.TemperatureC
	forecast.Summary = req.Summary
	forecast.UpdatedAt = &now

	if err := db.Save(forecast).Error; err != nil {
		return fmt.Errorf("update forecast: %w", err)
	}
	return nil
}

func (s *ForecastService) Delete(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).
		Scopes(identity.OwnedBy(userID)).
		Where("id = ?", id).
		Delete(&models.WeatherForecast{})
	if result.Error != nil {
		return fmt.Errorf("delete forecast: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes the caller's forecasts among ids. Ids that are missing
// or owned by someone else are skipped; ErrNotFound is returned only when
// none of the ids matched.
func (s *ForecastService) BulkDelete(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, NewValidationError("ids", dto.MsgForecastIDsRequired)
	}

	result := s.db.WithContext(ctx).
		Scopes(identity.OwnedBy(userID)).
		Where("id IN ?", ids).
		Delete(&models.WeatherForecast{})
	if result.Error != nil {
		return 0, fmt.Errorf("bulk delete forecasts: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return result.RowsAffected, nil
}

func (s *ForecastService) find(db *gorm.DB, userID, id string) (*models.WeatherForecast, error) {
	var forecast models.WeatherForecast
	err := db.Scopes(identity.OwnedBy(userID)).Where("id = ?", id).First(&forecast).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load forecast: %w", err)
	}
	return &forecast, nil
}

func toForecastResponse(f *models.WeatherForecast) dto.ForecastResponse {
	return dto.ForecastResponse{
		ID:           f.ID,
		Date:         f.Date.String(),
		TemperatureC: f.TemperatureC,
		Summary:      f.Summary,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}
