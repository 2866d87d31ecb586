package dto

import "time"

type CreateForecastRequest struct {
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	TemperatureC int     `json:"temperatureC" validate:"required"`
	Summary      *string `json:"summary" validate:"omitempty,max=100"`
}

func (CreateForecastRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Date.required":         MsgForecastDateRequired,
		"Date.datetime":         MsgForecastDateRequired,
		"TemperatureC.required": MsgForecastTemperatureRequired,
	}
}

// UpdateForecastRequest bounds the temperature while CreateForecastRequest
// only requires it.
type UpdateForecastRequest struct {
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	TemperatureC int     `json:"temperatureC" validate:"min=-100,max=100"`
	Summary      *string `json:"summary" validate:"omitempty,max=100"`
}

func (UpdateForecastRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Date.required":    MsgForecastDateRequired,
		"Date.datetime":    MsgForecastDateRequired,
		"TemperatureC.min": MsgForecastTemperatureRange,
		"TemperatureC.max": MsgForecastTemperatureRange,
	}
}

type BulkDeleteForecastsRequest struct {
	IDs []string `json:"ids" validate:"min=1"`
}

func (BulkDeleteForecastsRequest) ValidationMessages() map[string]string {
	return map[string]string{"IDs.min": MsgForecastIDsRequired}
}

type ForecastResponse struct {
	ID           string     `json:"id"`
	Date         string     `json:"date"`
	TemperatureC int        `json:"temperatureC"`
	Summary      *string    `json:"summary"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}
