package models

import "github.com/google/uuid"

const (
	UserIDPrefix         = "u_"
	RoleIDPrefix         = "r_"
	ForecastIDPrefix     = "wf_"
	RefreshTokenIDPrefix = "rt_"
)

// NewID returns prefix followed by a time-ordered UUID.
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + id.String()
}
