package models

import (
	"strings"
	"time"
)

const (
	RoleMember = "Member"
	RoleAdmin  = "Admin"
)

// User is an identity account. Owned resources reference it through
// user_id foreign keys that cascade on delete.
type User struct {
	ID                string     `gorm:"primaryKey;size:500" json:"id"`
	Email             string     `gorm:"not null;size:256;uniqueIndex" json:"email"`
	UserName          string     `gorm:"not null;size:256" json:"-"`
	PasswordHash      string     `gorm:"not null" json:"-"`
	EmailConfirmed    bool       `gorm:"not null;default:false" json:"email_confirmed"`
	SecurityStamp     string     `gorm:"size:64" json:"-"`
	TwoFactorEnabled  bool       `gorm:"not null;default:false" json:"-"`
	AuthenticatorKey  string     `gorm:"size:128" json:"-"`
	RecoveryCodes     string     `gorm:"type:text" json:"-"`
	AccessFailedCount int        `gorm:"not null;default:0" json:"-"`
	LockoutEnd        *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Roles         []Role            `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE" json:"-"`
	Forecasts     []WeatherForecast `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	RefreshTokens []RefreshToken    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// RoleNames returns the names of the preloaded roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r.Name, name) {
			return true
		}
	}
	return false
}

func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

// RecoveryCodeHashes splits the stored recovery code hashes.
func (u *User) RecoveryCodeHashes() []string {
	if u.RecoveryCodes == "" {
		return nil
	}
	return strings.Split(u.RecoveryCodes, ";")
}

func (u *User) SetRecoveryCodeHashes(hashes []string) {
	u.RecoveryCodes = strings.Join(hashes, ";")
}

type Role struct {
	ID   string `gorm:"primaryKey;size:500" json:"id"`
	Name string `gorm:"not null;size:256;uniqueIndex" json:"name"`
}
