package dto

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_policy"`
}

func (RegisterRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Email.required":           MsgEmailRequired,
		"Email.email":              MsgEmailInvalid,
		"Password.required":        MsgPasswordRequired,
		"Password.password_policy": MsgPasswordPolicy,
	}
}

type LoginRequest struct {
	Email                 string `json:"email" validate:"required"`
	Password              string `json:"password" validate:"required"`
	TwoFactorCode         string `json:"twoFactorCode"`
	TwoFactorRecoveryCode string `json:"twoFactorRecoveryCode"`
}

func (LoginRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Email.required":    MsgEmailRequired,
		"Password.required": MsgPasswordRequired,
	}
}

type AccessTokenResponse struct {
	TokenType    string `json:"tokenType"`
	AccessToken  string `json:"accessToken"`
	ExpiresIn    int64  `json:"expiresIn"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (EmailRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Email.required": MsgEmailRequired,
		"Email.email":    MsgEmailInvalid,
	}
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	ResetCode   string `json:"resetCode" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,password_policy"`
}

func (ResetPasswordRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Email.required":              MsgEmailRequired,
		"Email.email":                 MsgEmailInvalid,
		"NewPassword.required":        MsgPasswordRequired,
		"NewPassword.password_policy": MsgPasswordPolicy,
	}
}

type TwoFactorRequest struct {
	Enable             *bool  `json:"enable"`
	TwoFactorCode      string `json:"twoFactorCode"`
	ResetSharedKey     bool   `json:"resetSharedKey"`
	ResetRecoveryCodes bool   `json:"resetRecoveryCodes"`
}

type TwoFactorResponse struct {
	SharedKey          string   `json:"sharedKey"`
	RecoveryCodesLeft  int      `json:"recoveryCodesLeft"`
	RecoveryCodes      []string `json:"recoveryCodes,omitempty"`
	IsTwoFactorEnabled bool     `json:"isTwoFactorEnabled"`
}
