package dto

type UserResponse struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	Roles            []string `json:"roles"`
	IsEmailConfirmed bool     `json:"isEmailConfirmed"`
}

type BulkDeleteUsersRequest struct {
	IDs []string `json:"ids" validate:"min=1"`
}

func (BulkDeleteUsersRequest) ValidationMessages() map[string]string {
	return map[string]string{"IDs.min": MsgUserIDsRequired}
}

type UpdateInfoRequest struct {
	NewEmail    string `json:"newEmail" validate:"omitempty,email"`
	NewPassword string `json:"newPassword" validate:"omitempty,password_policy"`
	OldPassword string `json:"oldPassword" validate:"required_with=NewPassword"`
}

func (UpdateInfoRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"NewEmail.email":              MsgEmailInvalid,
		"NewPassword.password_policy": MsgPasswordPolicy,
		"OldPassword.required_with":   MsgOldPasswordRequired,
	}
}
