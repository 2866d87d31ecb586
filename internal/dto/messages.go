package dto

// Validation and problem messages. The English text doubles as the lookup
// key for translated catalogs.
const (
	MsgForecastDateRequired        = "The forecast date must be specified."
	MsgForecastTemperatureRequired = "The forecast temperature must be specified."
	MsgForecastTemperatureRange    = "The forecast temperature must be between -100 and 100."
	MsgForecastIDsRequired         = "At least one forecast ID must be provided."
	MsgUserIDsRequired             = "At least one user ID must be provided."

	MsgEmailRequired       = "The email address must be specified."
	MsgEmailInvalid        = "The email address is not valid."
	MsgEmailTaken          = "The email address is already taken."
	MsgPasswordRequired    = "The password must be specified."
	MsgPasswordPolicy      = "Passwords must be at least 6 characters and contain a digit, a lowercase letter, an uppercase letter and a non-alphanumeric character."
	MsgOldPasswordRequired = "The old password is required to set a new password."
	MsgOldPasswordInvalid  = "The old password is incorrect."
	MsgInvalidToken        = "The token is invalid or has expired."
	MsgInvalidTwoFactor    = "The two-factor code is invalid."
	MsgTwoFactorNoKey      = "Two-factor authentication requires a shared key to be set up first."

	MsgCultureRequired    = "Culture is required"
	MsgCultureUnsupported = "Unsupported culture"
	MsgInvalidBody        = "The request body is not valid JSON."

	MsgUnauthenticated = "Authentication is required to access this resource."
	MsgForbidden       = "You do not have permission to access this resource."
	MsgNotFound        = "The requested resource was not found."
	MsgTooManyRequests = "Too many requests. Please try again later."
)
