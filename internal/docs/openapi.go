// Package docs publishes the OpenAPI 3 description of the HTTP API. It is
// mounted in development only.
package docs

import (
	"sync"

	"github.com/gofiber/fiber/v2"
)

const Path = "/openapi/v1.json"

type Document struct {
	OpenAPI    string                          `json:"openapi"`
	Info       Info                            `json:"info"`
	Paths      map[string]map[string]Operation `json:"paths"`
	Components Components                      `json:"components"`
}

type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

type Operation struct {
	Summary     string              `json:"summary"`
	OperationID string              `json:"operationId"`
	Tags        []string            `json:"tags"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
	Security    []map[string][]any  `json:"security,omitempty"`
}

type Parameter struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Required bool   `json:"required,omitempty"`
	Schema   Schema `json:"schema"`
}

type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
}

type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

type MediaType struct {
	Schema Schema `json:"schema"`
}

// Schema is a JSON Schema fragment.
type Schema map[string]any

type Components struct {
	Schemas         map[string]Schema `json:"schemas"`
	SecuritySchemes map[string]Schema `json:"securitySchemes"`
}

var (
	once sync.Once
	doc  *Document
)

// Spec returns the API description.
func Spec() *Document {
	once.Do(func() { doc = build() })
	return doc
}

// Handler serves Spec as JSON.
func Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(Spec())
	}
}

func ref(name string) Schema {
	return Schema{"$ref": "#/components/schemas/" + name}
}

func arrayOf(s Schema) Schema {
	return Schema{"type": "array", "items": s}
}

func jsonBody(s Schema) *RequestBody {
	return &RequestBody{Required: true, Content: map[string]MediaType{"application/json": {Schema: s}}}
}

func jsonResponse(description string, s Schema) Response {
	return Response{Description: description, Content: map[string]MediaType{"application/json": {Schema: s}}}
}

func problemResponse(description string) Response {
	return Response{Description: description, Content: map[string]MediaType{
		"application/problem+json": {Schema: ref("Problem")},
	}}
}

var (
	idParam   = Parameter{Name: "id", In: "path", Required: true, Schema: Schema{"type": "string"}}
	secured   = []map[string][]any{{"cookie": {}}, {"bearer": {}}}
	noContent = Response{Description: "No Content"}
	okEmpty   = Response{Description: "OK"}
)

// op builds an operation. Secured operations also document the 401 answer.
func op(tag, id, summary string, auth bool, responses map[string]Response) Operation {
	o := Operation{Summary: summary, OperationID: id, Tags: []string{tag}, Responses: responses}
	if auth {
		o.Security = secured
		o.Responses["401"] = problemResponse("Unauthorized")
	}
	return o
}

func build() *Document {
	forecasts := "Weather forecasts"
	users := "Users"
	auth := "Auth"
	culture := "Culture"

	listForecasts := op(forecasts, "listForecasts", "List the caller's forecasts", true, map[string]Response{
		"200": jsonResponse("OK", arrayOf(ref("Forecast"))),
	})
	createForecast := op(forecasts, "createForecast", "Create a forecast", true, map[string]Response{
		"201": jsonResponse("Created", ref("Forecast")),
		"400": problemResponse("Validation failed"),
	})
	createForecast.RequestBody = jsonBody(ref("CreateForecastRequest"))

	getForecast := op(forecasts, "getForecast", "Get one of the caller's forecasts", true, map[string]Response{
		"200": jsonResponse("OK", ref("Forecast")),
		"404": problemResponse("Not Found"),
	})
	getForecast.Parameters = []Parameter{idParam}
	updateForecast := op(forecasts, "updateForecast", "Replace a forecast", true, map[string]Response{
		"204": noContent,
		"400": problemResponse("Validation failed"),
		"404": problemResponse("Not Found"),
	})
	updateForecast.Parameters = []Parameter{idParam}
	updateForecast.RequestBody = jsonBody(ref("UpdateForecastRequest"))
	deleteForecast := op(forecasts, "deleteForecast", "Delete a forecast", true, map[string]Response{
		"204": noContent,
		"404": problemResponse("Not Found"),
	})
	deleteForecast.Parameters = []Parameter{idParam}
	bulkDeleteForecasts := op(forecasts, "bulkDeleteForecasts", "Delete the caller's forecasts among ids", true, map[string]Response{
		"204": noContent,
		"400": problemResponse("No ids"),
		"404": problemResponse("No id matched"),
	})
	bulkDeleteForecasts.RequestBody = jsonBody(ref("IdsRequest"))

	me := op(users, "me", "Current account", true, map[string]Response{
		"200": jsonResponse("OK", ref("User")),
	})
	listUsers := op(users, "listUsers", "List accounts (Admin)", true, map[string]Response{
		"200": jsonResponse("OK", arrayOf(ref("User"))),
		"403": problemResponse("Forbidden"),
	})
	deleteUser := op(users, "deleteUser", "Delete an account (Admin)", true, map[string]Response{
		"204": noContent,
		"403": problemResponse("Forbidden"),
		"404": problemResponse("Not Found"),
	})
	deleteUser.Parameters = []Parameter{idParam}
	bulkDeleteUsers := op(users, "bulkDeleteUsers", "Delete accounts among ids (Admin)", true, map[string]Response{
		"204": noContent,
		"400": problemResponse("No ids"),
		"403": problemResponse("Forbidden"),
		"404": problemResponse("No id matched"),
	})
	bulkDeleteUsers.RequestBody = jsonBody(ref("IdsRequest"))

	register := op(auth, "register", "Create an account", false, map[string]Response{
		"200": okEmpty,
		"400": problemResponse("Validation failed"),
	})
	register.RequestBody = jsonBody(ref("RegisterRequest"))
	login := op(auth, "login", "Sign in with a cookie session or a bearer token", false, map[string]Response{
		"200": jsonResponse("Bearer tokens", ref("AccessTokenResponse")),
		"204": Response{Description: "Session cookie set"},
		"401": problemResponse("Failed, LockedOut, NotAllowed or RequiresTwoFactor"),
	})
	login.Parameters = []Parameter{
		{Name: "useCookies", In: "query", Schema: Schema{"type": "boolean"}},
		{Name: "useSessionCookies", In: "query", Schema: Schema{"type": "boolean"}},
	}
	login.RequestBody = jsonBody(ref("LoginRequest"))
	refresh := op(auth, "refresh", "Rotate a refresh token", false, map[string]Response{
		"200": jsonResponse("OK", ref("AccessTokenResponse")),
		"401": problemResponse("Invalid refresh token"),
	})
	refresh.RequestBody = jsonBody(Schema{"type": "object", "properties": map[string]Schema{"refreshToken": {"type": "string"}}})
	logout := op(auth, "logout", "End the session", true, map[string]Response{"200": okEmpty})
	confirmEmail := op(auth, "confirmEmail", "Confirm an email address", false, map[string]Response{
		"302": Response{Description: "Redirect to the confirmation page"},
		"401": problemResponse("Invalid code"),
	})
	confirmEmail.Parameters = []Parameter{
		{Name: "userId", In: "query", Required: true, Schema: Schema{"type": "string"}},
		{Name: "code", In: "query", Required: true, Schema: Schema{"type": "string"}},
		{Name: "changedEmail", In: "query", Schema: Schema{"type": "string"}},
	}
	resend := op(auth, "resendConfirmationEmail", "Mail a new confirmation link", false, map[string]Response{"200": okEmpty})
	resend.RequestBody = jsonBody(ref("EmailRequest"))
	forgot := op(auth, "forgotPassword", "Mail a password reset code", false, map[string]Response{"200": okEmpty})
	forgot.RequestBody = jsonBody(ref("EmailRequest"))
	reset := op(auth, "resetPassword", "Reset a password with a code", false, map[string]Response{
		"200": okEmpty,
		"400": problemResponse("Invalid code or password"),
	})
	reset.RequestBody = jsonBody(ref("ResetPasswordRequest"))
	info := op(auth, "getInfo", "Account details", true, map[string]Response{
		"200": jsonResponse("OK", ref("User")),
	})
	updateInfo := op(auth, "updateInfo", "Change email or password", true, map[string]Response{
		"200": jsonResponse("OK", ref("User")),
		"400": problemResponse("Validation failed"),
	})
	updateInfo.RequestBody = jsonBody(ref("UpdateInfoRequest"))
	twoFactor := op(auth, "manageTwoFactor", "Manage two-factor authentication", true, map[string]Response{
		"200": jsonResponse("OK", ref("TwoFactorResponse")),
		"400": problemResponse("Invalid code"),
	})
	twoFactor.RequestBody = jsonBody(ref("TwoFactorRequest"))

	setCulture := op(culture, "setCulture", "Remember the UI culture in a cookie", false, map[string]Response{
		"204": noContent,
		"400": problemResponse("Missing or unsupported culture"),
	})
	setCulture.RequestBody = jsonBody(Schema{"type": "object", "required": []string{"culture"},
		"properties": map[string]Schema{"culture": {"type": "string", "example": "fr-FR"}}})
	clearCulture := op(culture, "clearCulture", "Forget the UI culture", false, map[string]Response{"204": noContent})

	health := op("Operations", "health", "Dependency health", false, map[string]Response{
		"200": jsonResponse("Healthy", ref("Health")),
		"503": jsonResponse("Degraded", ref("Health")),
	})

	return &Document{
		OpenAPI: "3.0.3",
		Info:    Info{Title: "Weaver API", Version: "v1"},
		Paths: map[string]map[string]Operation{
			"/api/weather-forecasts":             {"get": listForecasts, "post": createForecast},
			"/api/weather-forecasts/{id}":        {"get": getForecast, "put": updateForecast, "delete": deleteForecast},
			"/api/weather-forecasts/bulk-delete": {"post": bulkDeleteForecasts},
			"/api/users/me":                      {"get": me},
			"/api/users":                         {"get": listUsers},
			"/api/users/{id}":                    {"delete": deleteUser},
			"/api/users/bulk-delete":             {"post": bulkDeleteUsers},
			"/api/auth/register":                 {"post": register},
			"/api/auth/login":                    {"post": login},
			"/api/auth/refresh":                  {"post": refresh},
			"/api/auth/logout":                   {"post": logout},
			"/api/auth/confirmEmail":             {"get": confirmEmail},
			"/api/auth/resendConfirmationEmail":  {"post": resend},
			"/api/auth/forgotPassword":           {"post": forgot},
			"/api/auth/resetPassword":            {"post": reset},
			"/api/auth/info":                     {"get": info, "post": updateInfo},
			"/api/auth/manage/2fa":               {"post": twoFactor},
			"/api/culture":                       {"post": setCulture, "delete": clearCulture},
			"/api/health":                        {"get": health},
		},
		Components: Components{
			Schemas: schemas(),
			SecuritySchemes: map[string]Schema{
				"cookie": {"type": "apiKey", "in": "cookie", "name": "weaver_session"},
				"bearer": {"type": "http", "scheme": "bearer"},
			},
		},
	}
}

func object(required []string, props map[string]Schema) Schema {
	s := Schema{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var (
	str         = Schema{"type": "string"}
	boolean     = Schema{"type": "boolean"}
	integer     = Schema{"type": "integer", "format": "int32"}
	date        = Schema{"type": "string", "format": "date"}
	dateTime    = Schema{"type": "string", "format": "date-time"}
	email       = Schema{"type": "string", "format": "email"}
	summaryText = Schema{"type": "string", "maxLength": 100, "nullable": true}
)

func schemas() map[string]Schema {
	return map[string]Schema{
		"Forecast": object([]string{"id", "date", "temperatureC", "createdAt"}, map[string]Schema{
			"id": str, "date": date, "temperatureC": integer, "summary": summaryText,
			"createdAt": dateTime, "updatedAt": dateTime,
		}),
		"CreateForecastRequest": object([]string{"date", "temperatureC"}, map[string]Schema{
			"date": date, "temperatureC": integer, "summary": summaryText,
		}),
		"UpdateForecastRequest": object([]string{"date"}, map[string]Schema{
			"date":         date,
			"temperatureC": Schema{"type": "integer", "format": "int32", "minimum": -100, "maximum": 100},
			"summary":      summaryText,
		}),
		"IdsRequest": object([]string{"ids"}, map[string]Schema{
			"ids": Schema{"type": "array", "items": str, "minItems": 1},
		}),
		"User": object([]string{"id", "email", "roles", "isEmailConfirmed"}, map[string]Schema{
			"id": str, "email": email, "roles": arrayOf(str), "isEmailConfirmed": boolean,
		}),
		"RegisterRequest": object([]string{"email", "password"}, map[string]Schema{
			"email": email, "password": str,
		}),
		"LoginRequest": object([]string{"email", "password"}, map[string]Schema{
			"email": email, "password": str, "twoFactorCode": str, "twoFactorRecoveryCode": str,
		}),
		"AccessTokenResponse": object([]string{"tokenType", "accessToken", "expiresIn", "refreshToken"}, map[string]Schema{
			"tokenType": str, "accessToken": str, "expiresIn": Schema{"type": "integer", "format": "int64"}, "refreshToken": str,
		}),
		"EmailRequest": object([]string{"email"}, map[string]Schema{"email": email}),
		"ResetPasswordRequest": object([]string{"email", "resetCode", "newPassword"}, map[string]Schema{
			"email": email, "resetCode": str, "newPassword": str,
		}),
		"UpdateInfoRequest": object(nil, map[string]Schema{
			"newEmail": email, "newPassword": str, "oldPassword": str,
		}),
		"TwoFactorRequest": object(nil, map[string]Schema{
			"enable": boolean, "twoFactorCode": str, "resetSharedKey": boolean, "resetRecoveryCodes": boolean,
		}),
		"TwoFactorResponse": object([]string{"sharedKey", "recoveryCodesLeft", "isTwoFactorEnabled"}, map[string]Schema{
			"sharedKey": str, "recoveryCodesLeft": integer, "recoveryCodes": arrayOf(str), "isTwoFactorEnabled": boolean,
		}),
		"Health": object([]string{"status", "timestamp", "db", "cache"}, map[string]Schema{
			"status": str, "timestamp": dateTime, "db": str, "cache": str,
		}),
		"Problem": object([]string{"type", "title", "status"}, map[string]Schema{
			"type": str, "title": str, "status": integer, "detail": str, "instance": str, "requestId": str,
			"errors": Schema{"type": "object", "additionalProperties": arrayOf(str)},
		}),
	}
}
