package mail

import (
	"bytes"
	"html/template"
)

var (
	confirmHTML = template.Must(template.New("confirm").Parse(
		`<p>Welcome! Please confirm your account by <a href="{{.Link}}">clicking here</a>.</p>`))
	changeEmailHTML = template.Must(template.New("change").Parse(
		`<p>Please confirm your new email address by <a href="{{.Link}}">clicking here</a>.</p>`))
	resetCodeHTML = template.Must(template.New("reset").Parse(
		`<p>Your reset code is: <strong>{{.Code}}</strong></p>`))
)

type templateData struct {
	Link string
	Code string
}

// ConfirmationEmail asks a newly registered user to confirm the account.
func ConfirmationEmail(to, link string) (*Message, error) {
	html, err := render(confirmHTML, templateData{Link: link})
	if err != nil {
		return nil, err
	}
	return &Message{
		To:       to,
		Subject:  "Welcome! Confirm your account",
		HTMLBody: html,
		TextBody: "Welcome! Please confirm your account by visiting: " + link,
	}, nil
}

// ChangeEmailConfirmation is sent to the new address of an email change.
func ChangeEmailConfirmation(to, link string) (*Message, error) {
	html, err := render(changeEmailHTML, templateData{Link: link})
	if err != nil {
		return nil, err
	}
	return &Message{
		To:       to,
		Subject:  "Confirm your email",
		HTMLBody: html,
		TextBody: "Please confirm your new email address by visiting: " + link,
	}, nil
}

func PasswordResetCode(to, code string) (*Message, error) {
	html, err := render(resetCodeHTML, templateData{Code: code})
	if err != nil {
		return nil, err
	}
	return &Message{
		To:       to,
		Subject:  "Password Reset Code",
		HTMLBody: html,
		TextBody: "Your reset code is: " + code,
	}, nil
}

func render(t *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
