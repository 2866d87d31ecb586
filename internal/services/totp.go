package services

import (
	"fmt"
	"strings"

	"github.com/pquerna/otp/totp"
)

func generateTOTPKey(issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate authenticator key: %w", err)
	}
	return key.Secret(), nil
}

func validateTOTP(code, secret string) bool {
	if secret == "" {
		return false
	}
	code = strings.ReplaceAll(strings.TrimSpace(code), " ", "")
	code = strings.ReplaceAll(code, "-", "")
	return totp.Validate(code, secret)
}
