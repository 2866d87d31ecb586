package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/weaverhq/weaver/internal/config"
	"github.com/weaverhq/weaver/internal/dto"
	"github.com/weaverhq/weaver/internal/mail"
	"github.com/weaverhq/weaver/internal/models"
	"github.com/weaverhq/weaver/internal/tokens"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MaxFailedAccessAttempts = 5
	LockoutDuration         = 5 * time.Minute
	recoveryCodeCount       = 10
)

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	sessions tokens.SessionStore
	codes    tokens.OneTimeTokenStore
	mailer   mail.Sender
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, sessions tokens.SessionStore, codes tokens.OneTimeTokenStore, mailer mail.Sender) *AuthService {
	return &AuthService{
		db:       db,
		cfg:      cfg,
		sessions: sessions,
		codes:    codes,
		mailer:   mailer,
		now:      time.Now,
	}
}

// AccessClaims are the claims of a bearer access token.
type AccessClaims struct {
	Email         string   `json:"email"`
	Roles         []string `json:"roles"`
	SecurityStamp string   `json:"sst"`
	jwt.RegisteredClaims
}

// LoginResult holds either a cookie session id or a bearer token pair.
type LoginResult struct {
	SessionID string
	Tokens    *dto.AccessTokenResponse
}

// Register creates an unconfirmed Member account and mails a confirmation
// link. The account is persisted before the mail is sent, so a delivery
// failure is returned even though the user row exists.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) error {
	email := normalizeEmail(req.Email)
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return NewValidationError("email", dto.MsgEmailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:            models.NewID(models.UserIDPrefix),
		Email:         email,
		UserName:      email,
		PasswordHash:  string(hash),
		SecurityStamp: uuid.NewString(),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var member models.Role
		if err := tx.Where("name = ?", models.RoleMember).First(&member).Error; err != nil {
			return fmt.Errorf("load member role: %w", err)
		}
		user.Roles = []models.Role{member}
		if err := tx.Omit("Roles.*").Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return NewValidationError("email", dto.MsgEmailTaken)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("user registered", "user_id", user.ID, "action", "register")

	if err := s.sendConfirmationEmail(ctx, &user, email, false); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}

// Login verifies credentials, enforces lockout and two-factor, then issues a
// cookie session or a bearer token pair depending on scheme.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, useCookies bool) (*LoginResult, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		return nil, err
	}

	if useCookies {
		id, err := s.sessions.Create(ctx, user.ID, s.cfg.SessionExpiry)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		slog.Info("user signed in", "user_id", user.ID, "action", "login_cookie")
		return &LoginResult{SessionID: id}, nil
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	slog.Info("user signed in", "user_id", user.ID, "action", "login_bearer")
	return &LoginResult{Tokens: pair}, nil
}

func (s *AuthService) checkCredentials(ctx context.Context, req *dto.LoginRequest) (*models.User, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	var user models.User
	if err := db.Preload("Roles").Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoginFailed
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !user.EmailConfirmed {
		return nil, ErrNotAllowed
	}
	if user.IsLockedOut(now) {
		return nil, ErrLockedOut
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.accessFailed(db, &user, now)
	}

	if user.TwoFactorEnabled {
		switch {
		case req.TwoFactorCode != "":
			if !validateTOTP(req.TwoFactorCode, user.AuthenticatorKey) {
				return nil, s.accessFailed(db, &user, now)
			}
		case req.TwoFactorRecoveryCode != "":
			ok, err := s.redeemRecoveryCode(db, &user, req.TwoFactorRecoveryCode)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, s.accessFailed(db, &user, now)
			}
		default:
			return nil, ErrRequiresTwoFactor
		}
	}

	if user.AccessFailedCount > 0 || user.LockoutEnd != nil {
		if err := db.Model(&user).Updates(map[string]interface{}{
			"access_failed_count": 0,
			"lockout_end":         nil,
		}).Error; err != nil {
			return nil, fmt.Errorf("reset access failures: %w", err)
		}
	}
	return &user, nil
}

// accessFailed records a failed attempt and locks the account once the
// threshold is reached.
func (s *AuthService) accessFailed(db *gorm.DB, user *models.User, now time.Time) error {
	user.AccessFailedCount++
	updates := map[string]interface{}{"access_failed_count": user.AccessFailedCount}
	locked := user.AccessFailedCount >= MaxFailedAccessAttempts
	if locked {
		end := now.Add(LockoutDuration)
		updates["access_failed_count"] = 0
		updates["lockout_end"] = end
	}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("record access failure: %w", err)
	}
	if locked {
		slog.Warn("user locked out", "user_id", user.ID, "action", "lockout")
		return ErrLockedOut
	}
	return ErrLoginFailed
}

// Refresh rotates a refresh token into a new bearer pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AccessTokenResponse, error) {
	db := s.db.WithContext(ctx)
	tokenHash := tokens.Hash(refreshToken)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidRefresh
	}

	// Only the caller that flips revoked wins the rotation.
	res := db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", stored.ID, false).
		Update("revoked", true)
	if res.Error != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidRefresh
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	var user models.User
	if err := db.Preload("Roles").First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidRefresh
	}
	if !user.EmailConfirmed || user.IsLockedOut(s.now()) {
		return nil, ErrInvalidRefresh
	}

	return s.issueTokens(ctx, &user)
}

// Logout ends a cookie session. Bearer callers simply discard their tokens.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// ResolveUser loads the account behind an authenticated request.
func (s *AuthService) ResolveUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles").Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// SessionUser returns the user id bound to a cookie session.
func (s *AuthService) SessionUser(ctx context.Context, sessionID string) (string, error) {
	uid, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, tokens.ErrSessionNotFound) {
		return "", ErrUnauthenticated
	}
	return uid, err
}

// ConfirmEmail redeems a confirmation code. With changedEmail the code must
// have been issued for that address, which then replaces the current email.
func (s *AuthService) ConfirmEmail(ctx context.Context, userID, code, changedEmail string) error {
	if userID == "" || code == "" {
		return ErrInvalidToken
	}
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return ErrInvalidToken
	}

	purpose := tokens.PurposeConfirmEmail
	if changedEmail != "" {
		purpose = tokens.PurposeChangeEmail
	}

	value, err := s.codes.Consume(ctx, purpose, code)
	if err != nil {
		return ErrInvalidToken
	}
	boundUser, boundEmail, _ := strings.Cut(value, "|")
	if boundUser != user.ID {
		return ErrInvalidToken
	}

	updates := map[string]interface{}{"email_confirmed": true}
	if changedEmail != "" {
		newEmail := normalizeEmail(changedEmail)
		if boundEmail != newEmail {
			return ErrInvalidToken
		}
		var taken int64
		if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", newEmail, user.ID).Count(&taken).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken > 0 {
			return ErrInvalidToken
		}
		updates["email"] = newEmail
		updates["user_name"] = newEmail
		updates["security_stamp"] = uuid.NewString()
	} else if boundEmail != user.Email {
		return ErrInvalidToken
	}

	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("confirm email: %w", err)
	}
	slog.Info("email confirmed", "user_id", user.ID, "action", "confirm_email")
	return nil
}

// ResendConfirmationEmail mails a new code to unconfirmed accounts. Unknown
// addresses are ignored.
func (s *AuthService) ResendConfirmationEmail(ctx context.Context, email string) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return
	}
	if user.EmailConfirmed {
		return
	}
	if err := s.sendConfirmationEmail(ctx, &user, user.Email, false); err != nil {
		slog.Error("resend confirmation failed", "user_id", user.ID, "error", err)
	}
}

// ForgotPassword mails a reset code to confirmed accounts only. Unknown and
// unconfirmed addresses get the same silent success.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return
	}
	if !user.EmailConfirmed {
		return
	}

	code, err := tokens.NewToken()
	if err != nil {
		slog.Error("reset code generation failed", "user_id", user.ID, "error", err)
		return
	}
	if err := s.codes.Save(ctx, tokens.PurposeResetPassword, code, user.ID, s.cfg.ResetTokenTTL); err != nil {
		slog.Error("reset code store failed", "user_id", user.ID, "error", err)
		return
	}
	msg, err := mail.PasswordResetCode(user.Email, code)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		slog.Error("reset code mail failed", "user_id", user.ID, "error", err)
	}
}

// ResetPassword consumes a reset code and replaces the password. All
// sessions and refresh tokens of the account are revoked.
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil || !user.EmailConfirmed {
		return NewValidationError("resetCode", dto.MsgInvalidToken)
	}

	value, err := s.codes.Consume(ctx, tokens.PurposeResetPassword, req.ResetCode)
	if err != nil || value != user.ID {
		return NewValidationError("resetCode", dto.MsgInvalidToken)
	}

	if err := s.setPassword(ctx, &user, req.NewPassword); err != nil {
		return err
	}
	slog.Info("password reset", "user_id", user.ID, "action", "reset_password")
	return nil
}

// UpdateInfo changes the caller's password and/or starts an email change.
func (s *AuthService) UpdateInfo(ctx context.Context, userID string, req *dto.UpdateInfoRequest) (*dto.UserResponse, error) {
	user, err := s.ResolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.NewPassword != "" {
		if req.OldPassword == "" {
			return nil, NewValidationError("oldPassword", dto.MsgOldPasswordRequired)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			return nil, NewValidationError("oldPassword", dto.MsgOldPasswordInvalid)
		}
		if err := s.setPassword(ctx, user, req.NewPassword); err != nil {
			return nil, err
		}
	}

	if newEmail := normalizeEmail(req.NewEmail); newEmail != "" && newEmail != user.Email {
		if err := s.sendConfirmationEmail(ctx, user, newEmail, true); err != nil {
			return nil, fmt.Errorf("send change email confirmation: %w", err)
		}
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ManageTwoFactor enables, disables or resets the authenticator of the
// caller and reports the resulting state.
func (s *AuthService) ManageTwoFactor(ctx context.Context, userID string, req *dto.TwoFactorRequest) (*dto.TwoFactorResponse, error) {
	user, err := s.ResolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	if req.Enable != nil && *req.Enable {
		switch {
		case req.ResetSharedKey:
			return nil, NewValidationError("resetSharedKey", dto.MsgTwoFactorNoKey)
		case user.AuthenticatorKey == "":
			return nil, NewValidationError("twoFactorCode", dto.MsgTwoFactorNoKey)
		case req.TwoFactorCode == "" || !validateTOTP(req.TwoFactorCode, user.AuthenticatorKey):
			return nil, NewValidationError("twoFactorCode", dto.MsgInvalidTwoFactor)
		}
		user.TwoFactorEnabled = true
	} else if (req.Enable != nil && !*req.Enable) || req.ResetSharedKey {
		user.TwoFactorEnabled = false
	}

	if req.ResetSharedKey || user.AuthenticatorKey == "" {
		key, err := generateTOTPKey(s.cfg.TOTPIssuer, user.Email)
		if err != nil {
			return nil, err
		}
		user.AuthenticatorKey = key
	}

	var recoveryCodes []string
	if req.ResetRecoveryCodes || (user.TwoFactorEnabled && len(user.RecoveryCodeHashes()) == 0) {
		recoveryCodes, err = newRecoveryCodes(recoveryCodeCount)
		if err != nil {
			return nil, err
		}
		hashes := make([]string, len(recoveryCodes))
		for i, c := range recoveryCodes {
			hashes[i] = tokens.Hash(c)
		}
		user.SetRecoveryCodeHashes(hashes)
	}

	if err := db.Model(user).Select("two_factor_enabled", "authenticator_key", "recovery_codes").Updates(user).Error; err != nil {
		return nil, fmt.Errorf("update two-factor state: %w", err)
	}

	return &dto.TwoFactorResponse{
		SharedKey:          user.AuthenticatorKey,
		RecoveryCodesLeft:  len(user.RecoveryCodeHashes()),
		RecoveryCodes:      recoveryCodes,
		IsTwoFactorEnabled: user.TwoFactorEnabled,
	}, nil
}

func (s *AuthService) redeemRecoveryCode(db *gorm.DB, user *models.User, code string) (bool, error) {
	want := tokens.Hash(strings.TrimSpace(code))
	hashes := user.RecoveryCodeHashes()
	for i, h := range hashes {
		if h != want {
			continue
		}
		remaining := append(hashes[:i:i], hashes[i+1:]...)
		user.SetRecoveryCodeHashes(remaining)
		if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("recovery_codes", user.RecoveryCodes).Error; err != nil {
			return false, fmt.Errorf("redeem recovery code: %w", err)
		}
		return true, nil
	}
	return false, nil
}

func (s *AuthService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	stamp := uuid.NewString()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"password_hash":       string(hash),
			"security_stamp":      stamp,
			"access_failed_count": 0,
			"lockout_end":         nil,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("revoked", true).Error
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.SecurityStamp = stamp
	if err := s.sessions.DeleteUser(ctx, user.ID); err != nil {
		slog.Warn("failed to drop sessions after password change", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *AuthService) sendConfirmationEmail(ctx context.Context, user *models.User, email string, change bool) error {
	code, err := tokens.NewToken()
	if err != nil {
		return err
	}

	purpose := tokens.PurposeConfirmEmail
	if change {
		purpose = tokens.PurposeChangeEmail
	}
	if err := s.codes.Save(ctx, purpose, code, user.ID+"|"+email, s.cfg.ConfirmTokenTTL); err != nil {
		return fmt.Errorf("store confirmation code: %w", err)
	}

	q := url.Values{}
	q.Set("userId", user.ID)
	q.Set("code", code)
	if change {
		q.Set("changedEmail", email)
	}
	link := s.cfg.PublicBaseURL + "/api/auth/confirmEmail?" + q.Encode()

	var msg *mail.Message
	if change {
		msg, err = mail.ChangeEmailConfirmation(email, link)
	} else {
		msg, err = mail.ConfirmationEmail(email, link)
	}
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.AccessTokenResponse, error) {
	now := s.now()
	claims := AccessClaims{
		Email:         user.Email,
		Roles:         user.RoleNames(),
		SecurityStamp: user.SecurityStamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTAccessExpiry)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := tokens.NewToken()
	if err != nil {
		return nil, err
	}
	record := models.RefreshToken{
		ID:        models.NewID(models.RefreshTokenIDPrefix),
		UserID:    user.ID,
		TokenHash: tokens.Hash(refreshToken),
		ExpiresAt: now.Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.AccessTokenResponse{
		TokenType:    "Bearer",
		AccessToken:  accessToken,
		ExpiresIn:    int64(s.cfg.JWTAccessExpiry.Seconds()),
		RefreshToken: refreshToken,
	}, nil
}

func newRecoveryCodes(n int) ([]string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codes := make([]string, n)
	buf := make([]byte, 10)
	for i := range codes {
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate recovery code: %w", err)
		}
		var b strings.Builder
		for j, v := range buf {
			if j == 5 {
				b.WriteByte('-')
			}
			b.WriteByte(alphabet[int(v)%len(alphabet)])
		}
		codes[i] = b.String()
	}
	return codes, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
