package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/auth"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/repositories"
	"academy_backend/internal/sessions"
	"academy_backend/internal/tenant"
	"academy_backend/internal/vault"
)

const (
	verificationCodeTTL  = 15 * time.Minute
	verificationTokenTTL = 24 * time.Hour
	passwordResetTTL     = time.Hour
)

// AuthService implements registration, login, token refresh and the
// verification / reset flows. Verification codes live in the session
// store for the fast path and in the database as the durable record.
type AuthService struct {
	repos         *repositories.Registry
	jwt           *auth.JWTManager
	sessions      sessions.Store
	tokens        *TokenService
	notifications *NotificationService
	cipher        *vault.Cipher
	baseDomain    string
}

func NewAuthService(
	repos *repositories.Registry,
	jwtManager *auth.JWTManager,
	store sessions.Store,
	tokens *TokenService,
	notifications *NotificationService,
	cipher *vault.Cipher,
	baseDomain string,
) *AuthService {
	return &AuthService{
		repos:         repos,
		jwt:           jwtManager,
		sessions:      store,
		tokens:        tokens,
		notifications: notifications,
		cipher:        cipher,
		baseDomain:    baseDomain,
	}
}

type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

type RegisterResult struct {
	UserID               string `json:"user_id"`
	RequiresVerification bool   `json:"requires_verification"`
}

func (s *AuthService) Register(ctx context.Context, site *models.Site, input RegisterInput) (*RegisterResult, error) {
	settings := tenant.NewSettings(site, s.cipher)
	if !settings.AllowRegistration() {
		return nil, appErrors.NewForbiddenError("Registration is disabled for this site")
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, appErrors.ErrWeakPassword
	}

	role := models.UserRole(input.Role)
	if input.Role == "" {
		role = models.UserRoleStudent
	}
	if !role.Valid() || role == models.UserRoleAdmin {
		return nil, appErrors.ErrInvalidUserRole
	}

	if _, err := s.repos.Users.FindByEmail(ctx, site.ID, input.Email); err == nil {
		return nil, appErrors.ErrEmailAlreadyExists
	}
	if _, err := s.repos.Users.FindByUsername(ctx, site.ID, input.Username); err == nil {
		return nil, appErrors.ErrUsernameTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	requiresVerification := settings.RequireEmailVerification()
	user := &models.User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		Status:       models.UserStatusPending,
	}
	user.ID = uuid.NewString()
	user.SiteID = site.ID
	if !requiresVerification {
		user.Status = models.UserStatusActive
		user.EmailVerified = true
	}

	if err := s.repos.Users.Create(ctx, user); err != nil {
		if appErrors.Is(err, repositories.ErrAlreadyExists) {
			return nil, appErrors.ErrEmailAlreadyExists
		}
		return nil, appErrors.InternalError(err)
	}

	if requiresVerification {
		if err := s.startVerification(ctx, site, user); err != nil {
			logger.Warn("Failed to start email verification",
				"user_id", user.ID,
				"error", err,
			)
		}
	} else {
		s.awardSignupBonus(ctx, site, user.ID)
	}

	return &RegisterResult{UserID: user.ID, RequiresVerification: requiresVerification}, nil
}

// startVerification issues a fresh 6-digit code, records it and queues
// the verification email.
func (s *AuthService) startVerification(ctx context.Context, site *models.Site, user *models.User) error {
	code, err := numericCode(6)
	if err != nil {
		return err
	}

	token := &models.EmailVerificationToken{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(verificationTokenTTL),
	}
	token.SiteID = site.ID
	if err := s.repos.Users.CreateVerificationToken(ctx, token); err != nil {
		return err
	}

	if s.sessions != nil {
		err := s.sessions.Create(ctx, verifySessionID(site.ID, user.Email), sessions.Data{
			"code":    code,
			"user_id": user.ID,
		}, verificationCodeTTL)
		if err != nil {
			logger.Warn("Failed to cache verification code", "error", err)
		}
	}

	s.notifications.SendEmail(ctx, site, user,
		"Verify your email", "verification_code",
		map[string]interface{}{
			"Name":           user.FullName(),
			"SiteName":       site.Name,
			"Code":           code,
			"ExpiresMinutes": int(verificationCodeTTL.Minutes()),
		},
	)
	return nil
}

// TokenPair is a freshly minted access/refresh pair.
type TokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"-"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         *models.User `json:"user,omitempty"`
}

func (s *AuthService) Login(ctx context.Context, site *models.Site, email, password string) (*TokenPair, error) {
	user, err := s.repos.Users.FindByEmail(ctx, site.ID, email)
	if err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, appErrors.ErrInvalidCredentials
	}

	switch user.Status {
	case models.UserStatusActive:
	case models.UserStatusPending:
		return nil, appErrors.ErrUserNotVerified
	case models.UserStatusSuspended:
		return nil, appErrors.ErrUserSuspended
	default:
		return nil, appErrors.NewForbiddenError("User account is inactive")
	}

	if err := s.repos.Users.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn("Failed to record last login", "user_id", user.ID, "error", err)
	}

	return s.issuePair(user)
}

// Refresh rotates the pair: a new access token always comes with a new
// refresh token. The previous refresh stays decodable until its own
// expiry; clients are expected to use the most recent cookie.
func (s *AuthService) Refresh(ctx context.Context, site *models.Site, refreshToken string) (*TokenPair, error) {
	userID, err := s.jwt.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		if appErrors.Is(err, auth.ErrTokenExpired) {
			return nil, appErrors.ErrTokenExpired
		}
		return nil, appErrors.ErrInvalidToken
	}

	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, appErrors.ErrInvalidToken
	}
	if user.SiteID != site.ID {
		return nil, appErrors.ErrCrossTenant
	}
	if user.Status != models.UserStatusActive {
		return nil, appErrors.ErrInvalidToken
	}

	return s.issuePair(user)
}

type VerifyEmailInput struct {
	Email string
	Code  string
}

// VerifyEmailCode activates a pending account. The session store is the
// fast path; the database token is the durable fallback (the cache may
// have expired or the process restarted).
func (s *AuthService) VerifyEmailCode(ctx context.Context, site *models.Site, input VerifyEmailInput) (*TokenPair, error) {
	invalid := appErrors.ValidationError("Invalid verification code")

	user, err := s.repos.Users.FindByEmail(ctx, site.ID, input.Email)
	if err != nil {
		return nil, invalid
	}
	if user.EmailVerified && user.Status == models.UserStatusActive {
		return nil, appErrors.ValidationError("Email already verified")
	}

	verified := false
	if s.sessions != nil {
		_, err := s.sessions.VerifyCode(ctx, verifySessionID(site.ID, input.Email), input.Code)
		switch {
		case err == nil:
			verified = true
		case appErrors.Is(err, sessions.ErrCodeMismatch):
			return nil, invalid
		}
	}

	now := time.Now().UTC()
	token, err := s.repos.Users.LatestVerificationToken(ctx, site.ID, user.ID)
	if !verified {
		if err != nil {
			return nil, invalid
		}
		if !token.Usable(now) || token.Code != input.Code {
			return nil, invalid
		}
	}
	if err == nil && token.VerifiedAt == nil {
		if err := s.repos.Users.MarkVerificationUsed(ctx, token.ID, now); err != nil {
			logger.Warn("Failed to mark verification token used", "error", err)
		}
	}

	user.Status = models.UserStatusActive
	user.EmailVerified = true
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, appErrors.InternalError(err)
	}

	s.awardSignupBonus(ctx, site, user.ID)
	s.notifications.SendEmail(ctx, site, user,
		fmt.Sprintf("Welcome to %s", site.Name), "welcome",
		map[string]interface{}{
			"Name":     user.FullName(),
			"SiteName": site.Name,
		},
	)

	return s.issuePair(user)
}

// ForgotPassword always reports success so account existence is never
// revealed.
func (s *AuthService) ForgotPassword(ctx context.Context, site *models.Site, email string) error {
	user, err := s.repos.Users.FindByEmail(ctx, site.ID, email)
	if err != nil {
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil
	}
	tokenValue := hex.EncodeToString(raw)

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     tokenValue,
		ExpiresAt: time.Now().UTC().Add(passwordResetTTL),
	}
	token.SiteID = site.ID
	if err := s.repos.Users.CreateResetToken(ctx, token); err != nil {
		logger.Warn("Failed to create reset token", "error", err)
		return nil
	}

	s.notifications.SendEmail(ctx, site, user,
		"Reset your password", "password_reset",
		map[string]interface{}{
			"Name":     user.FullName(),
			"SiteName": site.Name,
			"ResetURL": s.resetURL(site, tokenValue),
		},
	)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, site *models.Site, tokenValue, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return appErrors.ErrWeakPassword
	}

	token, err := s.repos.Users.FindResetToken(ctx, site.ID, tokenValue)
	if err != nil {
		return appErrors.ErrInvalidToken
	}
	now := time.Now().UTC()
	if !token.Usable(now) {
		return appErrors.ErrInvalidToken
	}

	user, err := s.repos.Users.FindByID(ctx, token.UserID)
	if err != nil || user.SiteID != site.ID {
		return appErrors.ErrInvalidToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return appErrors.InternalError(err)
	}
	user.PasswordHash = hash
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return appErrors.InternalError(err)
	}
	if err := s.repos.Users.MarkResetUsed(ctx, token.ID, now); err != nil {
		logger.Warn("Failed to mark reset token used", "error", err)
	}
	return nil
}

// RefreshTTLSeconds is the max-age the refresh cookie is set with.
func (s *AuthService) RefreshTTLSeconds() int {
	return int(s.jwt.RefreshTTL().Seconds())
}

func (s *AuthService) issuePair(user *models.User) (*TokenPair, error) {
	access, err := s.jwt.IssueAccess(user.ID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	refresh, err := s.jwt.IssueRefresh(user.ID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.jwt.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

func (s *AuthService) awardSignupBonus(ctx context.Context, site *models.Site, userID string) {
	settings := tenant.NewSettings(site, s.cipher)
	reward := settings.SignupTokenReward()
	if reward <= 0 {
		return
	}
	_, err := s.tokens.Award(ctx, site, AwardParams{
		UserID:        userID,
		Amount:        reward,
		Description:   "Signup bonus",
		ReferenceType: models.ReferenceSignupBonus,
		ReferenceID:   userID,
	})
	if err != nil {
		logger.Warn("Signup bonus award failed", "user_id", userID, "error", err)
	}
}

func (s *AuthService) resetURL(site *models.Site, token string) string {
	host := site.CustomDomain
	if host == "" {
		host = site.Subdomain + "." + s.baseDomain
	}
	return fmt.Sprintf("https://%s/reset-password?token=%s", host, token)
}

func verifySessionID(siteID, email string) string {
	return fmt.Sprintf("verify:%s:%s", siteID, email)
}

// numericCode returns n cryptographically random decimal digits.
func numericCode(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}
