package tenant

import (
	"academy_backend/internal/models"
	"academy_backend/internal/vault"
)

// Setting keys read out of Site.ThemeConfig.
const (
	KeyAllowRegistration        = "allow_registration"
	KeyRequireEmailVerification = "require_email_verification"
	KeyEnableTokenRewards       = "enable_token_rewards"
	KeyDefaultTokenReward       = "default_token_reward"
	KeyLessonTokenReward        = "lesson_token_reward"
	KeyQuizTokenReward          = "quiz_token_reward"
	KeySignupTokenReward        = "signup_token_reward"
	KeyMaintenanceMode          = "maintenance_mode"
)

// Branding keys safe to expose on the unauthenticated theme endpoint.
var publicThemeKeys = []string{
	"primary_color", "secondary_color", "accent_color", "background_color",
	"font_family", "logo_url", "favicon_url", "hero_title", "hero_subtitle",
	"footer_text",
}

// Settings is the sole reader of a tenant's schemaless theme_config. Every
// getter applies a default; callers never index the raw map.
type Settings struct {
	site   *models.Site
	cipher *vault.Cipher
}

func NewSettings(site *models.Site, cipher *vault.Cipher) *Settings {
	return &Settings{site: site, cipher: cipher}
}

func (s *Settings) AllowRegistration() bool {
	return s.boolKey(KeyAllowRegistration, true)
}

func (s *Settings) RequireEmailVerification() bool {
	return s.boolKey(KeyRequireEmailVerification, true)
}

func (s *Settings) EnableTokenRewards() bool {
	return s.boolKey(KeyEnableTokenRewards, true)
}

func (s *Settings) DefaultTokenReward() int {
	return s.intKey(KeyDefaultTokenReward, 25)
}

func (s *Settings) LessonTokenReward() int {
	return s.intKey(KeyLessonTokenReward, 10)
}

func (s *Settings) QuizTokenReward() int {
	return s.intKey(KeyQuizTokenReward, 15)
}

func (s *Settings) SignupTokenReward() int {
	return s.intKey(KeySignupTokenReward, 25)
}

func (s *Settings) MaintenanceMode() bool {
	return s.boolKey(KeyMaintenanceMode, false)
}

// SMTPConfig is a tenant's mail configuration with the password decrypted.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// Configured reports whether the tenant carries enough SMTP settings to
// send on its own. Otherwise the dispatcher falls back to the process-wide
// default.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.FromEmail != ""
}

// SMTP reads the tenant SMTP fields, decrypting the stored password.
func (s *Settings) SMTP() SMTPConfig {
	cfg := SMTPConfig{
		Host:      s.strKey(models.ThemeKeySMTPHost, ""),
		Port:      s.intKey(models.ThemeKeySMTPPort, 587),
		Username:  s.strKey(models.ThemeKeySMTPUsername, ""),
		FromEmail: s.strKey(models.ThemeKeySMTPFromEmail, ""),
		FromName:  s.strKey(models.ThemeKeySMTPFromName, s.site.Name),
	}
	if enc := s.strKey(models.ThemeKeySMTPPasswordEncrypted, ""); enc != "" && s.cipher != nil {
		cfg.Password = s.cipher.Decrypt(enc)
	}
	return cfg
}

// PublicTheme returns only the safe branding keys plus the site's own
// public fields. Reward amounts, flags and SMTP settings never leave here.
func (s *Settings) PublicTheme() map[string]interface{} {
	out := map[string]interface{}{
		"name":     s.site.Name,
		"logo_url": s.site.LogoURL,
	}
	for _, key := range publicThemeKeys {
		if v, ok := s.site.ThemeConfig[key]; ok {
			out[key] = v
		}
	}
	return out
}

func (s *Settings) boolKey(key string, def bool) bool {
	if v, ok := s.site.ThemeConfig[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// JSON numbers decode as float64; tolerate ints for values set in tests.
func (s *Settings) intKey(key string, def int) int {
	if v, ok := s.site.ThemeConfig[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

func (s *Settings) strKey(key string, def string) string {
	if v, ok := s.site.ThemeConfig[key]; ok {
		if str, ok := v.(string); ok && str != "" {
			return str
		}
	}
	return def
}
