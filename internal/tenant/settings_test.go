package tenant

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"academy_backend/internal/models"
	"academy_backend/internal/vault"
)

func testCipher(t *testing.T) *vault.Cipher {
	t.Helper()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	c, err := vault.New(base64.URLEncoding.EncodeToString(raw))
	require.NoError(t, err)
	return c
}

func TestSettingsDefaults(t *testing.T) {
	site := &models.Site{Name: "Maria Academy"}
	s := NewSettings(site, nil)

	assert.True(t, s.AllowRegistration())
	assert.True(t, s.RequireEmailVerification())
	assert.True(t, s.EnableTokenRewards())
	assert.False(t, s.MaintenanceMode())
	assert.Equal(t, 25, s.DefaultTokenReward())
	assert.Equal(t, 10, s.LessonTokenReward())
	assert.Equal(t, 15, s.QuizTokenReward())
	assert.Equal(t, 25, s.SignupTokenReward())
}

func TestSettingsOverrides(t *testing.T) {
	site := &models.Site{
		Name: "Maria Academy",
		ThemeConfig: datatypes.JSONMap{
			KeyEnableTokenRewards: false,
			KeyMaintenanceMode:    true,
			// JSONB numbers arrive as float64.
			KeyLessonTokenReward: float64(50),
			KeyQuizTokenReward:   30,
		},
	}
	s := NewSettings(site, nil)

	assert.False(t, s.EnableTokenRewards())
	assert.True(t, s.MaintenanceMode())
	assert.Equal(t, 50, s.LessonTokenReward())
	assert.Equal(t, 30, s.QuizTokenReward())
}

func TestSMTPDecryptsPassword(t *testing.T) {
	cipher := testCipher(t)
	enc, err := cipher.Encrypt("mail-secret")
	require.NoError(t, err)

	site := &models.Site{
		Name: "Maria Academy",
		ThemeConfig: datatypes.JSONMap{
			models.ThemeKeySMTPHost:              "smtp.example.com",
			models.ThemeKeySMTPPort:              float64(2525),
			models.ThemeKeySMTPUsername:          "mailer",
			models.ThemeKeySMTPPasswordEncrypted: enc,
			models.ThemeKeySMTPFromEmail:         "no-reply@maria.test",
		},
	}
	cfg := NewSettings(site, cipher).SMTP()

	assert.True(t, cfg.Configured())
	assert.Equal(t, "smtp.example.com", cfg.Host)
	assert.Equal(t, 2525, cfg.Port)
	assert.Equal(t, "mail-secret", cfg.Password)
	assert.Equal(t, "Maria Academy", cfg.FromName)
}

func TestSMTPUnconfigured(t *testing.T) {
	site := &models.Site{Name: "Maria Academy"}
	cfg := NewSettings(site, nil).SMTP()

	assert.False(t, cfg.Configured())
	assert.Equal(t, 587, cfg.Port)
}

func TestPublicThemeFiltersSensitiveKeys(t *testing.T) {
	site := &models.Site{
		Name:    "Maria Academy",
		LogoURL: "/logo.png",
		ThemeConfig: datatypes.JSONMap{
			"primary_color":                      "#223344",
			"hero_title":                         "Learn with us",
			KeyLessonTokenReward:                 float64(50),
			models.ThemeKeySMTPPasswordEncrypted: "secret",
		},
	}
	theme := NewSettings(site, nil).PublicTheme()

	assert.Equal(t, "Maria Academy", theme["name"])
	assert.Equal(t, "#223344", theme["primary_color"])
	assert.Equal(t, "Learn with us", theme["hero_title"])
	assert.NotContains(t, theme, KeyLessonTokenReward)
	assert.NotContains(t, theme, models.ThemeKeySMTPPasswordEncrypted)
}
