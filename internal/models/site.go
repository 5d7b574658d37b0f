package models

import (
	"gorm.io/datatypes"
)

// Site is a tenant: one isolated academy. Every tenant-scoped row points
// back at it through site_id.
//
// ThemeConfig is schemaless on purpose: branding, feature flags, reward
// amounts and SMTP settings all live in it. The typed accessors in
// internal/tenant are the only reader; nothing else indexes the raw map.
type Site struct {
	BaseModel
	Subdomain    string            `gorm:"uniqueIndex;not null" json:"subdomain"`
	CustomDomain string            `gorm:"index" json:"custom_domain,omitempty"`
	Name         string            `gorm:"not null" json:"name"`
	LogoURL      string            `json:"logo_url,omitempty"`
	IsActive     bool              `gorm:"default:true" json:"is_active"`
	ThemeConfig  datatypes.JSONMap `gorm:"type:jsonb" json:"theme_config,omitempty"`
}

// ReservedSubdomains cannot be claimed by tenant registration.
var ReservedSubdomains = map[string]bool{
	"admin": true, "api": true, "system": true, "auth": true, "support": true,
	"billing": true, "cloud": true, "dev": true, "staging": true, "prod": true,
	"mail": true, "ftp": true, "ssh": true, "static": true, "assets": true,
	"www": true,
}

// Keys inside ThemeConfig holding per-tenant SMTP configuration. The
// password value is Fernet-encrypted at rest.
const (
	ThemeKeySMTPHost              = "smtp_host"
	ThemeKeySMTPPort              = "smtp_port"
	ThemeKeySMTPUsername          = "smtp_username"
	ThemeKeySMTPPasswordEncrypted = "smtp_password_encrypted"
	ThemeKeySMTPFromEmail         = "smtp_from_email"
	ThemeKeySMTPFromName          = "smtp_from_name"
)
