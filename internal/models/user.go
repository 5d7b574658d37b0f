package models

import "time"

// User is unique per (site_id, email) and (site_id, username), not globally:
// two tenants may each have their own a@b.c.
type User struct {
	TenantModel
	Email         string     `gorm:"not null;index" json:"email"`
	Username      string     `gorm:"not null;index" json:"username"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Role          UserRole   `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	Status        UserStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

type EmailVerificationToken struct {
	TenantModel
	UserID     string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Code       string     `gorm:"not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

func (t *EmailVerificationToken) Usable(now time.Time) bool {
	return t.VerifiedAt == nil && now.Before(t.ExpiresAt)
}

type PasswordResetToken struct {
	TenantModel
	UserID    string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string     `gorm:"not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
