package models

import "time"

// Certificate - one per (user, course) within a tenant. Its ID doubles as
// the public verification id printed on the PDF.
type Certificate struct {
	TenantModel
	UserID         string            `gorm:"type:uuid;not null;index:idx_certificates_user_course" json:"user_id"`
	CourseID       string            `gorm:"type:uuid;not null;index:idx_certificates_user_course" json:"course_id"`
	Status         CertificateStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CertificateURL string            `json:"certificate_url,omitempty"`
	IssuedAt       *time.Time        `json:"issued_at,omitempty"`

	// On-chain fields; populated only when a real minter is configured.
	ChainTxHash  string     `json:"chain_tx_hash,omitempty"`
	ChainTokenID string     `json:"chain_token_id,omitempty"`
	MintedAt     *time.Time `json:"minted_at,omitempty"`
}
