package models

// TokenBalance is unique per (site_id, user_id); balance never goes below
// zero. Updates serialize on the row so balance_after stays monotonic per
// user.
type TokenBalance struct {
	TenantModel
	UserID  string `gorm:"type:uuid;not null;index:idx_token_balances_site_user" json:"user_id"`
	Balance int    `gorm:"not null;default:0" json:"balance"`
}

// TokenTransaction is append-only. Amount is signed; BalanceAfter is the
// balance immediately after applying it. (UserID, ReferenceType,
// ReferenceID), when all set, is the idempotency key for award events: at
// most one row per key.
type TokenTransaction struct {
	TenantModel
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount        int             `gorm:"not null" json:"amount"`
	BalanceAfter  int             `gorm:"not null" json:"balance_after"`
	Type          TransactionType `gorm:"type:varchar(20);not null" json:"type"`
	Description   string          `json:"description,omitempty"`
	ReferenceType string          `gorm:"index:idx_token_tx_reference" json:"reference_type,omitempty"`
	ReferenceID   string          `gorm:"index:idx_token_tx_reference" json:"reference_id,omitempty"`
}
