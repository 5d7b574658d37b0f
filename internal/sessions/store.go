// Package sessions is a TTL-bounded key-value store for short-lived opaque
// sessions: 2FA-style flows, email verification handoffs. After the TTL a
// session is indistinguishable from one that never existed.
package sessions

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound covers both unknown and expired sessions.
	ErrNotFound = errors.New("session not found")
	// ErrCodeMismatch is returned by VerifyCode on a wrong code.
	ErrCodeMismatch = errors.New("verification code mismatch")
	// ErrAlreadyVerified is returned by VerifyCode on re-use.
	ErrAlreadyVerified = errors.New("session already verified")
)

const (
	fieldCode     = "code"
	fieldVerified = "verified"
)

type Data = map[string]interface{}

type Store interface {
	// Create stores data under sessionID for ttl. An existing session with
	// the same id is overwritten.
	Create(ctx context.Context, sessionID string, data Data, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (Data, error)
	// Update replaces the payload. With preserveTTL the remaining lifetime
	// is kept, otherwise it is reset to ttl.
	Update(ctx context.Context, sessionID string, data Data, ttl time.Duration, preserveTTL bool) error
	Delete(ctx context.Context, sessionID string) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	TTL(ctx context.Context, sessionID string) (time.Duration, error)
	Extend(ctx context.Context, sessionID string, ttl time.Duration) error

	// VerifyCode atomically compares the stored code, marks the session
	// verified and returns the payload. A second call fails with
	// ErrAlreadyVerified: codes are single-use.
	VerifyCode(ctx context.Context, sessionID, code string) (Data, error)
}

func codeOf(data Data) string {
	if v, ok := data[fieldCode].(string); ok {
		return v
	}
	return ""
}

func verified(data Data) bool {
	v, ok := data[fieldVerified].(bool)
	return ok && v
}
