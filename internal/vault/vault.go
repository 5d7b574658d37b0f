// Package vault encrypts sensitive per-tenant values (SMTP passwords) with
// a process-wide Fernet key.
package vault

import (
	"strings"

	"github.com/fernet/fernet-go"

	"academy_backend/internal/logger"
)

// Cipher wraps the Fernet key. With no key configured it degrades: Encrypt
// becomes a no-op and Degraded reports true so admin surfaces can warn. The
// process still boots.
type Cipher struct {
	keys []*fernet.Key
}

// New decodes the base64 Fernet key from configuration. An empty key yields
// a degraded cipher rather than an error.
func New(encodedKey string) (*Cipher, error) {
	if encodedKey == "" {
		logger.Warn("encryption key not configured, credential vault degraded to plaintext")
		return &Cipher{}, nil
	}
	keys, err := fernet.DecodeKeys(encodedKey)
	if err != nil {
		return nil, err
	}
	return &Cipher{keys: keys}, nil
}

// Degraded reports whether encryption is disabled for lack of a key.
func (c *Cipher) Degraded() bool {
	return len(c.keys) == 0
}

// Encrypt produces a fresh ciphertext on every call (Fernet nonces are
// random). In degraded mode the plaintext is returned unchanged.
func (c *Cipher) Encrypt(plain string) (string, error) {
	if c.Degraded() || plain == "" {
		return plain, nil
	}
	tok, err := fernet.EncryptAndSign([]byte(plain), c.keys[0])
	if err != nil {
		return "", err
	}
	return string(tok), nil
}

// Decrypt reverses Encrypt. Values that are not valid Fernet tokens are
// returned unchanged so legacy plaintext rows keep working.
func (c *Cipher) Decrypt(value string) string {
	if c.Degraded() || value == "" {
		return value
	}
	msg := fernet.VerifyAndDecrypt([]byte(value), 0, c.keys)
	if msg == nil {
		return value
	}
	return string(msg)
}

// Mask renders a value for display keeping only the first visible
// characters. Emails keep their TLD shape: abc***@***.tld.
func Mask(value string, visible int) string {
	if value == "" {
		return ""
	}
	if visible <= 0 {
		visible = 3
	}

	if at := strings.Index(value, "@"); at > 0 {
		local := value[:at]
		domain := value[at+1:]
		if len(local) > visible {
			local = local[:visible]
		}
		tld := domain
		if dot := strings.LastIndex(domain, "."); dot >= 0 {
			tld = domain[dot+1:]
		}
		return local + "***@***." + tld
	}

	if len(value) <= visible {
		return value + "***"
	}
	return value[:visible] + "***"
}
