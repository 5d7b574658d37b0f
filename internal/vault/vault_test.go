package vault

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	return base64.URLEncoding.EncodeToString(raw)
}

func TestCipherRoundTrip(t *testing.T) {
	c, err := New(testKey())
	require.NoError(t, err)
	assert.False(t, c.Degraded())

	enc, err := c.Encrypt("smtp-password")
	require.NoError(t, err)
	assert.NotEqual(t, "smtp-password", enc)

	assert.Equal(t, "smtp-password", c.Decrypt(enc))
}

func TestCipherFreshCiphertextPerCall(t *testing.T) {
	c, err := New(testKey())
	require.NoError(t, err)

	a, err := c.Encrypt("value")
	require.NoError(t, err)
	b, err := c.Encrypt("value")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCipherDegradedPassthrough(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.True(t, c.Degraded())

	enc, err := c.Encrypt("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", enc)
	assert.Equal(t, "plain", c.Decrypt("plain"))
}

func TestCipherRejectsBadKey(t *testing.T) {
	_, err := New("not-base64!!")
	assert.Error(t, err)
}

func TestDecryptLegacyPlaintext(t *testing.T) {
	c, err := New(testKey())
	require.NoError(t, err)

	// Rows written before encryption was enabled pass through untouched.
	assert.Equal(t, "legacy-password", c.Decrypt("legacy-password"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask("", 3))
	assert.Equal(t, "abc***", Mask("abcdef", 3))
	assert.Equal(t, "ab***", Mask("ab", 3))
	assert.Equal(t, "joh***@***.com", Mask("john.doe@example.com", 3))
	assert.Equal(t, "jo***@***.io", Mask("jo@dev.example.io", 3))
}
