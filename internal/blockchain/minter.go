// Package blockchain is the pluggable on-chain anchor for certificates.
// Only the stub ships; a real minter would wrap a chain client.
package blockchain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

type MintResult struct {
	TxHash  string
	TokenID string
}

type Minter interface {
	Mint(ctx context.Context, certificateID string) (*MintResult, error)
	Verify(ctx context.Context, certificateID string) (bool, error)
}

// StubMinter returns deterministic mock values derived from the
// certificate id. Verify always reports false so public verification
// degrades gracefully.
type StubMinter struct{}

func NewStubMinter() *StubMinter {
	return &StubMinter{}
}

func (m *StubMinter) Mint(_ context.Context, certificateID string) (*MintResult, error) {
	sum := sha256.Sum256([]byte(certificateID))
	digest := hex.EncodeToString(sum[:])
	return &MintResult{
		TxHash:  "0x" + digest,
		TokenID: digest[:16],
	}, nil
}

func (m *StubMinter) Verify(_ context.Context, _ string) (bool, error) {
	return false, nil
}
