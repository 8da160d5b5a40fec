// Package wallet proves control of a wallet address. Addresses are base58
// encoded ed25519 public keys; the canonical signed message is produced by
// the front end and verified here.
package wallet

import (
	"crypto/ed25519"
	"fmt"

	"github.com/tessera-canvas/tessera/pkg/validation"
)

type Ed25519Verifier struct{}

// NewEd25519Verifier returns the default signature verifier.
func NewEd25519Verifier() *Ed25519Verifier {
	return &Ed25519Verifier{}
}

// Verify checks signature over message against the wallet address. The
// decoded address is the ed25519 public key.
func (v *Ed25519Verifier) Verify(wallet string, message, signature []byte) error {
	pubKey, err := validation.DecodeWalletAddress(wallet)
	if err != nil {
		return fmt.Errorf("invalid wallet address: %w", err)
	}

	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("invalid signature length: expected %d bytes, got %d", ed25519.SignatureSize, len(signature))
	}

	if !ed25519.Verify(ed25519.PublicKey(pubKey), message, signature) {
		return fmt.Errorf("signature does not match wallet %s", wallet)
	}

	return nil
}
