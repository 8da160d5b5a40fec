package validation

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// ValidateWalletAddress validates a base58-encoded wallet address.
// Addresses are ed25519 public keys, 32 bytes once decoded.
func ValidateWalletAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("wallet address cannot be empty")
	}

	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("invalid base58 address: %w", err)
	}

	if len(decoded) != 32 {
		return fmt.Errorf("invalid address length: expected 32 bytes, got %d", len(decoded))
	}

	return nil
}

// DecodeWalletAddress validates addr and returns the raw public key bytes.
func DecodeWalletAddress(addr string) ([]byte, error) {
	if err := ValidateWalletAddress(addr); err != nil {
		return nil, err
	}
	return base58.Decode(addr)
}
