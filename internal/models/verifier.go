package models

// SignatureVerifier proves that the caller controls a wallet address.
// Implementations check signature over message against the address; the
// service trusts the verified result and never touches key material itself.
type SignatureVerifier interface {
	Verify(wallet string, message, signature []byte) error
}
