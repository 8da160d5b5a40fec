package models

// CreditBalance is the spendable credit balance of a wallet.
// Rows are created implicitly the first time a wallet is touched.
type CreditBalance struct {
	// WalletAddress is the wallet the balance belongs to.
	WalletAddress string `json:"wallet_address" gorm:"column:wallet_address;primaryKey"`
	// Credits is the current balance. Never negative: decreases only through
	// a successful purchase, increases only through a verified payment or a
	// retraction refund.
	Credits int64 `json:"credits" gorm:"column:credits;not null;default:0"`
	// DisplayName is the optional username shown instead of the address.
	DisplayName string `json:"display_name,omitempty" gorm:"column:display_name"`
	// UpdatedAt is the Unix timestamp of the last balance change.
	UpdatedAt int64 `json:"updated_at" gorm:"column:updated_at"`
}
