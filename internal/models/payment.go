package models

// PaymentStatusVerified is the status of a payment accepted by the oracle.
const PaymentStatusVerified = "verified"

// PaymentRecord is the ledger of external payment proofs. Each distinct
// on-chain transaction grants credits exactly once; the unique index on
// TransactionRef is the replay guard.
type PaymentRecord struct {
	// ID is the unique identifier of the record.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// TransactionRef is the external transaction signature proving the payment.
	TransactionRef string `json:"transaction_ref" gorm:"column:transaction_ref;uniqueIndex;not null"`
	// WalletAddress is the wallet credited for the payment.
	WalletAddress string `json:"wallet_address" gorm:"column:wallet_address;index;not null"`
	// AmountLamports is the transferred amount in the external unit.
	AmountLamports int64 `json:"amount_lamports" gorm:"column:amount_lamports;not null"`
	// CreditsGranted is the number of credits granted for the transfer.
	CreditsGranted int64 `json:"credits_granted" gorm:"column:credits_granted;not null"`
	// Status is the verification status of the payment.
	Status string `json:"status" gorm:"column:status;not null"`
	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at"`
}
