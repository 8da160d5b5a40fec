package models

import "context"

// TransferLeg is a single balance movement inside a confirmed transaction.
type TransferLeg struct {
	From     string
	To       string
	Lamports int64
}

// OracleTransaction is the oracle's view of a confirmed transaction.
type OracleTransaction struct {
	Ref       string
	Failed    bool
	Fee       int64
	Transfers []TransferLeg
}

// PaymentOracle confirms that an external payment proof actually occurred.
// Implementations query the chain RPC; the service only consumes the
// verified transfer legs.
type PaymentOracle interface {
	GetTransaction(ctx context.Context, txRef string) (*OracleTransaction, error)
}
