package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/pkg/apperrors"
)

// RecordPayment inserts the payment record and credits the wallet as one
// atomic unit. The unique index on transaction_ref is the replay guard: a
// concurrent duplicate loses the insert race and surfaces as
// ALREADY_PROCESSED, with no credits granted.
func (db *PostgresDB) RecordPayment(ctx context.Context, payment *models.PaymentRecord) (int64, error) {
	var newBalance int64
	err := db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Newf(apperrors.CodeAlreadyProcessed,
					"transaction %s already processed", payment.TransactionRef)
			}
			return fmt.Errorf("failed to record payment: %w", err)
		}

		if err := creditWallet(tx, payment.WalletAddress, payment.CreditsGranted); err != nil {
			return err
		}

		var balance models.CreditBalance
		if err := tx.Where("wallet_address = ?", payment.WalletAddress).First(&balance).Error; err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}
		newBalance = balance.Credits
		return nil
	})
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}

func (db *PostgresDB) GetPayment(ctx context.Context, transactionRef string) (*models.PaymentRecord, error) {
	var payment models.PaymentRecord
	if err := db.Conn.WithContext(ctx).Where("transaction_ref = ?", transactionRef).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %s", err)
	}

	return &payment, nil
}
