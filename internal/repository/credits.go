package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/pkg/apperrors"
)

// ensureBalanceRow creates the wallet's balance row with zero credits if it
// does not exist yet. Upsert-on-first-touch semantics for writes.
func ensureBalanceRow(tx *gorm.DB, wallet string) error {
	balance := models.CreditBalance{
		WalletAddress: wallet,
		Credits:       0,
		UpdatedAt:     time.Now().Unix(),
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoNothing: true,
	}).Create(&balance).Error; err != nil {
		return fmt.Errorf("failed to ensure balance row: %w", err)
	}
	return nil
}

// creditWallet increments a wallet's balance inside an existing transaction.
func creditWallet(tx *gorm.DB, wallet string, amount int64) error {
	if err := ensureBalanceRow(tx, wallet); err != nil {
		return err
	}
	if err := tx.Model(&models.CreditBalance{}).
		Where("wallet_address = ?", wallet).
		Updates(map[string]interface{}{
			"credits":    gorm.Expr("credits + ?", amount),
			"updated_at": time.Now().Unix(),
		}).Error; err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}
	return nil
}

// GetBalance returns the wallet's balance. An untouched wallet reads as zero
// credits; the row itself is only created on the first write.
func (db *PostgresDB) GetBalance(ctx context.Context, wallet string) (*models.CreditBalance, error) {
	var balance models.CreditBalance
	if err := db.Conn.WithContext(ctx).Where("wallet_address = ?", wallet).First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.CreditBalance{WalletAddress: wallet, Credits: 0}, nil
		}
		return nil, fmt.Errorf("failed to get balance: %s", err)
	}

	return &balance, nil
}

// AdjustCredits applies delta to the wallet's balance. Negative deltas are
// guarded: the conditional UPDATE re-checks sufficiency atomically, so
// concurrent adjustments on the same wallet cannot drive it negative.
func (db *PostgresDB) AdjustCredits(ctx context.Context, wallet string, delta int64) (int64, error) {
	var newBalance int64
	err := db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureBalanceRow(tx, wallet); err != nil {
			return err
		}

		query := tx.Model(&models.CreditBalance{}).Where("wallet_address = ?", wallet)
		if delta < 0 {
			query = query.Where("credits >= ?", -delta)
		}
		res := query.Updates(map[string]interface{}{
			"credits":    gorm.Expr("credits + ?", delta),
			"updated_at": time.Now().Unix(),
		})
		if res.Error != nil {
			return fmt.Errorf("failed to adjust credits: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.Newf(apperrors.CodeInsufficientCredits,
				"insufficient credits for adjustment of %d", delta)
		}

		var balance models.CreditBalance
		if err := tx.Where("wallet_address = ?", wallet).First(&balance).Error; err != nil {
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

func (db *PostgresDB) SetDisplayName(ctx context.Context, wallet, name string) error {
	return db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureBalanceRow(tx, wallet); err != nil {
			return err
		}
		if err := tx.Model(&models.CreditBalance{}).
			Where("wallet_address = ?", wallet).
			Update("display_name", name).Error; err != nil {
			return fmt.Errorf("failed to set display name: %w", err)
		}
		return nil
	})
}
