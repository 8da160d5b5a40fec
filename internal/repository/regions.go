package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/pkg/apperrors"
)

// PurchaseRegion applies the whole claim as one transaction: serialize on the
// canvas lock, check overlap, debit the balance, insert the region. Any
// failure rolls the entire unit back, so a debit can never survive a failed
// insert.
func (db *PostgresDB) PurchaseRegion(ctx context.Context, region *models.Region) (int64, error) {
	var newBalance int64
	err := db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Bumping the lock row takes its write lock, which orders concurrent
		// purchases so the overlap check below cannot race an insert.
		if err := tx.Model(&models.CanvasLock{}).Where("id = ?", canvasLockID).
			Update("version", gorm.Expr("version + 1")).Error; err != nil {
			return fmt.Errorf("failed to acquire canvas lock: %w", err)
		}

		var overlapping int64
		if err := tx.Model(&models.Region{}).
			Where("start_x < ? AND start_x + width > ? AND start_y < ? AND start_y + height > ?",
				region.StartX+region.Width, region.StartX,
				region.StartY+region.Height, region.StartY).
			Count(&overlapping).Error; err != nil {
			return fmt.Errorf("failed to check overlap: %w", err)
		}
		if overlapping > 0 {
			return apperrors.Newf(apperrors.CodeConflict,
				"region %dx%d at (%d, %d) overlaps %d existing block(s)",
				region.Width, region.Height, region.StartX, region.StartY, overlapping)
		}

		if err := ensureBalanceRow(tx, region.OwnerWallet); err != nil {
			return err
		}

		var balance models.CreditBalance
		if err := tx.Where("wallet_address = ?", region.OwnerWallet).First(&balance).Error; err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}
		if balance.Credits < region.PriceCharged {
			return apperrors.Newf(apperrors.CodeInsufficientCredits,
				"insufficient credits: required %d, available %d", region.PriceCharged, balance.Credits)
		}

		// Guarded debit: the WHERE clause re-checks sufficiency so two
		// concurrent spends on the same wallet cannot overdraw it.
		res := tx.Model(&models.CreditBalance{}).
			Where("wallet_address = ? AND credits >= ?", region.OwnerWallet, region.PriceCharged).
			Updates(map[string]interface{}{
				"credits":    gorm.Expr("credits - ?", region.PriceCharged),
				"updated_at": time.Now().Unix(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to debit credits: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.Newf(apperrors.CodeInsufficientCredits,
				"insufficient credits: required %d", region.PriceCharged)
		}

		if err := tx.Create(region).Error; err != nil {
			return fmt.Errorf("failed to create region: %w", err)
		}

		newBalance = balance.Credits - region.PriceCharged
		return nil
	})
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}

// RetractRegions deletes the given regions and refunds their original owners
// as a single atomic unit.
func (db *PostgresDB) RetractRegions(ctx context.Context, refunds []models.RetractionRefund) error {
	return db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, refund := range refunds {
			res := tx.Where("id = ?", refund.RegionID).Delete(&models.Region{})
			if res.Error != nil {
				return fmt.Errorf("failed to delete region %s: %w", refund.RegionID, res.Error)
			}
			if res.RowsAffected == 0 {
				return apperrors.Newf(apperrors.CodeNotFound, "region %s not found", refund.RegionID)
			}
			if refund.Refund > 0 {
				if err := creditWallet(tx, refund.OwnerWallet, refund.Refund); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (db *PostgresDB) GetRegion(ctx context.Context, id string) (*models.Region, error) {
	var region models.Region
	if err := db.Conn.WithContext(ctx).Where("id = ?", id).First(&region).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get region: %s", err)
	}

	return &region, nil
}

// GetRegionAt returns the region whose top-left corner is exactly (x, y).
// The front end addresses owned blocks by their corner coordinates.
func (db *PostgresDB) GetRegionAt(ctx context.Context, x, y int) (*models.Region, error) {
	var region models.Region
	if err := db.Conn.WithContext(ctx).Where("start_x = ? AND start_y = ?", x, y).First(&region).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get region at (%d, %d): %s", x, y, err)
	}

	return &region, nil
}

func (db *PostgresDB) GetRegions(ctx context.Context) ([]*models.Region, error) {
	var regions []*models.Region
	if err := db.Conn.WithContext(ctx).Order("created_at ASC").Find(&regions).Error; err != nil {
		return nil, fmt.Errorf("failed to get regions: %s", err)
	}

	return regions, nil
}

func (db *PostgresDB) GetRegionsByOwner(ctx context.Context, wallet string) ([]*models.Region, error) {
	var regions []*models.Region
	if err := db.Conn.WithContext(ctx).Where("owner_wallet = ?", wallet).Order("created_at ASC").Find(&regions).Error; err != nil {
		return nil, fmt.Errorf("failed to get regions by owner: %s", err)
	}

	return regions, nil
}

func (db *PostgresDB) GetRegionsIntersecting(ctx context.Context, x, y, width, height int) ([]*models.Region, error) {
	var regions []*models.Region
	if err := db.Conn.WithContext(ctx).
		Where("start_x < ? AND start_x + width > ? AND start_y < ? AND start_y + height > ?",
			x+width, x, y+height, y).
		Find(&regions).Error; err != nil {
		return nil, fmt.Errorf("failed to get intersecting regions: %s", err)
	}

	return regions, nil
}

// UpdateRegionContent overwrites only the content fields present in content;
// nil pointers keep the stored values.
func (db *PostgresDB) UpdateRegionContent(ctx context.Context, id string, content models.RegionContent) error {
	updates := map[string]interface{}{}
	if content.ImageURL != nil {
		updates["image_url"] = *content.ImageURL
	}
	if content.LinkURL != nil {
		updates["link_url"] = *content.LinkURL
	}
	if content.AltText != nil {
		updates["alt_text"] = *content.AltText
	}
	if len(updates) == 0 {
		return nil
	}

	res := db.Conn.WithContext(ctx).Model(&models.Region{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update region content: %s", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.Newf(apperrors.CodeNotFound, "region %s not found", id)
	}

	return nil
}
