package repository

import (
	"context"
	"fmt"

	"github.com/tessera-canvas/tessera/internal/models"
)

func (db *PostgresDB) AddActivity(ctx context.Context, entry *models.ActivityEntry) error {
	if err := db.Conn.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to add activity entry: %s", err)
	}
	return nil
}

func (db *PostgresDB) GetRecentActivity(ctx context.Context, limit int) ([]*models.ActivityEntry, error) {
	var entries []*models.ActivityEntry
	if err := db.Conn.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent activity: %s", err)
	}

	return entries, nil
}

func (db *PostgresDB) GetCanvasStats(ctx context.Context) (*models.CanvasStats, error) {
	var stats models.CanvasStats
	if err := db.Conn.WithContext(ctx).Model(&models.Region{}).
		Select("COALESCE(SUM(width * height), 0) AS pixels_sold, COUNT(*) AS region_count").
		Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to get canvas stats: %s", err)
	}

	return &stats, nil
}
