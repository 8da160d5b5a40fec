package models

// CanvasLock is a single-row table used to serialize purchases. Every
// purchase transaction bumps the row's version before checking overlaps,
// which takes a row write-lock and orders concurrent claims on any SQL
// backend without relying on a specific isolation level.
type CanvasLock struct {
	ID      int   `gorm:"primaryKey"`
	Version int64 `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (CanvasLock) TableName() string {
	return "canvas_locks"
}
