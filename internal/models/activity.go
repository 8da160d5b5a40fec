package models

// Activity kinds shown in the recent-activity feed. Retractions double as the
// audit trail for admin actions.
const (
	ActivityPurchase = "purchase"
	ActivityUpdate   = "update"
	ActivityRetract  = "retract"
)

// ActivityEntry is a single row of the recent-activity feed.
type ActivityEntry struct {
	// ID is the unique identifier of the entry.
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// Kind is the activity kind (purchase, update, retract).
	Kind string `json:"kind" gorm:"column:kind;not null"`
	// WalletAddress is the wallet that performed the action. For retractions
	// this is the admin wallet.
	WalletAddress string `json:"wallet_address" gorm:"column:wallet_address;not null"`
	// SubjectWallet is the wallet affected by the action when it differs from
	// the actor, e.g. the original owner of a retracted region.
	SubjectWallet string `json:"subject_wallet,omitempty" gorm:"column:subject_wallet"`
	// RegionRef identifies the region as "x,y" on the canvas.
	RegionRef string `json:"region_ref" gorm:"column:region_ref"`
	// CreatedAt is the Unix timestamp of the action.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at;index"`
}

// CanvasStats is the aggregate shown on the front page counters.
type CanvasStats struct {
	PixelsSold  int64 `json:"pixels_sold"`
	RegionCount int64 `json:"region_count"`
}
