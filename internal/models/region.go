package models

// Region represents a claimed rectangular area of the canvas.
type Region struct {
	// ID is the unique identifier of the region.
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// StartX is the left edge of the region on the canvas grid.
	StartX int `json:"start_x" gorm:"column:start_x;index:idx_regions_area"`
	// StartY is the top edge of the region on the canvas grid.
	StartY int `json:"start_y" gorm:"column:start_y;index:idx_regions_area"`
	// Width is the width of the region in pixels.
	Width int `json:"width" gorm:"column:width;not null"`
	// Height is the height of the region in pixels.
	Height int `json:"height" gorm:"column:height;not null"`
	// OwnerWallet is the wallet address that paid for the region.
	OwnerWallet string `json:"owner_wallet" gorm:"column:owner_wallet;index;not null"`
	// ImageURL is the public URL of the uploaded image shown in the region.
	// The blob store is external; only the reference is kept here.
	ImageURL string `json:"image_url,omitempty" gorm:"column:image_url"`
	// LinkURL is the clickable URL attached to the region.
	LinkURL string `json:"link_url,omitempty" gorm:"column:link_url"`
	// AltText is the hover message attached to the region.
	AltText string `json:"alt_text,omitempty" gorm:"column:alt_text"`
	// PriceCharged is the number of credits paid for the region.
	PriceCharged int64 `json:"price_charged" gorm:"column:price_charged;not null"`
	// TxnSignature is the synthetic purchase reference generated at claim time.
	TxnSignature string `json:"txn_signature" gorm:"column:txn_signature"`
	// CreatedAt is the Unix timestamp when the region was claimed.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at;index"`
}

// RegionContent carries the owner-editable fields of a region. Nil pointers
// mean "leave the stored value unchanged".
type RegionContent struct {
	ImageURL *string
	LinkURL  *string
	AltText  *string
}
