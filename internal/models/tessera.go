package models

import (
	"context"

	"github.com/tessera-canvas/tessera/pkg/validation"
)

// PurchaseRequest is a claim on a rectangular area of the canvas.
type PurchaseRequest struct {
	Area   validation.Rect
	Wallet string
}

// PurchaseResult is the authoritative outcome of a successful purchase.
type PurchaseResult struct {
	RegionID     string
	TxnSignature string
	PriceCharged int64
	NewBalance   int64
}

// UpdateRegionRequest attaches content to an owned region. The region is
// addressed either by ID or by its top-left corner. Only non-nil content
// fields are overwritten.
type UpdateRegionRequest struct {
	Wallet        string
	RegionID      string
	Area          *validation.Rect
	Content       RegionContent
	SignedMessage []byte
	Signature     []byte
}

// RetractRequest removes regions by ID or by area. Admin-only.
type RetractRequest struct {
	AdminWallet string
	RegionID    string
	Area        *validation.Rect
}

// RetractResult reports what a retraction removed and refunded.
type RetractResult struct {
	RegionsRemoved int
	RefundCredits  int64
}

// PaymentResult is the outcome of a verified top-up.
type PaymentResult struct {
	CreditsGranted int64
	NewBalance     int64
}

// TesseraI is the canvas marketplace service consumed by the HTTP layer.
type TesseraI interface {
	// Purchase claims a region for a wallet, debiting its credit balance.
	Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)

	// UpdateRegion attaches image/link/hover content to an owned region.
	UpdateRegion(ctx context.Context, req UpdateRegionRequest) (*Region, error)

	// VerifyPayment reconciles an external payment proof into a one-time
	// credit grant.
	VerifyPayment(ctx context.Context, txRef, wallet string) (*PaymentResult, error)

	// Retract removes regions and refunds a fraction of the price to the
	// original owners. Admin-only.
	Retract(ctx context.Context, req RetractRequest) (*RetractResult, error)

	Regions(ctx context.Context) ([]*Region, error)
	RegionsByOwner(ctx context.Context, wallet string) ([]*Region, error)
	Balance(ctx context.Context, wallet string) (*CreditBalance, error)
	SetDisplayName(ctx context.Context, wallet, name string) error
	RecentActivity(ctx context.Context, limit int) ([]*ActivityEntry, error)
	Stats(ctx context.Context) (*CanvasStats, error)

	// IsAdmin reports whether the wallet is part of the configured admin set.
	IsAdmin(wallet string) bool
}

// APIServer is the outward-facing HTTP surface of the application.
type APIServer interface {
	Start()
	Shutdown() error
}
