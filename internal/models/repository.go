package models

import "context"

// RetractionRefund describes one region removed by a retraction and the
// credits returned to its original owner.
type RetractionRefund struct {
	RegionID    string
	OwnerWallet string
	Refund      int64
}

// Repository is the durable store behind the canvas service. The three
// mutating operations that carry invariants (PurchaseRegion, RetractRegions,
// RecordPayment) are atomic: they either apply fully or leave no trace.
type Repository interface {
	Close() error

	// PurchaseRegion atomically verifies that region does not overlap any
	// live region, debits region.PriceCharged from the owner's balance and
	// inserts the region. Returns the new balance. Fails with CONFLICT when
	// the area is occupied and INSUFFICIENT_CREDITS when the balance cannot
	// cover the price.
	PurchaseRegion(ctx context.Context, region *Region) (int64, error)

	// RetractRegions atomically deletes the given regions and credits each
	// refund back to the region's original owner.
	RetractRegions(ctx context.Context, refunds []RetractionRefund) error

	// RecordPayment atomically inserts the payment record and increments the
	// wallet's balance by payment.CreditsGranted. Returns the new balance.
	// A duplicate TransactionRef fails with ALREADY_PROCESSED.
	RecordPayment(ctx context.Context, payment *PaymentRecord) (int64, error)

	GetRegion(ctx context.Context, id string) (*Region, error)
	GetRegionAt(ctx context.Context, x, y int) (*Region, error)
	GetRegions(ctx context.Context) ([]*Region, error)
	GetRegionsByOwner(ctx context.Context, wallet string) ([]*Region, error)
	GetRegionsIntersecting(ctx context.Context, x, y, width, height int) ([]*Region, error)
	UpdateRegionContent(ctx context.Context, id string, content RegionContent) error

	GetBalance(ctx context.Context, wallet string) (*CreditBalance, error)
	AdjustCredits(ctx context.Context, wallet string, delta int64) (int64, error)
	SetDisplayName(ctx context.Context, wallet, name string) error

	GetPayment(ctx context.Context, transactionRef string) (*PaymentRecord, error)

	AddActivity(ctx context.Context, entry *ActivityEntry) error
	GetRecentActivity(ctx context.Context, limit int) ([]*ActivityEntry, error)

	GetCanvasStats(ctx context.Context) (*CanvasStats, error)
}
