package tessera

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tessera-canvas/tessera/internal/config"
	"github.com/tessera-canvas/tessera/internal/metrics"
	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/pkg/apperrors"
	"github.com/tessera-canvas/tessera/pkg/logger"
	"github.com/tessera-canvas/tessera/pkg/validation"
)

// lamportsPerSol is the fixed chain denomination.
var lamportsPerSol = decimal.NewFromInt(1_000_000_000)

// CanvasCache is the optional read cache for the polling canvas endpoints.
type CanvasCache interface {
	GetRegions(ctx context.Context) ([]*models.Region, bool)
	SetRegions(ctx context.Context, regions []*models.Region)
	Invalidate(ctx context.Context)
}

// Tessera is the main struct for the canvas marketplace application.
// It contains all the necessary components and serves all business logic.
type Tessera struct {
	logger *logger.Logger
	config *config.Config

	repo     models.Repository
	oracle   models.PaymentOracle
	verifier models.SignatureVerifier
	cache    CanvasCache
}

// NewTessera creates a new Tessera instance. cache may be nil, in which case
// every read goes to the repository.
func NewTessera(
	repo models.Repository,
	oracle models.PaymentOracle,
	verifier models.SignatureVerifier,
	cache CanvasCache,
	logger *logger.Logger,
	config *config.Config,
) models.TesseraI {
	return &Tessera{
		repo:     repo,
		oracle:   oracle,
		verifier: verifier,
		cache:    cache,
		logger:   logger,
		config:   config,
	}
}

// IsAdmin reports whether the wallet is part of the configured admin set.
func (t *Tessera) IsAdmin(wallet string) bool {
	return t.config.IsAdminWallet(wallet)
}

// PriceFor returns the credit price for a region of the given area. Admin
// purchases use the reduced unit price; fractional totals round up.
func (t *Tessera) PriceFor(area int, isAdmin bool) int64 {
	unitPrice := t.config.UnitPriceNormal
	if isAdmin {
		unitPrice = t.config.UnitPriceAdmin
	}
	return decimal.NewFromInt(int64(area)).Mul(unitPrice).Ceil().IntPart()
}

// Purchase claims a region for a wallet. Validation and pricing happen here;
// the overlap check, debit and insert are one atomic repository operation.
func (t *Tessera) Purchase(ctx context.Context, req models.PurchaseRequest) (*models.PurchaseResult, error) {
	if err := validation.ValidateWalletAddress(req.Wallet); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "invalid wallet address", err)
	}
	if err := validation.ValidateRect(req.Area, t.config.CanvasSize, t.config.GridStep, t.config.MinRegionSize); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput, err.Error(), nil)
	}

	isAdmin := t.IsAdmin(req.Wallet)
	price := t.PriceFor(req.Area.Area(), isAdmin)

	region := &models.Region{
		ID:           uuid.NewString(),
		StartX:       req.Area.X,
		StartY:       req.Area.Y,
		Width:        req.Area.Width,
		Height:       req.Area.Height,
		OwnerWallet:  req.Wallet,
		PriceCharged: price,
		TxnSignature: newPurchaseSignature(),
		CreatedAt:    time.Now().Unix(),
	}

	newBalance, err := t.repo.PurchaseRegion(ctx, region)
	if err != nil {
		t.logger.Debug("Purchase rejected ", "wallet ", req.Wallet, "error ", err)
		return nil, err
	}

	t.logger.Info("Region purchased ", "wallet ", req.Wallet, "region ", region.ID, "price ", price, "balance ", newBalance)
	metrics.PurchasesTotal.Inc()
	metrics.PixelsSoldTotal.Add(float64(req.Area.Area()))

	t.recordActivity(ctx, &models.ActivityEntry{
		ID:            uuid.NewString(),
		Kind:          models.ActivityPurchase,
		WalletAddress: req.Wallet,
		RegionRef:     fmt.Sprintf("%d,%d", region.StartX, region.StartY),
		CreatedAt:     region.CreatedAt,
	})
	t.invalidateCache(ctx)

	return &models.PurchaseResult{
		RegionID:     region.ID,
		TxnSignature: region.TxnSignature,
		PriceCharged: price,
		NewBalance:   newBalance,
	}, nil
}

// UpdateRegion attaches content to an owned region. The caller proves control
// of the wallet through the signature collaborator; authorization then
// requires the wallet to own the region or be an admin.
func (t *Tessera) UpdateRegion(ctx context.Context, req models.UpdateRegionRequest) (*models.Region, error) {
	if err := validation.ValidateWalletAddress(req.Wallet); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "invalid wallet address", err)
	}

	if t.verifier != nil {
		if err := t.verifier.Verify(req.Wallet, req.SignedMessage, req.Signature); err != nil {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "signature verification failed", err)
		}
	}

	region, err := t.findRegion(ctx, req.RegionID, req.Area)
	if err != nil {
		return nil, err
	}

	if region.OwnerWallet != req.Wallet && !t.IsAdmin(req.Wallet) {
		return nil, apperrors.Newf(apperrors.CodeUnauthorized,
			"region at (%d, %d) is not owned by %s", region.StartX, region.StartY, req.Wallet)
	}

	if err := t.repo.UpdateRegionContent(ctx, region.ID, req.Content); err != nil {
		return nil, err
	}

	t.logger.Info("Region content updated ", "wallet ", req.Wallet, "region ", region.ID)
	t.recordActivity(ctx, &models.ActivityEntry{
		ID:            uuid.NewString(),
		Kind:          models.ActivityUpdate,
		WalletAddress: req.Wallet,
		RegionRef:     fmt.Sprintf("%d,%d", region.StartX, region.StartY),
		CreatedAt:     time.Now().Unix(),
	})
	t.invalidateCache(ctx)

	return t.repo.GetRegion(ctx, region.ID)
}

// Retract removes regions and refunds a fraction of the original price to
// each displaced owner. Admin-only; every removal is logged with the acting
// admin for accountability.
func (t *Tessera) Retract(ctx context.Context, req models.RetractRequest) (*models.RetractResult, error) {
	if err := validation.ValidateWalletAddress(req.AdminWallet); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "invalid admin wallet address", err)
	}
	if !t.IsAdmin(req.AdminWallet) {
		return nil, apperrors.Newf(apperrors.CodeUnauthorized, "wallet %s is not an admin", req.AdminWallet)
	}

	var regions []*models.Region
	switch {
	case req.RegionID != "":
		region, err := t.repo.GetRegion(ctx, req.RegionID)
		if err != nil {
			return nil, err
		}
		if region == nil {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "region %s not found", req.RegionID)
		}
		regions = []*models.Region{region}
	case req.Area != nil:
		var err error
		regions, err = t.repo.GetRegionsIntersecting(ctx, req.Area.X, req.Area.Y, req.Area.Width, req.Area.Height)
		if err != nil {
			return nil, err
		}
		if len(regions) == 0 {
			return nil, apperrors.Newf(apperrors.CodeNotFound,
				"no regions intersect area (%d, %d) %dx%d", req.Area.X, req.Area.Y, req.Area.Width, req.Area.Height)
		}
	default:
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "either region_id or area is required")
	}

	refunds := make([]models.RetractionRefund, 0, len(regions))
	var totalRefund int64
	for _, region := range regions {
		refund := decimal.NewFromInt(region.PriceCharged).Mul(t.config.RefundFraction).Floor().IntPart()
		refunds = append(refunds, models.RetractionRefund{
			RegionID:    region.ID,
			OwnerWallet: region.OwnerWallet,
			Refund:      refund,
		})
		totalRefund += refund
	}

	if err := t.repo.RetractRegions(ctx, refunds); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	for i, region := range regions {
		// Admin actions are trust-sensitive; log who retracted whose region.
		t.logger.Info("Region retracted ", "admin ", req.AdminWallet, "owner ", region.OwnerWallet,
			"region ", region.ID, "refund ", refunds[i].Refund)
		t.recordActivity(ctx, &models.ActivityEntry{
			ID:            uuid.NewString(),
			Kind:          models.ActivityRetract,
			WalletAddress: req.AdminWallet,
			SubjectWallet: region.OwnerWallet,
			RegionRef:     fmt.Sprintf("%d,%d", region.StartX, region.StartY),
			CreatedAt:     now,
		})
	}
	metrics.RetractionsTotal.Add(float64(len(regions)))
	t.invalidateCache(ctx)

	return &models.RetractResult{
		RegionsRemoved: len(regions),
		RefundCredits:  totalRefund,
	}, nil
}

func (t *Tessera) Regions(ctx context.Context) ([]*models.Region, error) {
	if t.cache != nil {
		if regions, ok := t.cache.GetRegions(ctx); ok {
			return regions, nil
		}
	}

	regions, err := t.repo.GetRegions(ctx)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		t.cache.SetRegions(ctx, regions)
	}
	return regions, nil
}

func (t *Tessera) RegionsByOwner(ctx context.Context, wallet string) ([]*models.Region, error) {
	if err := validation.ValidateWalletAddress(wallet); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "invalid wallet address", err)
	}
	return t.repo.GetRegionsByOwner(ctx, wallet)
}

func (t *Tessera) Balance(ctx context.Context, wallet string) (*models.CreditBalance, error) {
	if err := validation.ValidateWalletAddress(wallet); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "invalid wallet address", err)
	}
	return t.repo.GetBalance(ctx, wallet)
}

func (t *Tessera) SetDisplayName(ctx context.Context, wallet, name string) error {
	if err := validation.ValidateWalletAddress(wallet); err != nil {
		return apperrors.New(apperrors.CodeInvalidInput, "invalid wallet address", err)
	}
	if len(name) > 32 {
		return apperrors.Newf(apperrors.CodeInvalidInput, "display name must be at most 32 characters")
	}
	return t.repo.SetDisplayName(ctx, wallet, name)
}

func (t *Tessera) RecentActivity(ctx context.Context, limit int) ([]*models.ActivityEntry, error) {
	if limit <= 0 {
		limit = 5
	}
	return t.repo.GetRecentActivity(ctx, limit)
}

func (t *Tessera) Stats(ctx context.Context) (*models.CanvasStats, error) {
	return t.repo.GetCanvasStats(ctx)
}

// recordActivity appends a feed entry. The feed is presentation only, so
// failures are logged and swallowed.
func (t *Tessera) recordActivity(ctx context.Context, entry *models.ActivityEntry) {
	if err := t.repo.AddActivity(ctx, entry); err != nil {
		t.logger.Error("Failed to record activity ", "error ", err)
	}
}

func (t *Tessera) invalidateCache(ctx context.Context) {
	if t.cache != nil {
		t.cache.Invalidate(ctx)
	}
}

// newPurchaseSignature generates the synthetic reference stored with each
// credits purchase, mirroring the "credit_purchase_<ts>_<nonce>" shape the
// front end expects.
func newPurchaseSignature() string {
	return fmt.Sprintf("credit_purchase_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
