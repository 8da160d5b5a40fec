package http_api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"

	"github.com/tessera-canvas/tessera/internal/metrics"
	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/pkg/apperrors"
	"github.com/tessera-canvas/tessera/pkg/validation"
)

// PurchaseRequest represents the JSON body for claiming a region
type PurchaseRequest struct {
	Region validation.Rect `json:"region" binding:"required"`
	Wallet string          `json:"wallet" binding:"required"`
}

// PurchaseResponse represents the success response for a purchase
type PurchaseResponse struct {
	Success           bool   `json:"success"`
	RegionID          string `json:"region_id"`
	TxnSignature      string `json:"txn_signature"`
	PriceCharged      int64  `json:"price_charged"`
	NewCreditsBalance int64  `json:"new_credits_balance"`
}

// UpdateRegionRequest represents the JSON body for attaching content to a
// region. The region is addressed by ID or by its rectangle; the signature
// is base58 over the signed message.
type UpdateRegionRequest struct {
	Wallet        string           `json:"wallet" binding:"required"`
	RegionID      string           `json:"region_id"`
	Region        *validation.Rect `json:"region"`
	ImageURL      *string          `json:"image_url"`
	LinkURL       *string          `json:"link_url"`
	AltText       *string          `json:"alt_text"`
	SignedMessage string           `json:"signed_message" binding:"required"`
	Signature     string           `json:"signature" binding:"required"`
}

// VerifyPaymentRequest represents the JSON body for a top-up verification
type VerifyPaymentRequest struct {
	TxRef  string `json:"tx_ref" binding:"required"`
	Wallet string `json:"wallet" binding:"required"`
}

// VerifyPaymentResponse represents the success response for a verified payment
type VerifyPaymentResponse struct {
	Success           bool  `json:"success"`
	CreditsGranted    int64 `json:"credits_granted"`
	NewCreditsBalance int64 `json:"new_credits_balance"`
}

// RetractRequest represents the JSON body for an admin retraction
type RetractRequest struct {
	AdminWallet string           `json:"admin_wallet" binding:"required"`
	RegionID    string           `json:"region_id"`
	Area        *validation.Rect `json:"area"`
}

// RetractResponse represents the success response for a retraction
type RetractResponse struct {
	Success        bool  `json:"success"`
	RegionsRemoved int   `json:"regions_removed"`
	RefundCredits  int64 `json:"refund_credits"`
}

// ProfileRequest represents the JSON body for setting a display name
type ProfileRequest struct {
	Wallet      string `json:"wallet" binding:"required"`
	DisplayName string `json:"display_name" binding:"required,max=32"`
}

// VisitorRequest represents the JSON body for visitor liveness pings
type VisitorRequest struct {
	Active bool `json:"active"`
}

// statusForCode maps the stable error taxonomy onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case apperrors.CodeInvalidInput, apperrors.CodeBelowMinimum, apperrors.CodeInsufficientCredits:
		return http.StatusBadRequest
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeNotFound, apperrors.CodeTransactionNotFound:
		return http.StatusNotFound
	case apperrors.CodeConflict, apperrors.CodeAlreadyProcessed:
		return http.StatusConflict
	case apperrors.CodeTransactionFailed, apperrors.CodeTransferNotFound:
		return http.StatusUnprocessableEntity
	case apperrors.CodeOracleUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the structured error body. Internals of unclassified
// errors are logged, never echoed to the client.
func (s *HTTPServer) respondError(c *gin.Context, err error) {
	code := apperrors.Code(err)
	if code == apperrors.CodePersistenceFailure {
		s.logger.Error("Request failed ", "path ", c.FullPath(), "error ", err)
	}
	c.JSON(statusForCode(code), gin.H{
		"success": false,
		"code":    code,
		"error":   apperrors.UserMessage(err),
	})
}

// purchase is a handler for the /purchase endpoint.
func (s *HTTPServer) purchase(c *gin.Context) {
	var req PurchaseRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"code":    apperrors.CodeInvalidInput,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	result, err := s.tessera.Purchase(c.Request.Context(), models.PurchaseRequest{
		Area:   req.Region,
		Wallet: req.Wallet,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, PurchaseResponse{
		Success:           true,
		RegionID:          result.RegionID,
		TxnSignature:      result.TxnSignature,
		PriceCharged:      result.PriceCharged,
		NewCreditsBalance: result.NewBalance,
	})
}

// updateRegion is a handler for the /regions/update endpoint.
func (s *HTTPServer) updateRegion(c *gin.Context) {
	var req UpdateRegionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"code":    apperrors.CodeInvalidInput,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	signature, err := base58.Decode(req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"code":    apperrors.CodeInvalidInput,
			"error":   "Invalid signature encoding: " + err.Error(),
		})
		return
	}

	region, err := s.tessera.UpdateRegion(c.Request.Context(), models.UpdateRegionRequest{
		Wallet:   req.Wallet,
		RegionID: req.RegionID,
		Area:     req.Region,
		Content: models.RegionContent{
			ImageURL: req.ImageURL,
			LinkURL:  req.LinkURL,
			AltText:  req.AltText,
		},
		SignedMessage: []byte(req.SignedMessage),
		Signature:     signature,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "region": region})
}

// verifyPayment is a handler for the /payments/verify endpoint.
func (s *HTTPServer) verifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"code":    apperrors.CodeInvalidInput,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	result, err := s.tessera.VerifyPayment(c.Request.Context(), req.TxRef, req.Wallet)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyPaymentResponse{
		Success:           true,
		CreditsGranted:    result.CreditsGranted,
		NewCreditsBalance: result.NewBalance,
	})
}

// retract is a handler for the /retract endpoint. Admin-only.
func (s *HTTPServer) retract(c *gin.Context) {
	var req RetractRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"code":    apperrors.CodeInvalidInput,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	result, err := s.tessera.Retract(c.Request.Context(), models.RetractRequest{
		AdminWallet: req.AdminWallet,
		RegionID:    req.RegionID,
		Area:        req.Area,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RetractResponse{
		Success:        true,
		RegionsRemoved: result.RegionsRemoved,
		RefundCredits:  result.RefundCredits,
	})
}

// setProfile is a handler for the /profile endpoint.
func (s *HTTPServer) setProfile(c *gin.Context) {
	var req ProfileRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"code":    apperrors.CodeInvalidInput,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	if err := s.tessera.SetDisplayName(c.Request.Context(), req.Wallet, req.DisplayName); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// visitorPing tracks browsers entering and leaving the canvas page.
func (s *HTTPServer) visitorPing(c *gin.Context) {
	var req VisitorRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "code": apperrors.CodeInvalidInput, "error": "invalid payload"})
		return
	}

	if req.Active {
		metrics.ActiveVisitors.Inc()
	} else {
		metrics.ActiveVisitors.Dec()
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// listRegions is a handler for the /regions endpoint. The canvas UI polls it
// to pick up other users' changes.
func (s *HTTPServer) listRegions(c *gin.Context) {
	regions, err := s.tessera.Regions(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

// listOwnedRegions is a handler for the /regions/owned endpoint.
func (s *HTTPServer) listOwnedRegions(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "code": apperrors.CodeInvalidInput, "error": "wallet is required"})
		return
	}

	regions, err := s.tessera.RegionsByOwner(c.Request.Context(), wallet)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

// getBalance is a handler for the /balance endpoint.
func (s *HTTPServer) getBalance(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "code": apperrors.CodeInvalidInput, "error": "wallet is required"})
		return
	}

	balance, err := s.tessera.Balance(c.Request.Context(), wallet)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// recentActivity is a handler for the /activity endpoint.
func (s *HTTPServer) recentActivity(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "code": apperrors.CodeInvalidInput, "error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	entries, err := s.tessera.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

// stats is a handler for the /stats endpoint.
func (s *HTTPServer) stats(c *gin.Context) {
	stats, err := s.tessera.Stats(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *HTTPServer) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
