package http_api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/tessera-canvas/tessera/internal/config"
	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/internal/repository"
	"github.com/tessera-canvas/tessera/internal/tessera"
	"github.com/tessera-canvas/tessera/pkg/apperrors"
	"github.com/tessera-canvas/tessera/pkg/logger"
)

var testDBCounter int64

func testWallet(seed byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed
	}
	return base58.Encode(raw)
}

var (
	walletUser   = testWallet(1)
	walletOther  = testWallet(2)
	walletAdmin  = testWallet(3)
	treasuryAddr = testWallet(9)
)

type stubOracle struct {
	transactions map[string]*models.OracleTransaction
}

func (s *stubOracle) GetTransaction(_ context.Context, ref string) (*models.OracleTransaction, error) {
	tx, ok := s.transactions[ref]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeTransactionNotFound, "transaction %s not found", ref)
	}
	return tx, nil
}

// setupServer wires a full service over an in-memory database so handler
// tests exercise the real request path.
func setupServer(t *testing.T) (*HTTPServer, models.Repository) {
	t.Helper()

	counter := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:apitest%d?mode=memory&cache=shared", counter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo, err := repository.New(db, logger.NewNopLogger())
	require.NoError(t, err)

	cfg := &config.Config{
		CanvasSize:      1000,
		GridStep:        10,
		MinRegionSize:   10,
		UnitPriceNormal: decimal.NewFromInt(1),
		UnitPriceAdmin:  decimal.RequireFromString("0.1"),
		RefundFraction:  decimal.RequireFromString("0.5"),
		TreasuryAddress: treasuryAddr,
		CreditsPerSol:   decimal.NewFromInt(1_000_000),
		MinTopUpCredits: 1000,
		AdminWallets:    map[string]struct{}{walletAdmin: {}},
	}

	oracle := &stubOracle{transactions: map[string]*models.OracleTransaction{
		"txA": {
			Ref: "txA",
			Transfers: []models.TransferLeg{
				{From: walletUser, To: treasuryAddr, Lamports: 10_000_000},
			},
		},
	}}

	app := tessera.NewTessera(repo, oracle, nil, nil, logger.NewNopLogger(), cfg)
	server := NewHTTPServer(app, 0, logger.NewNopLogger()).(*HTTPServer)
	return server, repo
}

func doJSON(t *testing.T, s *HTTPServer, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

func fundWallet(t *testing.T, repo models.Repository, wallet string, credits int64) {
	t.Helper()
	_, err := repo.AdjustCredits(context.Background(), wallet, credits)
	require.NoError(t, err)
}

func TestPurchaseEndpoint(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		server, repo := setupServer(t)
		fundWallet(t, repo, walletUser, 100)

		recorder := doJSON(t, server, http.MethodPost, "/api/v1/purchase", gin.H{
			"wallet": walletUser,
			"region": gin.H{"x": 0, "y": 0, "width": 10, "height": 10},
		})
		require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

		var resp PurchaseResponse
		decodeBody(t, recorder, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(100), resp.PriceCharged)
		assert.Equal(t, int64(0), resp.NewCreditsBalance)
		assert.NotEmpty(t, resp.RegionID)
	})

	t.Run("conflict on occupied region", func(t *testing.T) {
		server, repo := setupServer(t)
		fundWallet(t, repo, walletUser, 100)
		fundWallet(t, repo, walletOther, 100)

		body := gin.H{"wallet": walletUser, "region": gin.H{"x": 0, "y": 0, "width": 10, "height": 10}}
		require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/api/v1/purchase", body).Code)

		body["wallet"] = walletOther
		recorder := doJSON(t, server, http.MethodPost, "/api/v1/purchase", body)
		require.Equal(t, http.StatusConflict, recorder.Code)

		var resp map[string]any
		decodeBody(t, recorder, &resp)
		assert.Equal(t, apperrors.CodeConflict, resp["code"])
		assert.Equal(t, false, resp["success"])
	})

	t.Run("insufficient credits is a bad request", func(t *testing.T) {
		server, _ := setupServer(t)

		recorder := doJSON(t, server, http.MethodPost, "/api/v1/purchase", gin.H{
			"wallet": walletUser,
			"region": gin.H{"x": 0, "y": 0, "width": 10, "height": 10},
		})
		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var resp map[string]any
		decodeBody(t, recorder, &resp)
		assert.Equal(t, apperrors.CodeInsufficientCredits, resp["code"])
	})

	t.Run("malformed body", func(t *testing.T) {
		server, _ := setupServer(t)

		recorder := doJSON(t, server, http.MethodPost, "/api/v1/purchase", gin.H{"wallet": walletUser})
		require.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestVerifyPaymentEndpoint(t *testing.T) {
	server, _ := setupServer(t)

	body := gin.H{"tx_ref": "txA", "wallet": walletUser}

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/payments/verify", body)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp VerifyPaymentResponse
	decodeBody(t, recorder, &resp)
	assert.Equal(t, int64(10_000), resp.CreditsGranted)
	assert.Equal(t, int64(10_000), resp.NewCreditsBalance)

	// Replaying the same proof is a conflict.
	recorder = doJSON(t, server, http.MethodPost, "/api/v1/payments/verify", body)
	require.Equal(t, http.StatusConflict, recorder.Code)

	// Unknown transactions are not found.
	recorder = doJSON(t, server, http.MethodPost, "/api/v1/payments/verify", gin.H{"tx_ref": "txZ", "wallet": walletUser})
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestUpdateRegionEndpoint(t *testing.T) {
	server, repo := setupServer(t)
	fundWallet(t, repo, walletUser, 100)

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/purchase", gin.H{
		"wallet": walletUser,
		"region": gin.H{"x": 0, "y": 0, "width": 10, "height": 10},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var purchase PurchaseResponse
	decodeBody(t, recorder, &purchase)

	update := gin.H{
		"wallet":         walletUser,
		"region_id":      purchase.RegionID,
		"image_url":      "https://blobs.example/tile.png",
		"signed_message": "update",
		"signature":      base58.Encode([]byte("sig")),
	}
	recorder = doJSON(t, server, http.MethodPost, "/api/v1/regions/update", update)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	// A different wallet cannot touch the region.
	update["wallet"] = walletOther
	recorder = doJSON(t, server, http.MethodPost, "/api/v1/regions/update", update)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	// Signatures must be base58.
	update["wallet"] = walletUser
	update["signature"] = "not-base58-0OIl"
	recorder = doJSON(t, server, http.MethodPost, "/api/v1/regions/update", update)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRetractEndpoint(t *testing.T) {
	server, repo := setupServer(t)
	fundWallet(t, repo, walletUser, 100)

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/purchase", gin.H{
		"wallet": walletUser,
		"region": gin.H{"x": 0, "y": 0, "width": 10, "height": 10},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var purchase PurchaseResponse
	decodeBody(t, recorder, &purchase)

	// Non-admin wallets are rejected.
	recorder = doJSON(t, server, http.MethodPost, "/api/v1/retract", gin.H{
		"admin_wallet": walletOther,
		"region_id":    purchase.RegionID,
	})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doJSON(t, server, http.MethodPost, "/api/v1/retract", gin.H{
		"admin_wallet": walletAdmin,
		"region_id":    purchase.RegionID,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp RetractResponse
	decodeBody(t, recorder, &resp)
	assert.Equal(t, 1, resp.RegionsRemoved)
	assert.Equal(t, int64(50), resp.RefundCredits)
}

func TestReadEndpoints(t *testing.T) {
	server, repo := setupServer(t)
	fundWallet(t, repo, walletUser, 1000)

	for _, origin := range [][2]int{{0, 0}, {20, 0}} {
		recorder := doJSON(t, server, http.MethodPost, "/api/v1/purchase", gin.H{
			"wallet": walletUser,
			"region": gin.H{"x": origin[0], "y": origin[1], "width": 10, "height": 10},
		})
		require.Equal(t, http.StatusCreated, recorder.Code)
	}

	t.Run("regions", func(t *testing.T) {
		recorder := doJSON(t, server, http.MethodGet, "/api/v1/regions", nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp struct {
			Regions []*models.Region `json:"regions"`
		}
		decodeBody(t, recorder, &resp)
		assert.Len(t, resp.Regions, 2)
	})

	t.Run("owned regions require a wallet", func(t *testing.T) {
		recorder := doJSON(t, server, http.MethodGet, "/api/v1/regions/owned", nil)
		require.Equal(t, http.StatusBadRequest, recorder.Code)

		recorder = doJSON(t, server, http.MethodGet, "/api/v1/regions/owned?wallet="+walletUser, nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp struct {
			Regions []*models.Region `json:"regions"`
		}
		decodeBody(t, recorder, &resp)
		assert.Len(t, resp.Regions, 2)
	})

	t.Run("balance", func(t *testing.T) {
		recorder := doJSON(t, server, http.MethodGet, "/api/v1/balance?wallet="+walletUser, nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var balance models.CreditBalance
		decodeBody(t, recorder, &balance)
		assert.Equal(t, int64(800), balance.Credits)
	})

	t.Run("activity respects the limit", func(t *testing.T) {
		recorder := doJSON(t, server, http.MethodGet, "/api/v1/activity?limit=1", nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp struct {
			Activity []*models.ActivityEntry `json:"activity"`
		}
		decodeBody(t, recorder, &resp)
		assert.Len(t, resp.Activity, 1)

		recorder = doJSON(t, server, http.MethodGet, "/api/v1/activity?limit=0", nil)
		require.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("stats", func(t *testing.T) {
		recorder := doJSON(t, server, http.MethodGet, "/api/v1/stats", nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var stats models.CanvasStats
		decodeBody(t, recorder, &stats)
		assert.Equal(t, int64(200), stats.PixelsSold)
		assert.Equal(t, int64(2), stats.RegionCount)
	})

	t.Run("healthz", func(t *testing.T) {
		recorder := doJSON(t, server, http.MethodGet, "/healthz", nil)
		require.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestProfileEndpoint(t *testing.T) {
	server, _ := setupServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/profile", gin.H{
		"wallet":       walletUser,
		"display_name": "mosaicist",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, server, http.MethodGet, "/api/v1/balance?wallet="+walletUser, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var balance models.CreditBalance
	decodeBody(t, recorder, &balance)
	assert.Equal(t, "mosaicist", balance.DisplayName)

	// Binding caps the name length before the service sees it.
	recorder = doJSON(t, server, http.MethodPost, "/api/v1/profile", gin.H{
		"wallet":       walletUser,
		"display_name": "a display name that is well over the thirty-two character cap",
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCORSPreflight(t *testing.T) {
	server, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/regions", nil)
	recorder := httptest.NewRecorder()
	server.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}

