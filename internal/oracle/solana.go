// Package oracle implements the payment oracle against a Solana-style JSON-RPC
// endpoint. Given a transaction signature it returns the confirmed transfer
// legs, which the service matches against the treasury address.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tessera-canvas/tessera/internal/config"
	"github.com/tessera-canvas/tessera/internal/metrics"
	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/pkg/apperrors"
	"github.com/tessera-canvas/tessera/pkg/logger"
)

type SolanaOracle struct {
	logger *logger.Logger

	endpoints []string
	client    *http.Client
}

// NewSolanaOracle creates an oracle that tries the configured RPC endpoints
// in order. Each attempt is bounded by the configured timeout.
func NewSolanaOracle(cfg *config.Config, logger *logger.Logger) *SolanaOracle {
	return &SolanaOracle{
		logger:    logger,
		endpoints: cfg.OracleEndpoints,
		client:    &http.Client{Timeout: cfg.OracleTimeout},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Error  *rpcError       `json:"error"`
	Result *rpcTransaction `json:"result"`
}

type rpcTransaction struct {
	Meta *struct {
		Err          interface{} `json:"err"`
		Fee          int64       `json:"fee"`
		PreBalances  []int64     `json:"preBalances"`
		PostBalances []int64     `json:"postBalances"`
	} `json:"meta"`
	Transaction struct {
		Message struct {
			AccountKeys []string `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
}

// GetTransaction looks up a confirmed transaction. Endpoints are tried in
// sequence: an unreachable endpoint falls through to the next one, a missing
// transaction falls through too (the node may lag), and only a confirmed
// result short-circuits. With every endpoint exhausted the last definitive
// answer wins.
func (o *SolanaOracle) GetTransaction(ctx context.Context, txRef string) (*models.OracleTransaction, error) {
	notFound := false
	for _, endpoint := range o.endpoints {
		tx, err := o.getTransactionFrom(ctx, endpoint, txRef)
		if err != nil {
			if errorsIsCode(err, apperrors.CodeTransactionNotFound) {
				notFound = true
				continue
			}
			o.logger.Warn("Oracle endpoint failed ", "endpoint ", endpoint, "error ", err)
			continue
		}
		metrics.OracleRequestsTotal.WithLabelValues("ok").Inc()
		return tx, nil
	}

	if notFound {
		metrics.OracleRequestsTotal.WithLabelValues("not_found").Inc()
		return nil, apperrors.Newf(apperrors.CodeTransactionNotFound, "transaction %s not found", txRef)
	}
	metrics.OracleRequestsTotal.WithLabelValues("unavailable").Inc()
	return nil, apperrors.Newf(apperrors.CodeOracleUnavailable, "all %d oracle endpoints failed", len(o.endpoints))
}

func (o *SolanaOracle) getTransactionFrom(ctx context.Context, endpoint, txRef string) (*models.OracleTransaction, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getTransaction",
		Params: []interface{}{
			txRef,
			map[string]interface{}{
				"encoding":                       "json",
				"commitment":                     "confirmed",
				"maxSupportedTransactionVersion": 0,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode RPC request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build RPC request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("RPC endpoint returned status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode RPC response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, apperrors.Newf(apperrors.CodeTransactionNotFound,
			"transaction lookup failed: %s", rpcResp.Error.Message)
	}
	if rpcResp.Result == nil || rpcResp.Result.Meta == nil {
		return nil, apperrors.Newf(apperrors.CodeTransactionNotFound, "transaction %s not found", txRef)
	}

	return decodeTransaction(txRef, rpcResp.Result), nil
}

// decodeTransaction derives transfer legs from the per-account balance
// deltas. Account zero is the fee payer and signer of a simple transfer, so
// every gaining account is credited from it; the fee itself never shows up
// as a gain and is ignored.
func decodeTransaction(txRef string, tx *rpcTransaction) *models.OracleTransaction {
	out := &models.OracleTransaction{
		Ref:    txRef,
		Failed: tx.Meta.Err != nil,
		Fee:    tx.Meta.Fee,
	}

	keys := tx.Transaction.Message.AccountKeys
	if len(keys) == 0 || len(tx.Meta.PreBalances) != len(keys) || len(tx.Meta.PostBalances) != len(keys) {
		return out
	}

	sender := keys[0]
	for i, key := range keys {
		delta := tx.Meta.PostBalances[i] - tx.Meta.PreBalances[i]
		if delta > 0 && key != sender {
			out.Transfers = append(out.Transfers, models.TransferLeg{
				From:     sender,
				To:       key,
				Lamports: delta,
			})
		}
	}

	return out
}

func errorsIsCode(err error, code string) bool {
	return apperrors.Code(err) == code
}
