package tessera

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tessera-canvas/tessera/internal/metrics"
	"github.com/tessera-canvas/tessera/internal/models"
	"github.com/tessera-canvas/tessera/pkg/apperrors"
	"github.com/tessera-canvas/tessera/pkg/validation"
)

// VerifyPayment reconciles an external payment proof into a one-time credit
// grant. The early replay check is a fast path only; the real guard is the
// unique transaction_ref index applied together with the balance increment
// inside RecordPayment, which closes the race between check and commit.
func (t *Tessera) VerifyPayment(ctx context.Context, txRef, wallet string) (*models.PaymentResult, error) {
	txRef = strings.TrimSpace(txRef)
	if txRef == "" {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "transaction signature is required")
	}
	if err := validation.ValidateWalletAddress(wallet); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "invalid wallet address", err)
	}

	existing, err := t.repo.GetPayment(ctx, txRef)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Newf(apperrors.CodeAlreadyProcessed, "transaction %s already processed", txRef)
	}

	tx, err := t.oracle.GetTransaction(ctx, txRef)
	if err != nil {
		t.logger.Warn("Oracle lookup failed ", "tx ", txRef, "error ", err)
		return nil, err
	}
	if tx.Failed {
		return nil, apperrors.Newf(apperrors.CodeTransactionFailed, "transaction %s failed on chain", txRef)
	}

	var lamports int64
	for _, transfer := range tx.Transfers {
		if transfer.From == wallet && transfer.To == t.config.TreasuryAddress {
			lamports += transfer.Lamports
		}
	}
	if lamports <= 0 {
		return nil, apperrors.Newf(apperrors.CodeTransferNotFound,
			"no transfer from %s to the treasury found in %s", wallet, txRef)
	}

	credits := t.CreditsForLamports(lamports)
	if credits < t.config.MinTopUpCredits {
		return nil, apperrors.Newf(apperrors.CodeBelowMinimum,
			"transfer grants %d credits, minimum is %d", credits, t.config.MinTopUpCredits)
	}

	newBalance, err := t.repo.RecordPayment(ctx, &models.PaymentRecord{
		TransactionRef: txRef,
		WalletAddress:  wallet,
		AmountLamports: lamports,
		CreditsGranted: credits,
		Status:         models.PaymentStatusVerified,
		CreatedAt:      time.Now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("Payment verified ", "wallet ", wallet, "tx ", txRef, "credits ", credits)
	metrics.PaymentsVerifiedTotal.Inc()
	metrics.CreditsGrantedTotal.Add(float64(credits))

	return &models.PaymentResult{
		CreditsGranted: credits,
		NewBalance:     newBalance,
	}, nil
}

// CreditsForLamports converts a verified transfer amount into credits,
// rounding down: credits = floor(sol * creditsPerSol).
func (t *Tessera) CreditsForLamports(lamports int64) int64 {
	return decimal.NewFromInt(lamports).
		Div(lamportsPerSol).
		Mul(t.config.CreditsPerSol).
		Floor().
		IntPart()
}
