// Package apperrors defines the stable error taxonomy shared by the service
// and the HTTP layer. Every failure that crosses an API boundary carries one
// of these codes so clients can branch on the kind without parsing messages.
package apperrors

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	CodeConflict            = "CONFLICT"
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyProcessed    = "ALREADY_PROCESSED"
	CodeOracleUnavailable   = "ORACLE_UNAVAILABLE"
	CodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	CodeTransactionFailed   = "TRANSACTION_FAILED"
	CodeTransferNotFound    = "TRANSFER_NOT_FOUND"
	CodeBelowMinimum        = "BELOW_MINIMUM"
	CodePersistenceFailure  = "PERSISTENCE_FAILURE"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by code, so sentinel comparisons like
// errors.Is(err, apperrors.ErrInsufficientCredits) work regardless of the
// wrapped cause or message.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if !errors.As(target, &appErr) {
		return false
	}
	return e.Code == appErr.Code
}

func New(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func Newf(code string, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is checks. Call sites that need a specific message
// build their own AppError with the same code.
var (
	ErrInvalidInput        = &AppError{Code: CodeInvalidInput, Message: "invalid input"}
	ErrUnauthorized        = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrInsufficientCredits = &AppError{Code: CodeInsufficientCredits, Message: "insufficient credits"}
	ErrConflict            = &AppError{Code: CodeConflict, Message: "region overlaps existing blocks"}
	ErrNotFound            = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyProcessed    = &AppError{Code: CodeAlreadyProcessed, Message: "transaction already processed"}
	ErrOracleUnavailable   = &AppError{Code: CodeOracleUnavailable, Message: "payment oracle unavailable"}
	ErrTransactionNotFound = &AppError{Code: CodeTransactionNotFound, Message: "transaction not found"}
	ErrTransactionFailed   = &AppError{Code: CodeTransactionFailed, Message: "transaction failed on chain"}
	ErrTransferNotFound    = &AppError{Code: CodeTransferNotFound, Message: "no matching transfer to treasury"}
	ErrBelowMinimum        = &AppError{Code: CodeBelowMinimum, Message: "transfer below minimum amount"}
	ErrPersistenceFailure  = &AppError{Code: CodePersistenceFailure, Message: "storage failure"}
)

// Code extracts the taxonomy code from err, or PERSISTENCE_FAILURE when the
// error does not carry one (unexpected internal failures map to a 500).
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodePersistenceFailure
}

// UserMessage returns the human-readable message for err without leaking
// wrapped internals for unclassified errors.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}
