package domain

import (
	"errors"
	"fmt"
)

const (
	ErrMsgInvalidAmount       = "amount must be positive"
	ErrMsgAmountPrecision     = "amount has more than %d decimal places"
	ErrMsgInvalidAddress      = "invalid %s address"
	ErrMsgParamsUnknownNet    = "unknown network: %s"
	ErrMsgSameNetwork         = "source and destination networks are equal"
	ErrMsgSelfTransfer        = "cannot send to own address"
	ErrMsgNetworkInactive     = "network %s is not active on this wallet"
	ErrMsgMintNotEvm          = "mint is only supported on evm networks"
	ErrMsgInsufficientParams  = "insufficient balance. available: %s, required: %s"
	ErrMsgEmptyUserID         = "user id is empty"
	ErrMsgNetworkNotConnected = "network %s is not connected"
)

var (
	ErrValidation                = errors.New("validation error")
	ErrInsufficientBalance       = errors.New("insufficient balance")
	ErrWalletFrozen              = errors.New("wallet is frozen")
	ErrRecipientFrozen           = errors.New("recipient wallet is frozen")
	ErrWalletNotFound            = errors.New("wallet not found")
	ErrWalletAlreadyExists       = errors.New("wallet already exists")
	ErrUserNotFound              = errors.New("user not found")
	ErrUnknownNetwork            = errors.New("unknown network")
	ErrNetworkUnavailable        = errors.New("network unavailable")
	ErrFundingNetworkUnavailable = errors.New("funding network unavailable")
	ErrTransientConflict         = errors.New("transient conflict")
	ErrSettlementFailed          = errors.New("settlement failed")
	ErrTransactionNotFound       = errors.New("transaction not found")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrValidation, "validation_error"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrWalletFrozen, "wallet_frozen"},
	{ErrRecipientFrozen, "recipient_frozen"},
	{ErrWalletNotFound, "wallet_not_found"},
	{ErrWalletAlreadyExists, "wallet_already_exists"},
	{ErrUserNotFound, "user_not_found"},
	{ErrUnknownNetwork, "unknown_network"},
	{ErrFundingNetworkUnavailable, "funding_network_unavailable"},
	{ErrNetworkUnavailable, "network_unavailable"},
	{ErrSettlementFailed, "settlement_failed"},
	{ErrTransientConflict, "transient_conflict"},
	{ErrTransactionNotFound, "transaction_not_found"},
}

// ErrorCode maps err to a stable code for transport responses.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal_error"
}
