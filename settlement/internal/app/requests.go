package app

import (
	"custody/settlement/internal/domain"

	"github.com/go-playground/validator/v10"
)

type ReqProvision struct {
	UserID string `json:"user_id" validate:"required"`
}

type ReqGetWallet struct {
	UserID  string `json:"user_id" validate:"required"`
	Network string `json:"network" validate:"omitempty,network"`
}

type ReqSend struct {
	UserID    string `json:"user_id" validate:"required"`
	Network   string `json:"network" validate:"required,network"`
	ToAddress string `json:"to_address" validate:"required,max=128"`
	Amount    string `json:"amount" validate:"required,amount"`
	Override  bool   `json:"override"`
}

type ReqBridge struct {
	UserID      string `json:"user_id" validate:"required"`
	FromNetwork string `json:"from_network" validate:"required,network"`
	ToNetwork   string `json:"to_network" validate:"required,network"`
	Amount      string `json:"amount" validate:"required,amount"`
}

type ReqMint struct {
	Network string `json:"network" validate:"required,network"`
	Address string `json:"address" validate:"required,max=128"`
}

type ReqFreeze struct {
	UserID   string `json:"user_id" validate:"required_without=WalletID"`
	WalletID uint   `json:"wallet_id"`
}

type ReqGetTransaction struct {
	Reference string `json:"reference" validate:"required"`
}

type ReqListTransactions struct {
	UserID string `json:"user_id" validate:"required"`
	Limit  int    `json:"limit" validate:"gte=0,lte=500"`
}

// Response wraps every reply. Code is domain.ErrorCode of the failure.
type Response struct {
	Ok    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("network", validateNetwork)
	v.RegisterValidation("amount", validateAmount)
	return v
}

func validateNetwork(fl validator.FieldLevel) bool {
	return !domain.StrToNetwork(fl.Field().String()).IsNone()
}

func validateAmount(fl validator.FieldLevel) bool {
	_, err := parseAmount(fl.Field().String())
	return err == nil
}
