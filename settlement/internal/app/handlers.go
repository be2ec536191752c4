package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"custody/pkg/utils"
	"custody/settlement/internal/domain"
	natsinfra "custody/settlement/internal/infra/nats"
	"custody/settlement/internal/logger"
	"custody/settlement/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
)

// Handler serves the engine operations over nats request/reply.
type Handler struct {
	services *service.Services
	validate *validator.Validate
	timeout  time.Duration
	l        *slog.Logger
}

func NewHandler(services *service.Services, timeout time.Duration, l *slog.Logger) *Handler {
	return &Handler{services: services, validate: newValidator(), timeout: timeout, l: l}
}

func (h *Handler) natsCoreHandler(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := msg.Respond(h.Dispatch(ctx, msg.Subject, msg.Data)); err != nil {
		h.l.Warn("respond failed", "subject", msg.Subject, "error", err)
	}
}

// Dispatch runs the operation named by subject and returns the encoded Response.
func (h *Handler) Dispatch(ctx context.Context, subject string, data []byte) []byte {
	var (
		res any
		err error
	)

	switch subject {
	case natsinfra.SubjPing.String():
		res = "pong"
	case natsinfra.SubjProvision.String():
		res, err = handle(h, data, func(r *ReqProvision) (any, error) {
			return h.services.Provisioner.Provision(ctx, r.UserID)
		})
	case natsinfra.SubjGetWallet.String():
		res, err = handle(h, data, func(r *ReqGetWallet) (any, error) {
			return h.services.Wallets.Get(ctx, r.UserID, domain.StrToNetwork(r.Network))
		})
	case natsinfra.SubjSend.String():
		res, err = handle(h, data, func(r *ReqSend) (any, error) {
			amount, err := parseAmount(r.Amount)
			if err != nil {
				return nil, err
			}
			return h.services.Settlement.SendToken(ctx, service.SendRequest{
				UserID:    r.UserID,
				Network:   domain.StrToNetwork(r.Network),
				ToAddress: r.ToAddress,
				Amount:    amount,
				Override:  r.Override,
			})
		})
	case natsinfra.SubjBridge.String():
		res, err = handle(h, data, func(r *ReqBridge) (any, error) {
			amount, err := parseAmount(r.Amount)
			if err != nil {
				return nil, err
			}
			return h.services.Bridge.BridgeToken(ctx, r.UserID, domain.StrToNetwork(r.FromNetwork), domain.StrToNetwork(r.ToNetwork), amount)
		})
	case natsinfra.SubjMint.String():
		res, err = handle(h, data, func(r *ReqMint) (any, error) {
			return h.services.Mint.MintTest(ctx, domain.StrToNetwork(r.Network), r.Address)
		})
	case natsinfra.SubjFreeze.String(), natsinfra.SubjUnfreeze.String():
		frozen := subject == natsinfra.SubjFreeze.String()
		res, err = handle(h, data, func(r *ReqFreeze) (any, error) {
			return map[string]bool{"is_frozen": frozen}, h.freeze(ctx, r, frozen)
		})
	case natsinfra.SubjGetTransaction.String():
		res, err = handle(h, data, func(r *ReqGetTransaction) (any, error) {
			return h.services.Transactions.Get(ctx, r.Reference)
		})
	case natsinfra.SubjListTransactions.String():
		res, err = handle(h, data, func(r *ReqListTransactions) (any, error) {
			return h.services.Transactions.List(ctx, r.UserID, r.Limit)
		})
	default:
		err = domain.Validationf("unknown subject: %s", subject)
	}

	if err != nil {
		code := domain.ErrorCode(err)
		logger.TemplRequestError(h.l, subject, code, err)
		return utils.MustMarshal(Response{Code: code, Error: err.Error()})
	}
	return utils.MustMarshal(Response{Ok: true, Data: res})
}

func (h *Handler) freeze(ctx context.Context, r *ReqFreeze, frozen bool) error {
	switch {
	case r.WalletID != 0 && frozen:
		return h.services.Freeze.FreezeByID(ctx, r.WalletID)
	case r.WalletID != 0:
		return h.services.Freeze.UnfreezeByID(ctx, r.WalletID)
	case frozen:
		return h.services.Freeze.FreezeWallet(ctx, r.UserID)
	default:
		return h.services.Freeze.UnfreezeWallet(ctx, r.UserID)
	}
}

// handle decodes and validates the request before calling fn.
func handle[Req any](h *Handler, data []byte, fn func(r *Req) (any, error)) (any, error) {
	req, err := utils.Unmarshal[Req](data)
	if err != nil {
		return nil, domain.Validationf("bad request: %s", err)
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, domain.Validationf("invalid field %s (%s)", verrs[0].Field(), verrs[0].Tag())
		}
		return nil, domain.Validationf("%s", err)
	}

	return fn(req)
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.Validationf(domain.ErrMsgInvalidAmount)
	}
	return d, nil
}
