package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"custody/pkg/utils"

	"github.com/nats-io/nats.go"
)

type ReqUserExists struct {
	UserID string `json:"user_id"`
}

type ResUserExists struct {
	Exists bool `json:"exists"`
}

// Users asks the identity service whether a user exists.
type Users struct {
	nc       *nats.Conn
	subject  string
	timeout  time.Duration
	attempts int
}

func NewUsers(nc *nats.Conn, subject string, timeout time.Duration) *Users {
	return &Users{nc: nc, subject: subject, timeout: timeout, attempts: 4}
}

func (u *Users) Exists(ctx context.Context, userID string) (bool, error) {
	data, err := json.Marshal(ReqUserExists{UserID: userID})
	if err != nil {
		return false, err
	}

	resp, err := u.request(ctx, data)
	if err != nil {
		return false, fmt.Errorf("user directory: %w", err)
	}

	res, err := utils.Unmarshal[ResUserExists](resp)
	if err != nil {
		return false, fmt.Errorf("user directory: %w", err)
	}
	return res.Exists, nil
}

// request retries timeouts; no responders fails at once.
func (u *Users) request(ctx context.Context, data []byte) ([]byte, error) {
	var err error

	for range u.attempts {
		rctx, cancel := context.WithTimeout(ctx, u.timeout)
		var msg *nats.Msg
		msg, err = u.nc.RequestWithContext(rctx, u.subject, data)
		cancel()

		if err == nil {
			return msg.Data, nil
		}
		if errors.Is(err, nats.ErrNoResponders) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, err
}
