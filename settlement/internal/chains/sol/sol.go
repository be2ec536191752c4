package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
)

type Client struct {
	rpc *rpc.Client
	url string
}

func Connect(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		url = rpc.DevNet_RPC
	}

	c := &Client{rpc: rpc.New(url), url: url}
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) Ping(ctx context.Context) error {
	health, err := c.rpc.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("solana health: %w", err)
	}
	if health != rpc.HealthOk {
		return fmt.Errorf("solana health: %s", health)
	}
	return nil
}

func (c *Client) Close() {
	_ = c.rpc.Close()
}
