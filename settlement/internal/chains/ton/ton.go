package ton

import (
	"context"
	"fmt"

	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/ton"
)

const (
	TESTNET_URL = "https://ton.org/testnet-global.config.json"
	DEFAULT_URL = "https://ton.org/global.config.json"
)

type Client struct {
	pool *liteclient.ConnectionPool
	api  ton.APIClientWrapped
}

// Connect joins the liteservers listed in the global config at configUrl.
func Connect(ctx context.Context, configUrl string) (*Client, error) {
	if configUrl == "" {
		configUrl = TESTNET_URL
	}

	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfigUrl(ctx, configUrl); err != nil {
		return nil, fmt.Errorf("ton connection: %w", err)
	}

	c := &Client{pool: pool, api: ton.NewAPIClient(pool, ton.ProofCheckPolicyFast).WithRetry(2)}
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.CurrentMasterchainInfo(ctx); err != nil {
		return fmt.Errorf("ton masterchain info: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	c.pool.Stop()
}
