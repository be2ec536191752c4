package eth

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

// token methods used by the settlement engine
const erc20ABI = `[
	{"constant": true, "inputs": [{"name": "_owner", "type": "address"}], "name": "balanceOf", "outputs": [{"name": "balance", "type": "uint256"}], "type": "function"},
	{"constant": false, "inputs": [{"name": "_to", "type": "address"}, {"name": "_value", "type": "uint256"}], "name": "transfer", "outputs": [{"name": "", "type": "bool"}], "type": "function"},
	{"constant": false, "inputs": [{"name": "to", "type": "address"}, {"name": "amount", "type": "uint256"}], "name": "mint", "outputs": [], "type": "function"}
]`

const (
	NATIVE_DECIMALS   = 18
	NATIVE_GAS_LIMIT  = uint64(21000)
	DEFAULT_GAS_LIMIT = uint64(100000) // erc20 calls when estimation fails
)

var tokenABI = mustParseABI(erc20ABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("parse erc20 abi: " + err.Error())
	}
	return parsed
}

// Client is a connection to one evm network and its USDT contract.
type Client struct {
	rpc      *ethclient.Client
	chainID  *big.Int
	contract common.Address
	decimals int32
}

type Options struct {
	URL      string
	ChainID  int64 // 0 skips the check
	Contract string
	Decimals int32
}

func Connect(ctx context.Context, opts Options) (*Client, error) {
	client, err := ethclient.DialContext(ctx, opts.URL)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("chain id: %w", err)
	}

	if opts.ChainID != 0 && chainID.Int64() != opts.ChainID {
		client.Close()
		return nil, fmt.Errorf("wrong chain id: got %d, want %d", chainID.Int64(), opts.ChainID)
	}

	return &Client{
		rpc:      client,
		chainID:  chainID,
		contract: common.HexToAddress(opts.Contract),
		decimals: opts.Decimals,
	}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.rpc.BlockNumber(ctx)
	return err
}

func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// UnitsToToken converts base units to a token amount: 1230000 (6) to 1.23
func UnitsToToken(units *big.Int, decimals int32) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -decimals)
}

// TokenToUnits converts a token amount to base units: 1.23 (6) to 1230000
func TokenToUnits(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Truncate(0).BigInt()
}
