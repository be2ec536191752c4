package eth

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

var ErrTxFailed = fmt.Errorf("transaction failed")

func (c *Client) TokenBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	data, err := tokenABI.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return decimal.Zero, fmt.Errorf("pack balanceOf: %w", err)
	}

	result, err := c.rpc.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("call balanceOf: %w", err)
	}

	// address never touched the token
	if len(result) == 0 {
		return decimal.Zero, nil
	}

	var balance *big.Int
	if err := tokenABI.UnpackIntoInterface(&balance, "balanceOf", result); err != nil {
		return decimal.Zero, fmt.Errorf("unpack balanceOf: %w", err)
	}

	return UnitsToToken(balance, c.decimals), nil
}

// Transfer sends amount of the token to `to` and waits until it is mined.
func (c *Client) Transfer(ctx context.Context, privateKey, to string, amount decimal.Decimal) (string, error) {
	data, err := tokenABI.Pack("transfer", common.HexToAddress(to), TokenToUnits(amount, c.decimals))
	if err != nil {
		return "", fmt.Errorf("pack transfer: %w", err)
	}
	return c.sendAndWait(ctx, privateKey, c.contract, big.NewInt(0), data)
}

// Mint issues amount of the token to `to`. The key must be a minter of the contract.
func (c *Client) Mint(ctx context.Context, privateKey, to string, amount decimal.Decimal) (string, error) {
	data, err := tokenABI.Pack("mint", common.HexToAddress(to), TokenToUnits(amount, c.decimals))
	if err != nil {
		return "", fmt.Errorf("pack mint: %w", err)
	}
	return c.sendAndWait(ctx, privateKey, c.contract, big.NewInt(0), data)
}

// SendNative transfers gas currency (ether units) and waits until it is mined.
func (c *Client) SendNative(ctx context.Context, privateKey, to string, amount decimal.Decimal) (string, error) {
	return c.sendAndWait(ctx, privateKey, common.HexToAddress(to), TokenToUnits(amount, NATIVE_DECIMALS), nil)
}

func (c *Client) sendAndWait(ctx context.Context, privKey string, to common.Address, value *big.Int, data []byte) (string, error) {
	signedTx, err := c.createTx(ctx, privKey, to, value, data)
	if err != nil {
		return "", err
	}

	if err := c.rpc.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("send tx: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, c.rpc, signedTx)
	if err != nil {
		return signedTx.Hash().Hex(), fmt.Errorf("wait mined: %w", err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return signedTx.Hash().Hex(), fmt.Errorf("%w: %s", ErrTxFailed, signedTx.Hash().Hex())
	}

	return signedTx.Hash().Hex(), nil
}

func (c *Client) createTx(ctx context.Context, privKey string, to common.Address, value *big.Int, data []byte) (*types.Transaction, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse key: %w", err)
	}

	fromAddress := crypto.PubkeyToAddress(privateKey.PublicKey)

	nonce, err := c.rpc.PendingNonceAt(ctx, fromAddress)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	gasPrice, err := c.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}

	gasLimit := NATIVE_GAS_LIMIT
	if len(data) > 0 {
		gasLimit, err = c.rpc.EstimateGas(ctx, ethereum.CallMsg{From: fromAddress, To: &to, Value: value, Data: data})
		if err != nil {
			gasLimit = DEFAULT_GAS_LIMIT
		}
	}

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}

	return signedTx, nil
}
