package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"custody/settlement/internal/domain"

	tronaddr "github.com/fbsobreira/gotron-sdk/pkg/address"
	"github.com/gagliardetto/solana-go"
	tonaddr "github.com/xssnick/tonutils-go/address"
)

// Synthetic derivers build placeholder identifiers from the wallet's evm key.
// They are deterministic, distinct per network and format valid, but nobody
// holds a signing key for them.

const syntheticKeyPrefix = "synthetic:"

func syntheticSeed(network domain.Network, primary Keypair) ([]byte, string) {
	seed := sha256.Sum256([]byte(primary.PrivateKey + ":" + network.ToString()))
	key := sha256.Sum256(seed[:])
	return seed[:], syntheticKeyPrefix + hex.EncodeToString(key[:])
}

func IsSynthetic(privateKey string) bool {
	return strings.HasPrefix(privateKey, syntheticKeyPrefix)
}

type syntheticTron struct{}

func (syntheticTron) Derive(network domain.Network, primary Keypair) (Keypair, error) {
	seed, key := syntheticSeed(network, primary)
	raw := append([]byte{tronaddr.TronBytePrefix}, seed[:20]...)
	return Keypair{Address: tronaddr.Address(raw).String(), PrivateKey: key}, nil
}

type syntheticTon struct{}

func (syntheticTon) Derive(network domain.Network, primary Keypair) (Keypair, error) {
	seed, key := syntheticSeed(network, primary)
	return Keypair{Address: tonaddr.NewAddress(0, 0, seed).String(), PrivateKey: key}, nil
}

type syntheticSolana struct{}

func (syntheticSolana) Derive(network domain.Network, primary Keypair) (Keypair, error) {
	seed, key := syntheticSeed(network, primary)
	return Keypair{Address: solana.PublicKeyFromBytes(seed).String(), PrivateKey: key}, nil
}
