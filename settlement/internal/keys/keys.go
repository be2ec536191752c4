package keys

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"custody/settlement/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

type Keypair struct {
	Address    string
	PrivateKey string
}

// Deriver produces the keypair a wallet uses on one network. primary is the
// shared evm keypair of the wallet.
type Deriver interface {
	Derive(network domain.Network, primary Keypair) (Keypair, error)
}

type Mode string

const (
	MODE_SYNTHETIC Mode = "synthetic"
	MODE_NATIVE    Mode = "native"
)

// Set dispatches derivation by network family.
type Set struct {
	derivers map[domain.Family]Deriver
}

func NewSet(mode Mode) (*Set, error) {
	var nonEvm map[domain.Family]Deriver

	switch mode {
	case MODE_SYNTHETIC, "":
		nonEvm = map[domain.Family]Deriver{
			domain.FAMILY_TRON:   syntheticTron{},
			domain.FAMILY_TON:    syntheticTon{},
			domain.FAMILY_SOLANA: syntheticSolana{},
		}
	case MODE_NATIVE:
		nonEvm = map[domain.Family]Deriver{
			domain.FAMILY_TRON:   nativeTron{},
			domain.FAMILY_TON:    nativeTon{},
			domain.FAMILY_SOLANA: nativeSolana{},
		}
	default:
		return nil, fmt.Errorf("unknown key mode: %s", mode)
	}

	nonEvm[domain.FAMILY_EVM] = shared{}
	return &Set{derivers: nonEvm}, nil
}

// With overrides the deriver of one family.
func (s *Set) With(family domain.Family, d Deriver) *Set {
	s.derivers[family] = d
	return s
}

func (s *Set) Derive(network domain.Network, primary Keypair) (Keypair, error) {
	d, ok := s.derivers[network.Family()]
	if !ok {
		return Keypair{}, fmt.Errorf("%w: %s", domain.ErrUnknownNetwork, network.ToString())
	}
	return d.Derive(network, primary)
}

// evm networks reuse the wallet keypair
type shared struct{}

func (shared) Derive(_ domain.Network, primary Keypair) (Keypair, error) {
	return primary, nil
}

func NewEvmKeypair() (Keypair, error) {
	privKey, err := crypto.GenerateKey()
	if err != nil {
		return Keypair{}, err
	}
	return evmKeypair(privKey), nil
}

func EvmKeypairFromHex(private string) (Keypair, error) {
	privKey, err := crypto.HexToECDSA(strings.TrimPrefix(private, "0x"))
	if err != nil {
		return Keypair{}, fmt.Errorf("parse evm key: %w", err)
	}
	return evmKeypair(privKey), nil
}

func EvmAddress(private string) (common.Address, error) {
	kp, err := EvmKeypairFromHex(private)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(kp.Address), nil
}

func evmKeypair(privKey *ecdsa.PrivateKey) Keypair {
	return Keypair{
		Address:    crypto.PubkeyToAddress(privKey.PublicKey).Hex(),
		PrivateKey: strings.TrimPrefix(hexutil.Encode(crypto.FromECDSA(privKey)), "0x"),
	}
}
