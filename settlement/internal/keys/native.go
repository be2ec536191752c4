package keys

import (
	"strings"

	"custody/settlement/internal/domain"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	tronaddr "github.com/fbsobreira/gotron-sdk/pkg/address"
	"github.com/gagliardetto/solana-go"
	"github.com/xssnick/tonutils-go/ton/wallet"
)

// real per-family keys

type nativeTron struct{}

func (nativeTron) Derive(_ domain.Network, _ Keypair) (Keypair, error) {
	privKey, err := crypto.GenerateKey()
	if err != nil {
		return Keypair{}, err
	}
	return Keypair{
		Address:    tronaddr.PubkeyToAddress(privKey.PublicKey).String(),
		PrivateKey: strings.TrimPrefix(hexutil.Encode(crypto.FromECDSA(privKey)), "0x"),
	}, nil
}

type nativeSolana struct{}

func (nativeSolana) Derive(_ domain.Network, _ Keypair) (Keypair, error) {
	priv, err := solana.NewRandomPrivateKey()
	if err != nil {
		return Keypair{}, err
	}
	return Keypair{Address: priv.PublicKey().String(), PrivateKey: priv.String()}, nil
}

// private key is the space separated seed phrase
type nativeTon struct{}

func (nativeTon) Derive(_ domain.Network, _ Keypair) (Keypair, error) {
	seed := wallet.NewSeed()

	// address derivation is offline, no api needed
	w, err := wallet.FromSeed(nil, seed, wallet.V4R2)
	if err != nil {
		return Keypair{}, err
	}
	return Keypair{Address: w.Address().String(), PrivateKey: strings.Join(seed, " ")}, nil
}
