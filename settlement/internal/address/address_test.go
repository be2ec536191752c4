package address

import (
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"custody/settlement/internal/domain"

	"github.com/ethereum/go-ethereum/crypto"
	tronaddr "github.com/fbsobreira/gotron-sdk/pkg/address"
	"github.com/gagliardetto/solana-go"
	tonaddr "github.com/xssnick/tonutils-go/address"
)

const (
	checksummedEvm = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	usdtTron       = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
)

func newTonAddress(t *testing.T) string {
	data := make([]byte, 32)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}
	return tonaddr.NewAddress(0, 0, data).String()
}

func newTronAddress(t *testing.T) string {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	return tronaddr.PubkeyToAddress(key.PublicKey).String()
}

func TestValidate(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	evm := crypto.PubkeyToAddress(key.PublicKey).Hex()
	ton := newTonAddress(t)
	sol := solana.NewWallet().PublicKey().String()

	tests := []struct {
		name    string
		network domain.Network
		addr    string
		valid   bool
	}{
		{"evm checksummed", domain.NETWORK_POLYGON, checksummedEvm, true},
		{"evm generated", domain.NETWORK_ETHEREUM, evm, true},
		{"evm lowercase", domain.NETWORK_BSC, strings.ToLower(checksummedEvm), true},
		{"evm uppercase body", domain.NETWORK_ARBITRUM, "0x" + strings.ToUpper(checksummedEvm[2:]), true},
		{"evm bad checksum", domain.NETWORK_POLYGON, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeD", false},
		{"evm short", domain.NETWORK_POLYGON, checksummedEvm[:41], false},
		{"evm no prefix", domain.NETWORK_POLYGON, checksummedEvm[2:], false},
		{"tron usdt", domain.NETWORK_TRON, usdtTron, true},
		{"tron generated", domain.NETWORK_TRON, newTronAddress(t), true},
		{"tron bad checksum", domain.NETWORK_TRON, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6u", false},
		{"tron on evm network", domain.NETWORK_POLYGON, usdtTron, false},
		{"ton generated", domain.NETWORK_TON, ton, true},
		{"ton bad crc", domain.NETWORK_TON, "EQ" + strings.Repeat("A", 46), false},
		{"ton wrong prefix", domain.NETWORK_TON, "XQ" + ton[2:], false},
		{"solana generated", domain.NETWORK_SOLANA, sol, true},
		{"solana forbidden chars", domain.NETWORK_SOLANA, "0OIl" + sol[4:], false},
		{"solana too short", domain.NETWORK_SOLANA, sol[:20], false},
		{"empty", domain.NETWORK_SOLANA, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.network, tt.addr)
			if tt.valid && err != nil {
				t.Fatalf("%s: unexpected error %v", tt.addr, err)
			}
			if !tt.valid {
				if err == nil {
					t.Fatalf("%s: expected validation error", tt.addr)
				}
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("%s: want ErrValidation, got %v", tt.addr, err)
				}
			}
		})
	}
}

func TestValidateUnknownNetwork(t *testing.T) {
	if err := Validate(domain.NETWORK_NONE, checksummedEvm); !errors.Is(err, domain.ErrUnknownNetwork) {
		t.Fatalf("got %v", err)
	}
}

func TestDetectFamily(t *testing.T) {
	tests := []struct {
		addr string
		want domain.Family
	}{
		{checksummedEvm, domain.FAMILY_EVM},
		{usdtTron, domain.FAMILY_TRON},
		{newTonAddress(t), domain.FAMILY_TON},
		{solana.NewWallet().PublicKey().String(), domain.FAMILY_SOLANA},
		{"hello", domain.FAMILY_UNKNOWN},
		{"", domain.FAMILY_UNKNOWN},
	}

	for _, tt := range tests {
		if got := DetectFamily(tt.addr); got != tt.want {
			t.Fatalf("DetectFamily(%q) = %s, want %s", tt.addr, got.ToString(), tt.want.ToString())
		}
	}
}

func TestDetectFamilyPrefersDecodedKeys(t *testing.T) {
	var key string
	for range 100000 {
		if k := solana.NewWallet().PublicKey().String(); k[0] == 'T' {
			key = k
			break
		}
	}
	if key == "" {
		t.Fatal("no solana key starting with T generated")
	}
	if got := DetectFamily(key); got != domain.FAMILY_SOLANA {
		t.Fatalf("DetectFamily(%q) = %s, want solana", key, got.ToString())
	}

	// bad checksum keeps the tron family so validation reports it there
	if got := DetectFamily("TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6u"); got != domain.FAMILY_TRON {
		t.Fatalf("mistyped tron address detected as %s", got.ToString())
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(domain.NETWORK_POLYGON, strings.ToLower(checksummedEvm)); got != checksummedEvm {
		t.Fatalf("got %s", got)
	}
	if got := Normalize(domain.NETWORK_TRON, usdtTron); got != usdtTron {
		t.Fatalf("got %s", got)
	}
}
