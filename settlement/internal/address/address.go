package address

import (
	"regexp"
	"strings"

	"custody/settlement/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	tronaddr "github.com/fbsobreira/gotron-sdk/pkg/address"
	"github.com/gagliardetto/solana-go"
	tonaddr "github.com/xssnick/tonutils-go/address"
)

var (
	evmPattern    = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	tronPattern   = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
	tonPattern    = regexp.MustCompile(`^(EQ|UQ)[A-Za-z0-9_-]{46}$`)
	solanaPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

// DetectFamily guesses the family of addr. Checksummed TRON and decodable
// Solana keys win over bare syntax, so a base58 string is only called TRON
// by shape once it fails as a Solana key. Shape-only matches are still
// reported so that a mistyped address fails validation on its own family.
func DetectFamily(addr string) domain.Family {
	switch {
	case evmPattern.MatchString(addr):
		return domain.FAMILY_EVM
	case validTron(addr):
		return domain.FAMILY_TRON
	case tonPattern.MatchString(addr):
		return domain.FAMILY_TON
	case validSolana(addr):
		return domain.FAMILY_SOLANA
	case tronPattern.MatchString(addr):
		return domain.FAMILY_TRON
	case solanaPattern.MatchString(addr):
		return domain.FAMILY_SOLANA
	}
	return domain.FAMILY_UNKNOWN
}

// Validate checks syntax and checksum of addr for network.
func Validate(network domain.Network, addr string) error {
	if network.IsNone() {
		return domain.ErrUnknownNetwork
	}
	return ValidateFamily(network.Family(), addr)
}

func ValidateFamily(family domain.Family, addr string) error {
	var ok bool

	switch family {
	case domain.FAMILY_EVM:
		ok = validEvm(addr)
	case domain.FAMILY_TRON:
		ok = validTron(addr)
	case domain.FAMILY_TON:
		ok = validTon(addr)
	case domain.FAMILY_SOLANA:
		ok = validSolana(addr)
	}

	if !ok {
		return domain.Validationf(domain.ErrMsgInvalidAddress, family.ToString())
	}
	return nil
}

// Normalize returns the canonical stored form: EIP-55 for evm, unchanged otherwise.
func Normalize(network domain.Network, addr string) string {
	if network.Family() == domain.FAMILY_EVM && evmPattern.MatchString(addr) {
		return common.HexToAddress(addr).Hex()
	}
	return addr
}

func validEvm(addr string) bool {
	if !evmPattern.MatchString(addr) {
		return false
	}

	body := addr[2:]
	// single-case addresses carry no checksum
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return common.HexToAddress(addr).Hex() == addr
}

func validTron(addr string) bool {
	if !tronPattern.MatchString(addr) {
		return false
	}
	_, err := tronaddr.Base58ToAddress(addr)
	return err == nil
}

func validTon(addr string) bool {
	if !tonPattern.MatchString(addr) {
		return false
	}
	_, err := tonaddr.ParseAddr(addr)
	return err == nil
}

func validSolana(addr string) bool {
	if !solanaPattern.MatchString(addr) {
		return false
	}
	_, err := solana.PublicKeyFromBase58(addr)
	return err == nil
}
