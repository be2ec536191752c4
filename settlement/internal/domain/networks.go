package domain

type Network uint8

const (
	NETWORK_NONE Network = iota // only for init
	NETWORK_ETHEREUM
	NETWORK_BSC
	NETWORK_POLYGON
	NETWORK_ARBITRUM
	NETWORK_TRON
	NETWORK_TON
	NETWORK_SOLANA
)

var Networks = [...]string{"none", "ethereum", "bsc", "polygon", "arbitrum", "tron", "ton", "solana"}

// order of networks[] entries in a provisioned wallet
var SupportedNetworks = [...]Network{
	NETWORK_ETHEREUM,
	NETWORK_BSC,
	NETWORK_TRON,
	NETWORK_POLYGON,
	NETWORK_ARBITRUM,
	NETWORK_TON,
	NETWORK_SOLANA,
}

func (n Network) ToString() string {
	if int(n) >= len(Networks) {
		return Networks[NETWORK_NONE]
	}
	return Networks[n]
}

func (n Network) IsNone() bool {
	return n == NETWORK_NONE || int(n) >= len(Networks)
}

func (n Network) Family() Family {
	switch n {
	case NETWORK_ETHEREUM, NETWORK_BSC, NETWORK_POLYGON, NETWORK_ARBITRUM:
		return FAMILY_EVM
	case NETWORK_TRON:
		return FAMILY_TRON
	case NETWORK_TON:
		return FAMILY_TON
	case NETWORK_SOLANA:
		return FAMILY_SOLANA
	}
	return FAMILY_UNKNOWN
}

func StrToNetwork(s string) Network {
	for i, name := range Networks {
		if s == name {
			return Network(i)
		}
	}
	return NETWORK_NONE
}

// Family groups networks that share one address format.
type Family uint8

const (
	FAMILY_UNKNOWN Family = iota
	FAMILY_EVM
	FAMILY_TRON
	FAMILY_TON
	FAMILY_SOLANA
)

var Families = [...]string{"unknown", "evm", "tron", "ton", "solana"}

func (f Family) ToString() string {
	if int(f) >= len(Families) {
		return Families[FAMILY_UNKNOWN]
	}
	return Families[f]
}

func (f Family) IsUnknown() bool {
	return f == FAMILY_UNKNOWN
}
