package wallet

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindEthereum Kind = "ethereum"
	KindSolana   Kind = "solana"
)

// ParseKind accepts both the chain name and the browser wallet vendor name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ethereum", "eth", "metamask":
		return KindEthereum, nil
	case "solana", "sol", "phantom":
		return KindSolana, nil
	}
	return "", fmt.Errorf("unknown wallet kind %q", s)
}

// Decimals is the number of base units per display unit, as a power of ten.
func (k Kind) Decimals() int32 {
	switch k {
	case KindEthereum:
		return 18
	case KindSolana:
		return 9
	}
	return 0
}

func (k Kind) Currency() string {
	switch k {
	case KindEthereum:
		return "ETH"
	case KindSolana:
		return "SOL"
	}
	return ""
}
