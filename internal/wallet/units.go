package wallet

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const displayPrecision = 4

// ToDisplayUnits converts an amount in base units (wei, lamports) to display
// units rounded to four fractional digits.
func ToDisplayUnits(amount *big.Int, kind Kind) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -kind.Decimals()).Round(displayPrecision)
}
