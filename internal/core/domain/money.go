package domain

import "github.com/shopspring/decimal"

// Currency arithmetic uses shopspring decimals throughout; binary floats are
// never used for balances, amounts or fees.

// ComputeFee returns the fee for an amount at the given rate (e.g. 0.015 for
// 1.5%), rounded half-up to the currency's minor unit.
func ComputeFee(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(2)
}

// TotalDebit returns the full charge to the source wallet for a movement of
// the given kind: amount plus fee for fee-carrying kinds, the net amount
// otherwise.
func TotalDebit(kind MovementKind, amount, rate decimal.Decimal) decimal.Decimal {
	if kind.CarriesFee() {
		return amount.Add(ComputeFee(amount, rate))
	}
	return amount
}
