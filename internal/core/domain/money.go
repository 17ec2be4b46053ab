package domain

import "github.com/shopspring/decimal"

// RoundMoney rounds to 2 fractional digits using banker's rounding.
// Every stored balance, conversion rate and converted amount goes
// through this helper so the whole ledger agrees on one rounding mode.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// HasAtMostTwoDecimals reports whether d carries no more than 2
// fractional digits. Amount inputs with finer precision are rejected at
// the boundary before they ever reach the ledger.
func HasAtMostTwoDecimals(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}
