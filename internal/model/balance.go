package model

import "github.com/shopspring/decimal"

// Balance is the running sum of transfers for an account, chain and module.
type Balance struct {
	Account  string
	ChainID  ChainID
	QualName string
	Module   string
	Amount   decimal.Decimal
	Height   int64
}

// BalanceKey identifies a balance row.
type BalanceKey struct {
	Account  string
	ChainID  ChainID
	QualName string
}

// BalanceDelta is a signed contribution to a balance.
type BalanceDelta struct {
	Account  string
	ChainID  ChainID
	QualName string
	Module   string
	Amount   decimal.Decimal
	Height   int64
}

// Key returns the balance the delta applies to.
func (d BalanceDelta) Key() BalanceKey {
	return BalanceKey{Account: d.Account, ChainID: d.ChainID, QualName: d.QualName}
}
