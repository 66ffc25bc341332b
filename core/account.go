package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenBalance is an issued-currency balance held by an account.
type TokenBalance struct {
	Currency string          `json:"currency"`
	Issuer   string          `json:"issuer"`
	Value    decimal.Decimal `json:"value"`
}

// Balance is the backend's balance view of an account.
type Balance struct {
	XRP        decimal.Decimal `json:"xrp"`
	Tokens     []TokenBalance  `json:"tokens"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// AccountInfo is the backend's ledger view of an account.
type AccountInfo struct {
	Account    string `json:"account"`
	Balance    string `json:"balance"` // drops
	Sequence   uint32 `json:"sequence"`
	OwnerCount uint32 `json:"ownerCount"`
	Validated  bool   `json:"validated"`
}

// AccountSnapshot is a best-effort cached view of the session account.
type AccountSnapshot struct {
	Account          string          `json:"account"`
	NativeBalance    decimal.Decimal `json:"nativeBalance"`
	TotalValue       decimal.Decimal `json:"totalValue"`
	Tokens           []TokenBalance  `json:"tokens,omitempty"`
	Sequence         uint32          `json:"sequence"`
	OwnerCount       uint32          `json:"ownerCount"`
	Validated        bool            `json:"validated"`
	BalanceFetchedAt time.Time       `json:"balanceFetchedAt,omitempty"`
	InfoFetchedAt    time.Time       `json:"infoFetchedAt,omitempty"`
	FetchedAt        time.Time       `json:"fetchedAt,omitempty"`
}

// ApplyBalance overwrites the balance fields.
func (s *AccountSnapshot) ApplyBalance(b Balance, at time.Time) {
	s.NativeBalance = b.XRP
	s.TotalValue = b.TotalValue
	s.Tokens = append([]TokenBalance(nil), b.Tokens...)
	s.BalanceFetchedAt = at
	s.FetchedAt = at
}

// ApplyInfo overwrites the ledger info fields.
func (s *AccountSnapshot) ApplyInfo(info AccountInfo, at time.Time) {
	s.Sequence = info.Sequence
	s.OwnerCount = info.OwnerCount
	s.Validated = info.Validated
	s.InfoFetchedAt = at
	s.FetchedAt = at
}

// Clone returns a deep copy.
func (s AccountSnapshot) Clone() AccountSnapshot {
	s.Tokens = append([]TokenBalance(nil), s.Tokens...)
	return s
}
