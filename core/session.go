package core

import "time"

// Session binds this client to one wallet account approved through an
// identity sign request.
type Session struct {
	Account     string    `json:"account"`
	RequestID   string    `json:"requestId"`
	ConnectedAt time.Time `json:"connectedAt"`
	Simulated   bool      `json:"isSimulated"`
}

// Valid reports whether the session is bound to an account.
func (s Session) Valid() bool {
	return s.Account != ""
}

// Age returns how long ago the session was established.
func (s Session) Age(now time.Time) time.Duration {
	return now.Sub(s.ConnectedAt)
}

// Expired reports whether the session is at least ttl old.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return s.Age(now) >= ttl
}

// TransactionRecord is the latest transaction approved by the wallet.
type TransactionRecord struct {
	TxID       string    `json:"txid"`
	Account    string    `json:"account"`
	RequestID  string    `json:"requestId"`
	Dispatched string    `json:"dispatched,omitempty"`
	SignedAt   time.Time `json:"signedAt"`
}

// WalletState is a read-only view of the coordinator.
type WalletState struct {
	Initialized     bool               `json:"initialized"`
	Simulated       bool               `json:"simulated"`
	Connected       bool               `json:"connected"`
	Session         *Session           `json:"session,omitempty"`
	LastTransaction *TransactionRecord `json:"lastTransaction,omitempty"`
	Account         *AccountSnapshot   `json:"accountData,omitempty"`
}
