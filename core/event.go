package core

import "time"

// EventKind names a coordinator lifecycle notification.
type EventKind string

const (
	EventSessionRestored    EventKind = "session_restored"
	EventWalletConnecting   EventKind = "wallet_connecting"
	EventWalletConnected    EventKind = "wallet_connected"
	EventWalletDisconnected EventKind = "wallet_disconnected"
	EventWalletError        EventKind = "wallet_error"
	EventTxSigning          EventKind = "transaction_signing"
	EventTxSigned           EventKind = "transaction_signed"
	EventTxError            EventKind = "transaction_error"
	EventAccountUpdated     EventKind = "account_updated"
)

// EventData carries the payload of a lifecycle event. Consumers correlate
// concurrent flows through RequestID and Account.
type EventData struct {
	RequestID     string           `json:"requestId,omitempty"`
	Account       string           `json:"account,omitempty"`
	TxID          string           `json:"txid,omitempty"`
	ResolutionURL string           `json:"resolutionUrl,omitempty"`
	QRCodeURL     string           `json:"qrCodeUrl,omitempty"`
	Error         string           `json:"error,omitempty"`
	State         RequestState     `json:"state,omitempty"`
	Simulated     bool             `json:"simulated,omitempty"`
	Session       *Session         `json:"session,omitempty"`
	Snapshot      *AccountSnapshot `json:"snapshot,omitempty"`
}

// Event is a lifecycle notification broadcast by the coordinator.
type Event struct {
	Kind EventKind `json:"kind"`
	Data EventData `json:"data"`
	At   time.Time `json:"at"`
}
