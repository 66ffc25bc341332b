package core

import (
	"fmt"
	"time"
)

// RequestKind tells what a sign request asks the wallet to approve.
type RequestKind string

const (
	// KindIdentity asks the user to prove control of an account.
	KindIdentity RequestKind = "identity"

	// KindTransaction asks the user to sign a ledger transaction.
	KindTransaction RequestKind = "transaction"
)

// RequestState is a position in the sign request state machine.
type RequestState string

const (
	StateIdle               RequestState = ""
	StateCreating           RequestState = "creating"
	StateAwaitingUserAction RequestState = "awaiting_user_action"
	StatePolling            RequestState = "polling"
	StateSigned             RequestState = "signed"
	StateDeclined           RequestState = "declined"
	StateExpired            RequestState = "expired"
	StateErrored            RequestState = "errored"
)

// Terminal reports whether no further transition is allowed.
func (s RequestState) Terminal() bool {
	switch s {
	case StateSigned, StateDeclined, StateExpired, StateErrored:
		return true
	}
	return false
}

func (s RequestState) String() string {
	if s == StateIdle {
		return "idle"
	}
	return string(s)
}

// TxJSON is an opaque transaction description handed to the wallet.
type TxJSON map[string]any

// SignOptions tune how the signing service handles a request.
type SignOptions struct {
	// Submit makes the wallet submit the signed transaction to the ledger.
	// Nil means the default for the request kind.
	Submit *bool `json:"submit,omitempty"`

	// ReturnURL is where the wallet sends the user after resolving.
	ReturnURL string `json:"returnUrl,omitempty"`

	// Instruction is shown to the user inside the wallet.
	Instruction string `json:"instruction,omitempty"`
}

// SubmitOr returns Submit or def when Submit is unset.
func (o SignOptions) SubmitOr(def bool) bool {
	if o.Submit == nil {
		return def
	}
	return *o.Submit
}

// RequestDraft is what the coordinator hands to a signing backend.
type RequestDraft struct {
	Kind    RequestKind
	TxJSON  TxJSON
	Options SignOptions
}

// CreatedRequest is the signing service's answer to a registration.
type CreatedRequest struct {
	ID            string
	ResolutionURL string
	QRCodeURL     string
}

// PollResult is one status envelope returned while polling.
type PollResult struct {
	Resolved   bool
	Signed     bool
	Cancelled  bool
	Expired    bool
	Account    string
	TxID       string
	Dispatched string
}

// Terminal reports whether the request reached a final status.
func (r PollResult) Terminal() bool {
	return r.Resolved || r.Cancelled || r.Expired
}

// State maps a terminal result onto the state machine.
func (r PollResult) State() RequestState {
	switch {
	case r.Resolved && r.Signed:
		return StateSigned
	case r.Resolved, r.Cancelled:
		return StateDeclined
	case r.Expired:
		return StateExpired
	}
	return StatePolling
}

// SignRequest is one outstanding ask to the external wallet.
type SignRequest struct {
	ID            string
	Kind          RequestKind
	Payload       TxJSON
	Options       SignOptions
	State         RequestState
	ResolutionURL string
	QRCodeURL     string
	CreatedAt     time.Time
	Result        PollResult
	Err           error
}

// NewSignRequest returns a request in the Creating state.
func NewSignRequest(kind RequestKind, payload TxJSON, opts SignOptions, now time.Time) *SignRequest {
	return &SignRequest{
		Kind:      kind,
		Payload:   payload,
		Options:   opts,
		State:     StateCreating,
		CreatedAt: now,
	}
}

// Transition moves the request to next. Terminal states are final.
func (r *SignRequest) Transition(next RequestState) error {
	if r.State.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrRequestFinished, r.State, next)
	}
	r.State = next
	return nil
}

// Draft returns the backend view of the request.
func (r *SignRequest) Draft() RequestDraft {
	return RequestDraft{Kind: r.Kind, TxJSON: r.Payload, Options: r.Options}
}
