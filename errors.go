package walletlink

import "github.com/layer-3/walletlink/core"

var (
	// ErrNotInitialized is returned when Sign runs before Initialize
	ErrNotInitialized = core.ErrNotInitialized

	// ErrNoSession is returned when an operation needs a connected wallet
	ErrNoSession = core.ErrNoSession

	// ErrRequestCreation is returned when the signing service rejected a request
	ErrRequestCreation = core.ErrRequestCreation

	// ErrDeclined is returned when the user did not approve a request
	ErrDeclined = core.ErrDeclined

	// ErrExpired is returned when a request was not resolved in time
	ErrExpired = core.ErrExpired

	// ErrPollFailed is returned when the final status poll failed
	ErrPollFailed = core.ErrPollFailed

	// ErrInvalidAddress is returned for malformed XRPL addresses
	ErrInvalidAddress = core.ErrInvalidAddress

	// ErrInvalidAmount is returned for amounts that cannot be transferred
	ErrInvalidAmount = core.ErrInvalidAmount
)
