package core

import "errors"

var (
	ErrNotInitialized     = errors.New("wallet service not initialized")
	ErrNoSession          = errors.New("no active wallet session")
	ErrInvalidCredentials = errors.New("signing service credentials unavailable")
	ErrProbeFailed        = errors.New("signing service unreachable")
	ErrRequestCreation    = errors.New("failed to create sign request")
	ErrDeclined           = errors.New("sign request was not signed")
	ErrExpired            = errors.New("sign request timed out")
	ErrPollFailed         = errors.New("failed to poll sign request")
	ErrRequestFinished    = errors.New("sign request already finished")
	ErrInvalidAddress     = errors.New("invalid XRP address")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNotFound           = errors.New("record not found")
	ErrStoreOperation     = errors.New("store operation failed")
	ErrSessionCorrupted   = errors.New("stored session is corrupted")
)

// StateFromError maps a coordinator error onto the terminal state it
// produced. Unknown errors map to StateErrored.
func StateFromError(err error) RequestState {
	switch {
	case err == nil:
		return StateSigned
	case errors.Is(err, ErrDeclined):
		return StateDeclined
	case errors.Is(err, ErrExpired):
		return StateExpired
	}
	return StateErrored
}
