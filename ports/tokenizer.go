package ports

import "github.com/layer-3/walletlink/core"

// SessionCodec converts between sessions and their persisted form
type SessionCodec interface {
	Encode(session core.Session) (string, error)
	Decode(raw string) (core.Session, error)
}
