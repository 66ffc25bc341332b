package tokenizer

import (
	"encoding/json"
	"fmt"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

// JSONCodec stores sessions as the plain
// {account, requestId, connectedAt, isSimulated} record.
type JSONCodec struct{}

var _ ports.SessionCodec = JSONCodec{}

func (JSONCodec) Encode(session core.Session) (string, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	return string(data), nil
}

func (JSONCodec) Decode(raw string) (core.Session, error) {
	var session core.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return core.Session{}, fmt.Errorf("%w: %w", core.ErrSessionCorrupted, err)
	}
	if session.ConnectedAt.IsZero() {
		return core.Session{}, fmt.Errorf("%w: missing connectedAt", core.ErrSessionCorrupted)
	}
	return session, nil
}
