// Package presenter shows sign request resolution targets to the user.
package presenter

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/layer-3/walletlink/ports"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
)

// Browser opens targets in the OS browser and falls back to printing the
// link when no browser can be started.
type Browser struct {
	out    io.Writer
	open   func(url string) error
	logger zerolog.Logger
}

// NewBrowser creates a Browser presenter; out receives the fallback link.
func NewBrowser(out io.Writer, logger zerolog.Logger) *Browser {
	if out == nil {
		out = os.Stdout
	}
	// pkg/browser writes the spawned command's output to these
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	return &Browser{out: out, open: browser.OpenURL, logger: logger}
}

var _ ports.Presenter = (*Browser)(nil)

func (b *Browser) Present(ctx context.Context, target string) (ports.Window, error) {
	if target == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := b.open(target); err != nil {
		b.logger.Debug().Err(err).Msg("browser unavailable, printing link")
		if _, werr := fmt.Fprintf(b.out, "Open this link to continue in your wallet:\n  %s\n", target); werr != nil {
			return nil, fmt.Errorf("failed to present %s: %w", target, werr)
		}
		return nil, nil
	}

	// the OS owns the browser tab; it cannot be closed from here
	return nopWindow{}, nil
}

// Headless shows nothing and returns no window. It is used by the
// HTTP façade, where the UI opens the resolution URL from the event stream.
type Headless struct{}

func (Headless) Present(context.Context, string) (ports.Window, error) {
	return nil, nil
}

type nopWindow struct{}

func (nopWindow) Close() error { return nil }
