package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	walletlink "github.com/layer-3/walletlink"
	"github.com/layer-3/walletlink/adapters/presenter"
	"github.com/layer-3/walletlink/config"
	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what PersistentPreRunE loaded for the subcommands
type app struct {
	configPath string
	cfg        config.Config
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "walletlink",
		Short:         "Connect an XRP Ledger wallet and sign transactions with it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(cfg.Log)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a config file (yaml, json or toml)")

	root.AddCommand(
		newServeCmd(a),
		newConnectCmd(a),
		newDisconnectCmd(a),
		newStatusCmd(a),
		newSignCmd(a),
		newPayCmd(a),
		newTrustLineCmd(a),
	)

	return root
}

// runtime builds an initialized coordinator that opens resolution links
// in the browser and prints lifecycle events to w.
func (a *app) runtime(ctx context.Context, w io.Writer) (*walletlink.Runtime, error) {
	rt, err := walletlink.Build(ctx, a.cfg, a.logger, walletlink.WithPresenter(presenter.NewBrowser(w, a.logger)))
	if err != nil {
		return nil, err
	}

	rt.Client().Subscribe(func(e walletlink.Event) {
		switch e.Kind {
		case core.EventWalletConnecting, core.EventTxSigning:
			fmt.Fprintf(w, "Waiting for approval in your wallet (request %s)...\n", e.Data.RequestID)
		case core.EventWalletError, core.EventTxError:
			fmt.Fprintf(w, "Failed: %s\n", e.Data.Error)
		}
	})

	rt.Client().Initialize(ctx)
	if rt.Client().State().Simulated {
		fmt.Fprintln(w, "Signing service unavailable, running in simulation mode.")
	}
	return rt, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
