package main

import (
	"encoding/json"
	"fmt"

	walletlink "github.com/layer-3/walletlink"
	"github.com/layer-3/walletlink/core"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newConnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect a wallet by approving a sign-in request",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			rt, err := a.runtime(cmd.Context(), out)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.Client().Connect(cmd.Context())
			if err != nil {
				return err
			}
			if res.AlreadyConnected {
				fmt.Fprintf(out, "Already connected as %s\n", res.Account)
				return nil
			}
			fmt.Fprintf(out, "Connected as %s\n", res.Account)
			return nil
		},
	}
}

func newDisconnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the connected wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			rt.Client().Disconnect(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Disconnected")
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session and account data",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			if refresh && rt.Client().State().Connected {
				if _, err := rt.Client().RefreshAccountData(cmd.Context()); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), rt.Client().State())
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", true, "load account data before printing")
	return cmd
}

func newSignCmd(a *app) *cobra.Command {
	var (
		txJSON      string
		noSubmit    bool
		instruction string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Ask the wallet to sign a transaction given as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			var tx core.TxJSON
			if err := json.Unmarshal([]byte(txJSON), &tx); err != nil {
				return fmt.Errorf("invalid --tx: %w", err)
			}

			opts := core.SignOptions{Instruction: instruction}
			if noSubmit {
				submit := false
				opts.Submit = &submit
			}

			return a.sign(cmd, func(c walletlink.Client) (walletlink.SignResult, error) {
				return c.Sign(cmd.Context(), tx, opts)
			})
		},
	}
	cmd.Flags().StringVar(&txJSON, "tx", "", "transaction JSON")
	cmd.Flags().BoolVar(&noSubmit, "no-submit", false, "sign without submitting to the ledger")
	cmd.Flags().StringVar(&instruction, "instruction", "", "message shown in the wallet")
	_ = cmd.MarkFlagRequired("tx")
	return cmd
}

func newPayCmd(a *app) *cobra.Command {
	var (
		to       string
		amount   string
		currency string
		issuer   string
		tag      uint32
		memo     string
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Send XRP or an issued currency from the connected wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount: %w", err)
			}

			p := walletlink.Payment{
				Destination: to,
				Amount:      value,
				Memo:        memo,
				Currency:    currency,
				Issuer:      issuer,
			}
			if cmd.Flags().Changed("tag") {
				p.DestinationTag = &tag
			}

			return a.sign(cmd, func(c walletlink.Client) (walletlink.SignResult, error) {
				if currency == "" || currency == "XRP" {
					return c.SendPayment(cmd.Context(), p)
				}
				return c.SendTokenPayment(cmd.Context(), p)
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "destination address")
	cmd.Flags().StringVar(&amount, "amount", "", "amount to send")
	cmd.Flags().StringVar(&currency, "currency", "", "issued currency code, empty for XRP")
	cmd.Flags().StringVar(&issuer, "issuer", "", "issuer of the currency")
	cmd.Flags().Uint32Var(&tag, "tag", 0, "destination tag")
	cmd.Flags().StringVar(&memo, "memo", "", "memo attached to the payment")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newTrustLineCmd(a *app) *cobra.Command {
	var currency, issuer, limit string

	cmd := &cobra.Command{
		Use:   "trustline",
		Short: "Allow the connected wallet to hold an issued currency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sign(cmd, func(c walletlink.Client) (walletlink.SignResult, error) {
				return c.CreateTrustLine(cmd.Context(), currency, issuer, limit)
			})
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "currency code")
	cmd.Flags().StringVar(&issuer, "issuer", "", "issuer address")
	cmd.Flags().StringVar(&limit, "limit", "", "trust limit, defaults to "+core.DefaultTrustLimit)
	_ = cmd.MarkFlagRequired("currency")
	_ = cmd.MarkFlagRequired("issuer")
	return cmd
}

// sign runs fn against an initialized runtime and prints the result.
func (a *app) sign(cmd *cobra.Command, fn func(walletlink.Client) (walletlink.SignResult, error)) error {
	out := cmd.OutOrStdout()
	rt, err := a.runtime(cmd.Context(), out)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := fn(rt.Client())
	if err != nil {
		return err
	}
	return printJSON(out, res)
}
