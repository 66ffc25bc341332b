package backend

import (
	"context"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
	"github.com/shopspring/decimal"
)

// SimulatedBalanceDrops is what every simulated account holds (1000 XRP).
const SimulatedBalanceDrops = "1000000000"

// SimulatedAccounts serves fixed account data in simulation mode.
type SimulatedAccounts struct{}

var _ ports.AccountSource = SimulatedAccounts{}

func (SimulatedAccounts) Balance(ctx context.Context, account string) (core.Balance, error) {
	xrp := decimal.NewFromInt(1000)
	return core.Balance{XRP: xrp, TotalValue: xrp}, ctx.Err()
}

func (SimulatedAccounts) AccountInfo(ctx context.Context, account string) (core.AccountInfo, error) {
	return core.AccountInfo{
		Account:   account,
		Balance:   SimulatedBalanceDrops,
		Sequence:  1,
		Validated: true,
	}, ctx.Err()
}
