package harness

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"

	"github.com/gateway-fm/fundme/internal/account"
	"github.com/gateway-fm/fundme/internal/chain"
	"github.com/gateway-fm/fundme/internal/contracts"
	"github.com/gateway-fm/fundme/internal/gasreport"
	"github.com/gateway-fm/fundme/internal/network"
)

// DefaultSendValue is the contribution every check uses: 1 ETH.
var DefaultSendValue = big.NewInt(params.Ether)

// Env is a deployed FundMe ready to be exercised.
type Env struct {
	Profile   *network.Profile
	Backend   chain.Backend
	ChainID   *big.Int
	Deployer  *account.Account
	Funders   []*account.Account
	FundMe    *contracts.FundMe
	PriceFeed *contracts.Aggregator
	SendValue *big.Int
	Gas       *gasreport.Collector
	Logger    *slog.Logger

	fixture Fixture
	close   func()
}

// Close releases what the fixture allocated for this Env.
func (e *Env) Close() {
	if e.close != nil {
		e.close()
	}
}

// Fresh sets up another Env from the same fixture.
func (e *Env) Fresh(ctx context.Context) (*Env, error) {
	if e.fixture == nil {
		return nil, fmt.Errorf("env has no fixture")
	}
	return e.fixture.Setup(ctx)
}

// Opts returns transactor options for acc carrying value wei.
func (e *Env) Opts(ctx context.Context, acc *account.Account, value *big.Int) (*bind.TransactOpts, error) {
	opts, err := acc.TransactOpts(ctx, e.ChainID)
	if err != nil {
		return nil, err
	}
	opts.Value = value
	return opts, nil
}

// Fund contributes value from acc and waits for the receipt.
func (e *Env) Fund(ctx context.Context, acc *account.Account, value *big.Int) (*types.Receipt, error) {
	opts, err := e.Opts(ctx, acc, value)
	if err != nil {
		return nil, err
	}
	tx, err := e.FundMe.Fund(opts)
	if err != nil {
		return nil, err
	}
	return e.wait(ctx, "fund", tx)
}

// Withdraw withdraws as acc using withdraw, or cheaperWithdraw when cheaper is set.
func (e *Env) Withdraw(ctx context.Context, acc *account.Account, cheaper bool) (*types.Receipt, error) {
	opts, err := e.Opts(ctx, acc, nil)
	if err != nil {
		return nil, err
	}
	method := "withdraw"
	withdraw := e.FundMe.Withdraw
	if cheaper {
		method = "cheaperWithdraw"
		withdraw = e.FundMe.CheaperWithdraw
	}
	tx, err := withdraw(opts)
	if err != nil {
		return nil, err
	}
	return e.wait(ctx, method, tx)
}

// Balance returns the latest balance of addr.
func (e *Env) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return e.Backend.BalanceAt(ctx, addr, nil)
}

// GasCost is gasUsed * effectiveGasPrice of receipt.
func GasCost(receipt *types.Receipt) *big.Int {
	price := receipt.EffectiveGasPrice
	if price == nil {
		price = new(big.Int)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), price)
}

func (e *Env) wait(ctx context.Context, method string, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, e.Backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s: %w", method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%s transaction %s failed", method, tx.Hash().Hex())
	}
	e.Gas.Record(contracts.FundMeName, method, receipt)
	e.Logger.Debug("transaction mined",
		slog.String("method", method),
		slog.String("tx", tx.Hash().Hex()),
		slog.Uint64("gas_used", receipt.GasUsed),
	)
	return receipt, nil
}
