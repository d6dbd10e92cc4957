package harness

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateway-fm/fundme/internal/contracts"
)

// Suite names.
const (
	SuiteUnit    = "unit"
	SuiteStaging = "staging"
)

// Check is one named assertion scenario run against a fresh Env.
type Check struct {
	Name string
	Run  func(ctx context.Context, t *T, env *Env)
}

// Suite is an ordered set of checks gated on the network kind.
type Suite struct {
	Name string
	// Development is the network kind the suite runs on. Every check is
	// skipped on the other kind.
	Development bool
	// Funders is the number of funding accounts the checks use.
	Funders int
	Checks  []Check
}

// SuiteByName returns the named suite.
func SuiteByName(name string) (Suite, bool) {
	switch name {
	case SuiteUnit:
		return UnitSuite(), true
	case SuiteStaging:
		return StagingSuite(), true
	}
	return Suite{}, false
}

// UnitFunders is how many accounts fund in the multi-funder checks.
const UnitFunders = 5

// UnitSuite exercises a freshly deployed FundMe on a development network.
func UnitSuite() Suite {
	return Suite{
		Name:        SuiteUnit,
		Development: true,
		Funders:     UnitFunders,
		Checks: []Check{
			{Name: "constructor/sets the aggregator correctly", Run: checkSetsAggregator},
			{Name: "fund/fails if you don't send enough ETH", Run: checkFundBelowMinimum},
			{Name: "fund/updates the amount funded data structure", Run: checkAmountFunded},
			{Name: "fund/adds funder to array of funders", Run: checkAddsFunder},
			{Name: "fund/adds a funder once per contribution", Run: checkRepeatedContribution},
			{Name: "withdraw/withdraws ETH from a single funder", Run: withdrawSingle(false)},
			{Name: "withdraw/allows us to withdraw with multiple funders", Run: withdrawMultiple(false)},
			{Name: "withdraw/only allows the owner to withdraw", Run: checkOnlyOwner},
			{Name: "withdraw/cheaper withdraw with multiple funders", Run: withdrawMultiple(true)},
			{Name: "withdraw/cheaper withdraw with a single funder", Run: withdrawSingle(true)},
			{Name: "withdraw/withdraw and cheaperWithdraw match with 1 funder", Run: withdrawEquivalence(1)},
			{Name: "withdraw/withdraw and cheaperWithdraw match with 5 funders", Run: withdrawEquivalence(UnitFunders)},
		},
	}
}

// StagingSuite exercises the recorded FundMe on a public network.
func StagingSuite() Suite {
	return Suite{
		Name: SuiteStaging,
		Checks: []Check{
			{Name: "allows people to fund and withdraw", Run: checkFundAndWithdraw},
		},
	}
}

func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func equalBig(t *T, want, got *big.Int, msgAndArgs ...interface{}) bool {
	if want.Cmp(got) == 0 {
		return true
	}
	return assert.Fail(t, "big.Int values differ: expected "+want.String()+", actual "+got.String(), msgAndArgs...)
}

func checkSetsAggregator(ctx context.Context, t *T, env *Env) {
	feed, err := env.FundMe.GetPriceFeed(callOpts(ctx))
	require.NoError(t, err)
	assert.Equal(t, env.PriceFeed.Address(), feed)
}

func checkFundBelowMinimum(ctx context.Context, t *T, env *Env) {
	_, err := env.Fund(ctx, env.Deployer, nil)
	assert.ErrorIs(t, err, contracts.Reverted(contracts.ErrNotEnoughETH))
}

func checkAmountFunded(ctx context.Context, t *T, env *Env) {
	_, err := env.Fund(ctx, env.Deployer, env.SendValue)
	require.NoError(t, err)

	amount, err := env.FundMe.GetAddressToAmountFunded(callOpts(ctx), env.Deployer.Address)
	require.NoError(t, err)
	equalBig(t, env.SendValue, amount)
}

func checkAddsFunder(ctx context.Context, t *T, env *Env) {
	_, err := env.Fund(ctx, env.Deployer, env.SendValue)
	require.NoError(t, err)

	funder, err := env.FundMe.GetFunder(callOpts(ctx), big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, env.Deployer.Address, funder)
}

func checkRepeatedContribution(ctx context.Context, t *T, env *Env) {
	for i := 0; i < 2; i++ {
		_, err := env.Fund(ctx, env.Deployer, env.SendValue)
		require.NoError(t, err)
	}

	for i := int64(0); i < 2; i++ {
		funder, err := env.FundMe.GetFunder(callOpts(ctx), big.NewInt(i))
		require.NoError(t, err)
		assert.Equal(t, env.Deployer.Address, funder, "funder %d", i)
	}
	_, err := env.FundMe.GetFunder(callOpts(ctx), big.NewInt(2))
	assert.ErrorIs(t, err, contracts.RevertedWithPanic(contracts.PanicOutOfBounds))

	amount, err := env.FundMe.GetAddressToAmountFunded(callOpts(ctx), env.Deployer.Address)
	require.NoError(t, err)
	equalBig(t, new(big.Int).Mul(env.SendValue, big.NewInt(2)), amount)
}

// withdrawSingle funds from the deployer and withdraws it back.
func withdrawSingle(cheaper bool) func(context.Context, *T, *Env) {
	return func(ctx context.Context, t *T, env *Env) {
		_, err := env.Fund(ctx, env.Deployer, env.SendValue)
		require.NoError(t, err)

		startContract, err := env.Balance(ctx, env.FundMe.Address())
		require.NoError(t, err)
		startDeployer, err := env.Balance(ctx, env.Deployer.Address)
		require.NoError(t, err)

		receipt, err := env.Withdraw(ctx, env.Deployer, cheaper)
		require.NoError(t, err)

		endContract, err := env.Balance(ctx, env.FundMe.Address())
		require.NoError(t, err)
		endDeployer, err := env.Balance(ctx, env.Deployer.Address)
		require.NoError(t, err)

		equalBig(t, new(big.Int), endContract, "contract balance")
		equalBig(t,
			new(big.Int).Add(startDeployer, startContract),
			new(big.Int).Add(endDeployer, GasCost(receipt)),
			"deployer balance plus gas cost",
		)
	}
}

// withdrawMultiple funds from the deployer and five more accounts, then
// withdraws as the owner.
func withdrawMultiple(cheaper bool) func(context.Context, *T, *Env) {
	return func(ctx context.Context, t *T, env *Env) {
		require.GreaterOrEqual(t, len(env.Funders), UnitFunders, "funding accounts")
		funders := env.Funders[:UnitFunders]

		_, err := env.Fund(ctx, env.Deployer, env.SendValue)
		require.NoError(t, err)
		for _, f := range funders {
			_, err := env.Fund(ctx, f, env.SendValue)
			require.NoError(t, err)
		}

		startContract, err := env.Balance(ctx, env.FundMe.Address())
		require.NoError(t, err)
		startDeployer, err := env.Balance(ctx, env.Deployer.Address)
		require.NoError(t, err)

		receipt, err := env.Withdraw(ctx, env.Deployer, cheaper)
		require.NoError(t, err)
		env.Logger.Info("withdraw gas",
			slog.Bool("cheaper", cheaper),
			slog.Uint64("gas_used", receipt.GasUsed),
			slog.String("gas_cost", GasCost(receipt).String()),
		)

		endContract, err := env.Balance(ctx, env.FundMe.Address())
		require.NoError(t, err)
		endDeployer, err := env.Balance(ctx, env.Deployer.Address)
		require.NoError(t, err)

		equalBig(t, new(big.Int), endContract, "contract balance")
		equalBig(t,
			new(big.Int).Add(startDeployer, startContract),
			new(big.Int).Add(endDeployer, GasCost(receipt)),
			"deployer balance plus gas cost",
		)

		_, err = env.FundMe.GetFunder(callOpts(ctx), big.NewInt(0))
		assert.Error(t, err, "funder list should be empty")

		for _, f := range funders {
			amount, err := env.FundMe.GetAddressToAmountFunded(callOpts(ctx), f.Address)
			require.NoError(t, err)
			equalBig(t, new(big.Int), amount, "amount funded by %s", f.Address.Hex())
		}
	}
}

func checkOnlyOwner(ctx context.Context, t *T, env *Env) {
	require.NotEmpty(t, env.Funders, "funding accounts")
	_, err := env.Fund(ctx, env.Deployer, env.SendValue)
	require.NoError(t, err)

	attackers := env.Funders
	if len(attackers) > UnitFunders {
		attackers = attackers[:UnitFunders]
	}
	for _, attacker := range attackers {
		for _, cheaper := range []bool{false, true} {
			_, err := env.Withdraw(ctx, attacker, cheaper)
			assert.ErrorIs(t, err, contracts.RevertedWithCustomError(contracts.ErrNotOwner),
				"withdraw by %s (cheaper=%v)", attacker.Address.Hex(), cheaper)
		}
	}

	balance, err := env.Balance(ctx, env.FundMe.Address())
	require.NoError(t, err)
	equalBig(t, env.SendValue, balance, "contract balance after rejected withdrawals")
}

// withdrawOutcome is the observable end state of a withdrawal.
type withdrawOutcome struct {
	contractBalance *big.Int
	amounts         []*big.Int
	fundersCleared  bool
	ownerGain       *big.Int
	gasUsed         uint64
}

func withdrawWith(ctx context.Context, t *T, env *Env, n int, cheaper bool) withdrawOutcome {
	require.GreaterOrEqual(t, len(env.Funders), n, "funding accounts")
	funders := env.Funders[:n]
	for _, f := range funders {
		_, err := env.Fund(ctx, f, env.SendValue)
		require.NoError(t, err)
	}

	start, err := env.Balance(ctx, env.Deployer.Address)
	require.NoError(t, err)
	receipt, err := env.Withdraw(ctx, env.Deployer, cheaper)
	require.NoError(t, err)
	end, err := env.Balance(ctx, env.Deployer.Address)
	require.NoError(t, err)

	out := withdrawOutcome{gasUsed: receipt.GasUsed}
	out.contractBalance, err = env.Balance(ctx, env.FundMe.Address())
	require.NoError(t, err)
	out.ownerGain = new(big.Int).Sub(new(big.Int).Add(end, GasCost(receipt)), start)
	_, err = env.FundMe.GetFunder(callOpts(ctx), big.NewInt(0))
	out.fundersCleared = err != nil
	for _, f := range funders {
		amount, err := env.FundMe.GetAddressToAmountFunded(callOpts(ctx), f.Address)
		require.NoError(t, err)
		out.amounts = append(out.amounts, amount)
	}
	return out
}

// withdrawEquivalence runs withdraw and cheaperWithdraw on separate
// deployments and compares everything but gas.
func withdrawEquivalence(n int) func(context.Context, *T, *Env) {
	return func(ctx context.Context, t *T, env *Env) {
		plain := withdrawWith(ctx, t, env, n, false)

		other, err := env.Fresh(ctx)
		require.NoError(t, err)
		defer other.Close()
		cheap := withdrawWith(ctx, t, other, n, true)

		equalBig(t, plain.contractBalance, cheap.contractBalance, "contract balance")
		equalBig(t, new(big.Int), cheap.contractBalance, "contract balance")
		equalBig(t, plain.ownerGain, cheap.ownerGain, "owner gain")
		equalBig(t, new(big.Int).Mul(env.SendValue, big.NewInt(int64(n))), plain.ownerGain, "owner gain")
		assert.True(t, plain.fundersCleared, "withdraw clears funders")
		assert.True(t, cheap.fundersCleared, "cheaperWithdraw clears funders")
		require.Len(t, cheap.amounts, len(plain.amounts))
		for i := range plain.amounts {
			equalBig(t, plain.amounts[i], cheap.amounts[i], "amount of funder %d", i)
		}

		env.Logger.Info("withdraw gas comparison",
			slog.Int("funders", n),
			slog.Uint64("withdraw", plain.gasUsed),
			slog.Uint64("cheaper_withdraw", cheap.gasUsed),
		)
	}
}

func checkFundAndWithdraw(ctx context.Context, t *T, env *Env) {
	_, err := env.Fund(ctx, env.Deployer, env.SendValue)
	require.NoError(t, err)
	_, err = env.Withdraw(ctx, env.Deployer, false)
	require.NoError(t, err)

	balance, err := env.Balance(ctx, env.FundMe.Address())
	require.NoError(t, err)
	equalBig(t, new(big.Int), balance, "ending balance")
}
