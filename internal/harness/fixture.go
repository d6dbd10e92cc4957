package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"

	"github.com/gateway-fm/fundme/internal/account"
	"github.com/gateway-fm/fundme/internal/artifact"
	"github.com/gateway-fm/fundme/internal/chain"
	"github.com/gateway-fm/fundme/internal/contracts"
	"github.com/gateway-fm/fundme/internal/deploy"
	"github.com/gateway-fm/fundme/internal/devchain"
	"github.com/gateway-fm/fundme/internal/gasreport"
	"github.com/gateway-fm/fundme/internal/metrics"
	"github.com/gateway-fm/fundme/internal/network"
	"github.com/gateway-fm/fundme/internal/storage"
)

// ErrNotDeployed is returned when a persistent network has no recorded FundMe.
var ErrNotDeployed = errors.New("FundMe is not deployed")

// DefaultFunderBalance is what each generated funder receives on public networks.
var DefaultFunderBalance = new(big.Int).Mul(big.NewInt(2), big.NewInt(params.Ether))

// Fixture produces an Env for a check.
type Fixture interface {
	Setup(ctx context.Context) (*Env, error)
}

// InProcessFixture deploys everything onto a new in-process chain for each
// Setup, so every check starts from the same state.
type InProcessFixture struct {
	Profile *network.Profile
	Gas     *gasreport.Collector
	Metrics *metrics.PrometheusMetrics
	Logger  *slog.Logger
}

// Setup implements Fixture.
func (f *InProcessFixture) Setup(ctx context.Context) (*Env, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ch, err := devchain.New(devchain.Config{ChainID: f.Profile.ChainID, Logger: logger})
	if err != nil {
		return nil, err
	}
	accounts := ch.Accounts()
	env, err := redeploy(ctx, f, &deploy.Environment{
		Profile:   f.Profile,
		Backend:   ch,
		Deployer:  accounts[0],
		Artifacts: artifact.Builtin{},
		Gas:       f.Gas,
		Metrics:   f.Metrics,
	}, accounts[1:], logger)
	if err != nil {
		ch.Close()
		return nil, err
	}
	closeStore := env.close
	env.close = func() {
		closeStore()
		ch.Close()
	}
	return env, nil
}

// RPCFixture runs against a node. On development networks every Setup
// redeploys with a throwaway record store. Other networks bind to the
// recorded deployment.
type RPCFixture struct {
	Profile   *network.Profile
	Backend   chain.Backend
	Signers   []*account.Account
	Artifacts artifact.Source
	Store     storage.DeploymentStore
	// Funders is how many funding accounts the checks need. Missing ones
	// are generated and funded from the deployer with FunderBalance.
	Funders       int
	FunderBalance *big.Int
	Gas           *gasreport.Collector
	Metrics       *metrics.PrometheusMetrics
	Logger        *slog.Logger

	once    sync.Once
	funders []*account.Account
	err     error
}

// Setup implements Fixture.
func (f *RPCFixture) Setup(ctx context.Context) (*Env, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	funders, err := f.ensureFunders(ctx, logger)
	if err != nil {
		return nil, err
	}

	if f.Profile.Development {
		return redeploy(ctx, f, &deploy.Environment{
			Profile:   f.Profile,
			Backend:   f.Backend,
			Deployer:  f.Signers[0],
			Artifacts: f.Artifacts,
			Gas:       f.Gas,
			Metrics:   f.Metrics,
		}, funders, logger)
	}

	rec, err := f.Store.GetDeployment(ctx, f.Profile.Name, contracts.FundMeName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w on %s: run deploy first", ErrNotDeployed, f.Profile.Name)
	}
	if err != nil {
		return nil, err
	}
	env := bindEnv(f.Profile, f.Backend, f.Signers[0], common.HexToAddress(rec.Address), f.Profile.Oracle().Address(), funders, f.Gas, logger)
	env.fixture = f
	return env, nil
}

func (f *RPCFixture) ensureFunders(ctx context.Context, logger *slog.Logger) ([]*account.Account, error) {
	f.once.Do(func() {
		if len(f.Signers) == 0 {
			f.err = fmt.Errorf("at least one signer is required")
			return
		}
		m, err := account.NewManager(big.NewInt(f.Profile.ChainID), f.Signers, logger)
		if err != nil {
			f.err = err
			return
		}
		if f.Funders == 0 {
			f.funders = f.Signers[1:]
			return
		}
		amount := f.FunderBalance
		if amount == nil {
			amount = DefaultFunderBalance
		}
		f.funders, f.err = m.Extra(ctx, f.Backend, f.Funders, amount)
	})
	return f.funders, f.err
}

// redeploy runs every deploy step on denv with a private in-memory store
// and binds the result.
func redeploy(ctx context.Context, fx Fixture, denv *deploy.Environment, funders []*account.Account, logger *slog.Logger) (*Env, error) {
	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		return nil, err
	}
	denv.Store = store
	// Fixture resets would repeat the deploy banner before every check.
	denv.Logger = slog.New(slog.DiscardHandler)

	if err := deploy.Run(ctx, denv, []string{deploy.TagAll}); err != nil {
		store.Close()
		return nil, err
	}
	rec, err := store.GetDeployment(ctx, denv.Profile.Name, contracts.FundMeName)
	if err != nil {
		store.Close()
		return nil, err
	}

	oracle, err := deploy.ResolveOracle(ctx, denv)
	if err != nil {
		store.Close()
		return nil, err
	}

	env := bindEnv(denv.Profile, denv.Backend, denv.Deployer, common.HexToAddress(rec.Address), oracle.Address(), funders, denv.Gas, logger)
	env.fixture = fx
	env.close = func() { store.Close() }
	return env, nil
}

func bindEnv(p *network.Profile, backend chain.Backend, deployer *account.Account, fundMe, feed common.Address, funders []*account.Account, gas *gasreport.Collector, logger *slog.Logger) *Env {
	return &Env{
		Profile:   p,
		Backend:   backend,
		ChainID:   big.NewInt(p.ChainID),
		Deployer:  deployer,
		Funders:   funders,
		FundMe:    contracts.NewFundMe(fundMe, backend),
		PriceFeed: contracts.NewAggregator(feed, backend),
		SendValue: new(big.Int).Set(DefaultSendValue),
		Gas:       gas,
		Logger:    logger,
	}
}
