// Package devchain is an automining single-node development chain that
// lives inside the process, the equivalent of the "hardhat" network.
//
// It wraps go-ethereum's simulated backend: a full in-memory node whose
// blocks are sealed on demand. Chain seals one block per transaction so
// bindings that wait for receipts behave as they do against hardhat.
package devchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/eth/ethconfig"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/node"
	"github.com/ethereum/go-ethereum/params"

	"github.com/gateway-fm/fundme/internal/account"
)

// Defaults for New.
const (
	DefaultChainID  int64  = 31337
	DefaultGasLimit uint64 = 30_000_000
)

// DefaultBalance is the genesis balance of every development account: 10000 ETH.
var DefaultBalance = new(big.Int).Mul(big.NewInt(10000), big.NewInt(params.Ether))

// Config configures a Chain. Zero values take defaults.
type Config struct {
	ChainID  int64
	Accounts []*account.Account
	Balance  *big.Int
	GasLimit uint64
	Logger   *slog.Logger
}

// Chain is the in-process development chain. It is safe for concurrent use.
type Chain struct {
	simulated.Client

	backend  *simulated.Backend
	mu       sync.Mutex
	accounts []*account.Account
	logger   *slog.Logger
}

// New starts a chain whose genesis funds the configured accounts.
func New(cfg Config) (*Chain, error) {
	if cfg.ChainID == 0 {
		cfg.ChainID = DefaultChainID
	}
	if cfg.Balance == nil {
		cfg.Balance = DefaultBalance
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = DefaultGasLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.Accounts) == 0 {
		accounts, err := account.DevelopmentAccounts()
		if err != nil {
			return nil, fmt.Errorf("failed to load development accounts: %w", err)
		}
		cfg.Accounts = accounts
	}

	alloc := make(types.GenesisAlloc, len(cfg.Accounts))
	for _, acc := range cfg.Accounts {
		alloc[acc.Address] = types.Account{Balance: new(big.Int).Set(cfg.Balance)}
	}
	backend := simulated.NewBackend(alloc,
		simulated.WithBlockGasLimit(cfg.GasLimit),
		simulated.WithCallGasLimit(cfg.GasLimit),
		withChainID(cfg.ChainID),
	)

	cfg.Logger.Debug("development chain started",
		slog.Int64("chain_id", cfg.ChainID),
		slog.Int("accounts", len(cfg.Accounts)),
		slog.Uint64("gas_limit", cfg.GasLimit))

	return &Chain{
		Client:   backend.Client(),
		backend:  backend,
		accounts: cfg.Accounts,
		logger:   cfg.Logger,
	}, nil
}

// withChainID replaces the simulated backend's fixed dev chain id.
func withChainID(id int64) func(*node.Config, *ethconfig.Config) {
	return func(_ *node.Config, ethConf *ethconfig.Config) {
		chainConfig := *ethConf.Genesis.Config
		chainConfig.ChainID = big.NewInt(id)
		ethConf.Genesis.Config = &chainConfig
		ethConf.NetworkId = uint64(id)
	}
}

// Accounts returns the funded development accounts.
func (ch *Chain) Accounts() []*account.Account {
	return ch.accounts
}

// SendTransaction submits tx and seals it into its own block.
func (ch *Chain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if err := ch.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	hash := ch.backend.Commit()
	ch.logger.Debug("sealed block", slog.String("tx", tx.Hash().Hex()), slog.String("block", hash.Hex()))
	return nil
}

// Commit seals a block with whatever is pending, possibly nothing.
func (ch *Chain) Commit() common.Hash {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.backend.Commit()
}

// Close stops the node. The chain is unusable afterwards.
func (ch *Chain) Close() {
	if err := ch.backend.Close(); err != nil {
		ch.logger.Warn("failed to stop development chain", slog.String("error", err.Error()))
	}
}
