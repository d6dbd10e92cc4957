// Package chain defines the node access every deploy and test step uses.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend is satisfied by *ethclient.Client and by the in-process development chain.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

var _ Backend = (*ethclient.Client)(nil)

// DefaultDialTimeout bounds the initial connection and chain id probe.
const DefaultDialTimeout = 15 * time.Second

// Dial connects to an RPC endpoint and checks it serves the expected chain.
// expectedChainID <= 0 skips the check.
func Dial(ctx context.Context, url string, expectedChainID int64) (*ethclient.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, DefaultDialTimeout)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	if expectedChainID > 0 {
		if err := CheckChainID(dialCtx, client, expectedChainID); err != nil {
			client.Close()
			return nil, err
		}
	}
	return client, nil
}

// CheckChainID fails when the node reports a different chain than expected.
func CheckChainID(ctx context.Context, b interface {
	ChainID(ctx context.Context) (*big.Int, error)
}, expected int64) error {
	got, err := b.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch chain id: %w", err)
	}
	if !got.IsInt64() || got.Int64() != expected {
		return fmt.Errorf("chain id mismatch: node reports %s, network expects %d", got, expected)
	}
	return nil
}
