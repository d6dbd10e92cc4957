// Package confirm waits for transactions to gain block confirmations.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
)

// ErrNoReceipt is returned when Wait is given a receipt without a block.
var ErrNoReceipt = errors.New("receipt has no block number")

// HeadSource reports chain progress.
type HeadSource interface {
	// WaitForBlock blocks until the chain head is at least n and returns the head.
	WaitForBlock(ctx context.Context, n uint64) (uint64, error)
}

// BlockNumberer is the part of a chain client the Poller needs.
type BlockNumberer interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Default poll intervals.
const (
	DefaultPollInterval    = 200 * time.Millisecond
	DefaultMaxPollInterval = 4 * time.Second
)

// Poller is a HeadSource backed by eth_blockNumber polling with capped
// exponential backoff.
type Poller struct {
	client      BlockNumberer
	interval    time.Duration
	maxInterval time.Duration
	logger      *slog.Logger
}

// NewPoller creates a poller with the default intervals.
func NewPoller(client BlockNumberer, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:      client,
		interval:    DefaultPollInterval,
		maxInterval: DefaultMaxPollInterval,
		logger:      logger,
	}
}

// WithIntervals overrides the initial and maximum poll interval.
func (p *Poller) WithIntervals(initial, max time.Duration) *Poller {
	p.interval = initial
	p.maxInterval = max
	return p
}

// WaitForBlock polls until the head reaches n.
func (p *Poller) WaitForBlock(ctx context.Context, n uint64) (uint64, error) {
	backoff := p.interval
	for {
		head, err := p.client.BlockNumber(ctx)
		if err != nil {
			p.logger.Debug("block number poll failed", slog.String("error", err.Error()))
		} else if head >= n {
			return head, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, p.maxInterval)
	}
}

// Wait blocks until receipt has n confirmations: the head is at least
// receiptBlock + n - 1. n below 1 is treated as 1. It returns the number of
// confirmations observed when it returned.
func Wait(ctx context.Context, src HeadSource, receipt *types.Receipt, n uint64) (uint64, error) {
	if receipt == nil || receipt.BlockNumber == nil {
		return 0, ErrNoReceipt
	}
	if n < 1 {
		n = 1
	}
	mined := receipt.BlockNumber.Uint64()
	head, err := src.WaitForBlock(ctx, mined+n-1)
	if err != nil {
		return 0, fmt.Errorf("waiting for %d confirmations of %s: %w", n, receipt.TxHash.Hex(), err)
	}
	return head - mined + 1, nil
}
