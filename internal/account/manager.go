package account

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the chain access the manager needs to move funds.
type Backend interface {
	bind.ContractTransactor
	bind.DeployBackend
}

// Manager owns the deployer account plus any extra signers a test run uses.
type Manager struct {
	deployer *Account
	signers  []*Account

	chainID *big.Int
	logger  *slog.Logger
}

// NewManager creates a manager. signers[0] is the deployer.
func NewManager(chainID *big.Int, signers []*Account, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(signers) == 0 {
		return nil, fmt.Errorf("at least one signer is required")
	}
	return &Manager{
		deployer: signers[0],
		signers:  signers,
		chainID:  chainID,
		logger:   logger,
	}, nil
}

// Deployer returns the named deployer account (index 0).
func (m *Manager) Deployer() *Account {
	return m.deployer
}

// Signers returns all accounts, deployer first.
func (m *Manager) Signers() []*Account {
	return m.signers
}

// ChainID returns the chain the manager signs for.
func (m *Manager) ChainID() *big.Int {
	return m.chainID
}

// Extra returns n accounts after the deployer, generating and funding new
// ones from the deployer when fewer are configured. Each generated account
// receives amount wei.
func (m *Manager) Extra(ctx context.Context, backend Backend, n int, amount *big.Int) ([]*Account, error) {
	have := len(m.signers) - 1
	for i := have; i < n; i++ {
		acc, err := Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate account %d: %w", i, err)
		}
		if err := m.Transfer(ctx, backend, m.deployer, acc, amount); err != nil {
			return nil, fmt.Errorf("failed to fund account %d: %w", i, err)
		}
		m.signers = append(m.signers, acc)
		m.logger.Debug("Funded generated account",
			slog.Int("idx", i+1),
			slog.String("address", acc.Address.Hex()),
		)
	}
	return m.signers[1 : n+1], nil
}

// Transfer sends amount wei from one account to another and waits until it is mined.
func (m *Manager) Transfer(ctx context.Context, backend Backend, from, to *Account, amount *big.Int) error {
	nonce, err := backend.PendingNonceAt(ctx, from.Address)
	if err != nil {
		return fmt.Errorf("failed to fetch nonce: %w", err)
	}
	tip, err := backend.SuggestGasTipCap(ctx)
	if err != nil {
		return fmt.Errorf("failed to suggest tip: %w", err)
	}
	head, err := backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch head: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   m.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       21000,
		To:        &to.Address,
		Value:     amount,
	})
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(m.chainID), from.PrivateKey)
	if err != nil {
		return fmt.Errorf("failed to sign tx: %w", err)
	}
	if err := backend.SendTransaction(ctx, signedTx); err != nil {
		return fmt.Errorf("failed to send tx: %w", err)
	}
	receipt, err := bind.WaitMined(ctx, backend, signedTx)
	if err != nil {
		return fmt.Errorf("failed waiting for transfer: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transfer %s failed", signedTx.Hash().Hex())
	}
	return nil
}
