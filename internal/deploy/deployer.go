package deploy

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/gateway-fm/fundme/internal/artifact"
	"github.com/gateway-fm/fundme/internal/confirm"
	"github.com/gateway-fm/fundme/internal/contracts"
	"github.com/gateway-fm/fundme/internal/gasreport"
	"github.com/gateway-fm/fundme/internal/metrics"
	"github.com/gateway-fm/fundme/internal/storage"
)

// DeployedContract is the outcome of a deployment.
type DeployedContract struct {
	Name            string
	Address         common.Address
	ConstructorArgs []byte
	TxHash          common.Hash
	BlockNumber     uint64
	GasUsed         uint64
	Confirmations   uint64
	// Reused is set when an identical recorded deployment was kept.
	Reused   bool
	Verified bool
}

// Deployer deploys artifacts and records them.
type Deployer struct {
	env *Environment
}

// NewDeployer creates a deployer for env.
func NewDeployer(env *Environment) (*Deployer, error) {
	if err := env.prepare(); err != nil {
		return nil, err
	}
	return &Deployer{env: env}, nil
}

// Deploy deploys a with constructor args, waits for the receipt and the
// profile's confirmations, then records the deployment. A recorded
// deployment with the same code hash and arguments that still has code on
// chain is reused.
func (d *Deployer) Deploy(ctx context.Context, name string, a *artifact.Artifact, args ...interface{}) (*DeployedContract, error) {
	env := d.env
	if a.Embedded() && !env.Profile.Development {
		return nil, fmt.Errorf("%w: %s on %s", ErrEmbeddedArtifact, name, env.Profile.Name)
	}

	packed, err := a.PackConstructor(args...)
	if err != nil {
		return nil, err
	}

	if dc, ok := d.reusable(ctx, name, a, packed); ok {
		env.Metrics.RecordDeployment(env.Profile.Name, name, metrics.ResultReused)
		return dc, nil
	}

	dc, receipt, err := d.deploy(ctx, name, a, packed, args)
	if err != nil {
		env.Metrics.RecordDeployment(env.Profile.Name, name, metrics.ResultFailed)
		return nil, err
	}

	record := &storage.Deployment{
		Network:         env.Profile.Name,
		ChainID:         env.Profile.ChainID,
		Name:            name,
		Address:         dc.Address.Hex(),
		TxHash:          dc.TxHash.Hex(),
		BlockNumber:     dc.BlockNumber,
		Deployer:        env.Deployer.Address.Hex(),
		CodeHash:        a.CodeHash(),
		ConstructorArgs: hex.EncodeToString(packed),
		ABI:             string(a.RawABI),
		Confirmations:   dc.Confirmations,
		GasUsed:         dc.GasUsed,
	}
	if err := env.Store.SaveDeployment(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record %s deployment: %w", name, err)
	}

	env.Gas.Record(name, gasreport.MethodDeployment, receipt)
	env.Metrics.RecordDeployment(env.Profile.Name, name, metrics.ResultDeployed)
	env.Logger.Info("Contract deployed",
		slog.String("name", name),
		slog.String("address", dc.Address.Hex()),
		slog.String("tx", dc.TxHash.Hex()),
		slog.Uint64("gas_used", dc.GasUsed),
		slog.Uint64("confirmations", dc.Confirmations),
	)
	return dc, nil
}

func (d *Deployer) deploy(ctx context.Context, name string, a *artifact.Artifact, packed []byte, args []interface{}) (*DeployedContract, *types.Receipt, error) {
	env := d.env
	opts, err := env.Deployer.TransactOpts(ctx, big.NewInt(env.Profile.ChainID))
	if err != nil {
		return nil, nil, err
	}

	addr, tx, _, err := bind.DeployContract(opts, a.ABI, a.Bytecode, env.Backend, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to deploy %s: %w", name, contracts.AsRevert(err, a.ABI))
	}
	env.Logger.Info("Deploying contract",
		slog.String("name", name),
		slog.String("tx", tx.Hash().Hex()),
		slog.String("expected_address", addr.Hex()),
	)

	receipt, err := bind.WaitMined(ctx, env.Backend, tx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed waiting for %s deployment: %w", name, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, nil, fmt.Errorf("%s deployment %s reverted", name, tx.Hash().Hex())
	}
	if !d.hasCode(ctx, addr) {
		return nil, nil, fmt.Errorf("%s deployment %s: %w", name, tx.Hash().Hex(), bind.ErrNoCodeAfterDeploy)
	}

	start := time.Now()
	confs, err := confirm.Wait(ctx, env.Heads, receipt, env.Profile.RequiredConfirmations())
	env.Metrics.ObserveConfirmationWait(env.Profile.Name, time.Since(start))
	if err != nil {
		return nil, nil, err
	}

	return &DeployedContract{
		Name:            name,
		Address:         addr,
		ConstructorArgs: packed,
		TxHash:          tx.Hash(),
		BlockNumber:     receipt.BlockNumber.Uint64(),
		GasUsed:         receipt.GasUsed,
		Confirmations:   confs,
	}, receipt, nil
}

// reusable returns the recorded deployment of name when it matches a and
// args and its code is still on chain.
func (d *Deployer) reusable(ctx context.Context, name string, a *artifact.Artifact, packed []byte) (*DeployedContract, bool) {
	env := d.env
	rec, err := env.Store.GetDeployment(ctx, env.Profile.Name, name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			env.Logger.Warn("Failed to load recorded deployment, will deploy",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	if rec.ChainID != env.Profile.ChainID || rec.CodeHash != a.CodeHash() {
		return nil, false
	}
	recArgs, err := hexBytes(rec.ConstructorArgs)
	if err != nil || !bytes.Equal(recArgs, packed) {
		return nil, false
	}
	addr := common.HexToAddress(rec.Address)
	if !d.hasCode(ctx, addr) {
		env.Logger.Info("Recorded contract no longer exists",
			slog.String("name", name),
			slog.String("address", rec.Address),
		)
		return nil, false
	}

	env.Logger.Info(fmt.Sprintf("reusing %s at %s", name, rec.Address))
	return &DeployedContract{
		Name:            name,
		Address:         addr,
		ConstructorArgs: recArgs,
		TxHash:          common.HexToHash(rec.TxHash),
		BlockNumber:     rec.BlockNumber,
		GasUsed:         rec.GasUsed,
		Confirmations:   rec.Confirmations,
		Reused:          true,
		Verified:        rec.Verified,
	}, true
}

func (d *Deployer) hasCode(ctx context.Context, addr common.Address) bool {
	code, err := d.env.Backend.CodeAt(ctx, addr, nil)
	if err != nil {
		d.env.Logger.Warn("Failed to check contract code",
			slog.String("address", addr.Hex()),
			slog.String("error", err.Error()),
		)
		return false
	}
	return len(code) > 0
}

func hexBytes(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
