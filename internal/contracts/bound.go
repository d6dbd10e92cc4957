package contracts

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// bound wraps a BoundContract so call and transact failures come back as
// decoded *RevertError values.
type bound struct {
	address  common.Address
	abi      abi.ABI
	backend  bind.ContractBackend
	contract *bind.BoundContract
}

func newBound(address common.Address, parsed abi.ABI, backend bind.ContractBackend) *bound {
	return &bound{
		address:  address,
		abi:      parsed,
		backend:  backend,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}
}

func (b *bound) call(opts *bind.CallOpts, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := b.contract.Call(opts, &out, method, args...); err != nil {
		return nil, AsRevert(err, b.abi)
	}
	return out, nil
}

// transact estimates gas itself so a revert during estimation keeps its payload.
func (b *bound) transact(opts *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error) {
	input, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	return b.rawTransact(opts, input)
}

func (b *bound) rawTransact(opts *bind.TransactOpts, input []byte) (*types.Transaction, error) {
	if opts.GasLimit == 0 {
		ctx := opts.Context
		if ctx == nil {
			ctx = context.Background()
		}
		gas, err := b.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:  opts.From,
			To:    &b.address,
			Value: opts.Value,
			Data:  input,
		})
		if err != nil {
			return nil, AsRevert(err, b.abi)
		}
		withGas := *opts
		withGas.GasLimit = gas
		opts = &withGas
	}
	tx, err := b.contract.RawTransact(opts, input)
	if err != nil {
		return nil, AsRevert(err, b.abi)
	}
	return tx, nil
}
