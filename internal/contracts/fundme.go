package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// FundMe is a typed binding for a deployed FundMe contract.
type FundMe struct {
	*bound
}

// NewFundMe binds a FundMe instance at address.
func NewFundMe(address common.Address, backend bind.ContractBackend) *FundMe {
	return &FundMe{bound: newBound(address, ParsedFundMeABI(), backend)}
}

// Address returns the contract address.
func (f *FundMe) Address() common.Address { return f.address }

// Fund contributes opts.Value wei.
func (f *FundMe) Fund(opts *bind.TransactOpts) (*types.Transaction, error) {
	return f.transact(opts, "fund")
}

// Send transfers opts.Value with empty calldata, hitting receive().
func (f *FundMe) Send(opts *bind.TransactOpts) (*types.Transaction, error) {
	return f.rawTransact(opts, nil)
}

// Withdraw sends the whole balance to the owner and resets every record.
func (f *FundMe) Withdraw(opts *bind.TransactOpts) (*types.Transaction, error) {
	return f.transact(opts, "withdraw")
}

// CheaperWithdraw is Withdraw with the funder list read from memory.
func (f *FundMe) CheaperWithdraw(opts *bind.TransactOpts) (*types.Transaction, error) {
	return f.transact(opts, "cheaperWithdraw")
}

// GetFunder returns the funder at index. Reverts with a panic when out of range.
func (f *FundMe) GetFunder(opts *bind.CallOpts, index *big.Int) (common.Address, error) {
	out, err := f.call(opts, "getFunder", index)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// GetAddressToAmountFunded returns the total contributed by funder since the last withdrawal.
func (f *FundMe) GetAddressToAmountFunded(opts *bind.CallOpts, funder common.Address) (*big.Int, error) {
	return f.bigCall(opts, "getAddressToAmountFunded", funder)
}

// GetOwner returns the immutable owner.
func (f *FundMe) GetOwner(opts *bind.CallOpts) (common.Address, error) {
	out, err := f.call(opts, "getOwner")
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// GetPriceFeed returns the aggregator the contract was constructed with.
func (f *FundMe) GetPriceFeed(opts *bind.CallOpts) (common.Address, error) {
	out, err := f.call(opts, "getPriceFeed")
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// GetVersion returns the price feed version.
func (f *FundMe) GetVersion(opts *bind.CallOpts) (*big.Int, error) {
	return f.bigCall(opts, "getVersion")
}

// MinimumUSD returns MINIMUM_USD.
func (f *FundMe) MinimumUSD(opts *bind.CallOpts) (*big.Int, error) {
	return f.bigCall(opts, "MINIMUM_USD")
}

func (b *bound) bigCall(opts *bind.CallOpts, method string, args ...interface{}) (*big.Int, error) {
	out, err := b.call(opts, method, args...)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}
