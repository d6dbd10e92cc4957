package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// RoundData is the tuple returned by latestRoundData and getRoundData.
type RoundData struct {
	RoundID         *big.Int
	Answer          *big.Int
	StartedAt       *big.Int
	UpdatedAt       *big.Int
	AnsweredInRound *big.Int
}

// Aggregator is a typed binding for an AggregatorV3Interface price feed,
// including the MockV3Aggregator extensions.
type Aggregator struct {
	*bound
}

// NewAggregator binds a price feed at address.
func NewAggregator(address common.Address, backend bind.ContractBackend) *Aggregator {
	return &Aggregator{bound: newBound(address, ParsedAggregatorABI(), backend)}
}

// Address returns the feed address.
func (a *Aggregator) Address() common.Address { return a.address }

// Decimals returns the number of decimals of the answer.
func (a *Aggregator) Decimals(opts *bind.CallOpts) (uint8, error) {
	out, err := a.call(opts, "decimals")
	if err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// Version returns the aggregator version.
func (a *Aggregator) Version(opts *bind.CallOpts) (*big.Int, error) {
	return a.bigCall(opts, "version")
}

// LatestAnswer returns the most recent answer.
func (a *Aggregator) LatestAnswer(opts *bind.CallOpts) (*big.Int, error) {
	return a.bigCall(opts, "latestAnswer")
}

// LatestRoundData returns the most recent round.
func (a *Aggregator) LatestRoundData(opts *bind.CallOpts) (RoundData, error) {
	return a.roundCall(opts, "latestRoundData")
}

// GetRoundData returns a historical round.
func (a *Aggregator) GetRoundData(opts *bind.CallOpts, roundID *big.Int) (RoundData, error) {
	return a.roundCall(opts, "getRoundData", roundID)
}

// UpdateAnswer pushes a new round with answer. Mock only.
func (a *Aggregator) UpdateAnswer(opts *bind.TransactOpts, answer *big.Int) (*types.Transaction, error) {
	return a.transact(opts, "updateAnswer", answer)
}

func (a *Aggregator) roundCall(opts *bind.CallOpts, method string, args ...interface{}) (RoundData, error) {
	out, err := a.call(opts, method, args...)
	if err != nil {
		return RoundData{}, err
	}
	return RoundData{
		RoundID:         *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Answer:          *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		StartedAt:       *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
		UpdatedAt:       *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		AnsweredInRound: *abi.ConvertType(out[4], new(*big.Int)).(**big.Int),
	}, nil
}
