// Package contracts holds the ABIs, constants and typed bindings for the
// FundMe crowdfunding contract and its MockV3Aggregator price feed.
package contracts

import (
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract names as they appear in compiled artifacts and deployment records.
const (
	FundMeName           = "FundMe"
	MockV3AggregatorName = "MockV3Aggregator"
)

// Mock price feed constructor values: 8 decimals, ETH at 2000 USD.
const (
	MockDecimals      uint8 = 8
	MockInitialAnswer int64 = 2000_00000000
)

// MinimumUSD is the smallest contribution FundMe accepts, in USD with 18 decimals.
var MinimumUSD = new(big.Int).Mul(big.NewInt(50), big.NewInt(1e18))

// Revert reasons and errors emitted by FundMe.
const (
	ErrNotEnoughETH = "You need to spend more ETH!"
	ErrNotOwner     = "FundMe__NotOwner"
)

// FundMeABI is the ABI of FundMe.sol.
const FundMeABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"priceFeed","type":"address","internalType":"address"}]},
	{"type":"error","name":"FundMe__NotOwner","inputs":[]},
	{"type":"fallback","stateMutability":"payable"},
	{"type":"receive","stateMutability":"payable"},
	{"type":"function","name":"MINIMUM_USD","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256","internalType":"uint256"}]},
	{"type":"function","name":"cheaperWithdraw","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"fund","stateMutability":"payable","inputs":[],"outputs":[]},
	{"type":"function","name":"getAddressToAmountFunded","stateMutability":"view","inputs":[{"name":"fundingAddress","type":"address","internalType":"address"}],"outputs":[{"name":"","type":"uint256","internalType":"uint256"}]},
	{"type":"function","name":"getFunder","stateMutability":"view","inputs":[{"name":"index","type":"uint256","internalType":"uint256"}],"outputs":[{"name":"","type":"address","internalType":"address"}]},
	{"type":"function","name":"getOwner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address","internalType":"address"}]},
	{"type":"function","name":"getPriceFeed","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address","internalType":"contract AggregatorV3Interface"}]},
	{"type":"function","name":"getVersion","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256","internalType":"uint256"}]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

// MockV3AggregatorABI is the ABI of the Chainlink MockV3Aggregator test contract.
const MockV3AggregatorABI = `[
	{"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"_decimals","type":"uint8","internalType":"uint8"},{"name":"_initialAnswer","type":"int256","internalType":"int256"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8","internalType":"uint8"}]},
	{"type":"function","name":"description","stateMutability":"pure","inputs":[],"outputs":[{"name":"","type":"string","internalType":"string"}]},
	{"type":"function","name":"getAnswer","stateMutability":"view","inputs":[{"name":"","type":"uint256","internalType":"uint256"}],"outputs":[{"name":"","type":"int256","internalType":"int256"}]},
	{"type":"function","name":"getRoundData","stateMutability":"view","inputs":[{"name":"_roundId","type":"uint80","internalType":"uint80"}],"outputs":[{"name":"roundId","type":"uint80","internalType":"uint80"},{"name":"answer","type":"int256","internalType":"int256"},{"name":"startedAt","type":"uint256","internalType":"uint256"},{"name":"updatedAt","type":"uint256","internalType":"uint256"},{"name":"answeredInRound","type":"uint80","internalType":"uint80"}]},
	{"type":"function","name":"getTimestamp","stateMutability":"view","inputs":[{"name":"","type":"uint256","internalType":"uint256"}],"outputs":[{"name":"","type":"uint256","internalType":"uint256"}]},
	{"type":"function","name":"latestAnswer","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"int256","internalType":"int256"}]},
	{"type":"function","name":"latestRound","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256","internalType":"uint256"}]},
	{"type":"function","name":"latestRoundData","stateMutability":"view","inputs":[],"outputs":[{"name":"roundId","type":"uint80","internalType":"uint80"},{"name":"answer","type":"int256","internalType":"int256"},{"name":"startedAt","type":"uint256","internalType":"uint256"},{"name":"updatedAt","type":"uint256","internalType":"uint256"},{"name":"answeredInRound","type":"uint80","internalType":"uint80"}]},
	{"type":"function","name":"latestTimestamp","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256","internalType":"uint256"}]},
	{"type":"function","name":"updateAnswer","stateMutability":"nonpayable","inputs":[{"name":"_answer","type":"int256","internalType":"int256"}],"outputs":[]},
	{"type":"function","name":"updateRoundData","stateMutability":"nonpayable","inputs":[{"name":"_roundId","type":"uint80","internalType":"uint80"},{"name":"_answer","type":"int256","internalType":"int256"},{"name":"_timestamp","type":"uint256","internalType":"uint256"},{"name":"_startedAt","type":"uint256","internalType":"uint256"}],"outputs":[]},
	{"type":"function","name":"version","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256","internalType":"uint256"}]}
]`

var (
	fundMeABI     = sync.OnceValues(func() (abi.ABI, error) { return abi.JSON(strings.NewReader(FundMeABI)) })
	aggregatorABI = sync.OnceValues(func() (abi.ABI, error) { return abi.JSON(strings.NewReader(MockV3AggregatorABI)) })
)

// ParsedFundMeABI returns the parsed FundMe ABI.
func ParsedFundMeABI() abi.ABI {
	parsed, err := fundMeABI()
	if err != nil {
		panic("contracts: invalid FundMe ABI: " + err.Error())
	}
	return parsed
}

// ParsedAggregatorABI returns the parsed MockV3Aggregator ABI.
func ParsedAggregatorABI() abi.ABI {
	parsed, err := aggregatorABI()
	if err != nil {
		panic("contracts: invalid MockV3Aggregator ABI: " + err.Error())
	}
	return parsed
}

// ABIFor returns the parsed ABI of a known contract name.
func ABIFor(name string) (abi.ABI, bool) {
	switch name {
	case FundMeName:
		return ParsedFundMeABI(), true
	case MockV3AggregatorName:
		return ParsedAggregatorABI(), true
	}
	return abi.ABI{}, false
}
