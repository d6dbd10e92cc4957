// Package types contains the public output types of the fundme CLI and MCP
// server. These types form the external interface and must remain
// backwards-compatible.
package types

import "time"

// OracleKind is how a network gets its ETH/USD price feed.
type OracleKind string

const (
	OracleMock  OracleKind = "mock"  // MockV3Aggregator deployed locally
	OracleKnown OracleKind = "known" // live Chainlink aggregator
)

// CheckStatus is the outcome of a harness check.
type CheckStatus string

const (
	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
	CheckSkipped CheckStatus = "skipped"
)

// Network describes a resolved network profile.
type Network struct {
	Name          string     `json:"name" yaml:"name"`
	ChainID       int64      `json:"chainId" yaml:"chain_id"`
	Development   bool       `json:"development" yaml:"development"`
	InProcess     bool       `json:"inProcess,omitempty" yaml:"in_process,omitempty"`
	Oracle        OracleKind `json:"oracle" yaml:"oracle"`
	OracleAddress string     `json:"oracleAddress,omitempty" yaml:"oracle_address,omitempty"`
	Confirmations uint64     `json:"confirmations" yaml:"confirmations"`
	// RPCConfigured hides the endpoint, which often embeds an API key.
	RPCConfigured bool   `json:"rpcConfigured" yaml:"rpc_configured"`
	ExplorerURL   string `json:"explorerUrl,omitempty" yaml:"explorer_url,omitempty"`
}

// Deployment is a recorded contract deployment.
type Deployment struct {
	Network         string    `json:"network" yaml:"network"`
	ChainID         int64     `json:"chainId" yaml:"chain_id"`
	Name            string    `json:"name" yaml:"name"`
	Address         string    `json:"address" yaml:"address"`
	TxHash          string    `json:"txHash" yaml:"tx_hash"`
	BlockNumber     uint64    `json:"blockNumber" yaml:"block_number"`
	Deployer        string    `json:"deployer" yaml:"deployer"`
	ConstructorArgs string    `json:"constructorArgs,omitempty" yaml:"constructor_args,omitempty"`
	Confirmations   uint64    `json:"confirmations" yaml:"confirmations"`
	GasUsed         uint64    `json:"gasUsed" yaml:"gas_used"`
	Verified        bool      `json:"verified" yaml:"verified"`
	ExplorerURL     string    `json:"explorerUrl,omitempty" yaml:"explorer_url,omitempty"`
	CreatedAt       time.Time `json:"createdAt" yaml:"created_at"`
}

// CheckResult is the outcome of one harness check.
type CheckResult struct {
	Name       string      `json:"name" yaml:"name"`
	Status     CheckStatus `json:"status" yaml:"status"`
	Error      string      `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMs int64       `json:"durationMs" yaml:"duration_ms"`
}

// Run is a harness run.
type Run struct {
	ID           string        `json:"id" yaml:"id"`
	Suite        string        `json:"suite" yaml:"suite"`
	Network      string        `json:"network" yaml:"network"`
	ChainID      int64         `json:"chainId" yaml:"chain_id"`
	Status       string        `json:"status" yaml:"status"`
	Passed       int           `json:"passed" yaml:"passed"`
	Failed       int           `json:"failed" yaml:"failed"`
	Skipped      int           `json:"skipped" yaml:"skipped"`
	StartedAt    time.Time     `json:"startedAt" yaml:"started_at"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty" yaml:"completed_at,omitempty"`
	DurationMs   int64         `json:"durationMs,omitempty" yaml:"duration_ms,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty" yaml:"error_message,omitempty"`
	Results      []CheckResult `json:"results,omitempty" yaml:"results,omitempty"`
}

// RunList is a page of runs, newest first.
type RunList struct {
	Runs   []Run `json:"runs" yaml:"runs"`
	Total  int   `json:"total" yaml:"total"`
	Limit  int   `json:"limit" yaml:"limit"`
	Offset int   `json:"offset" yaml:"offset"`
}

// GasStats aggregates the gas of one method or deployment.
type GasStats struct {
	Contract string `json:"contract" yaml:"contract"`
	Method   string `json:"method,omitempty" yaml:"method,omitempty"`
	Min      uint64 `json:"min" yaml:"min"`
	Max      uint64 `json:"max" yaml:"max"`
	Avg      uint64 `json:"avg" yaml:"avg"`
	Calls    int    `json:"calls" yaml:"calls"`
}

// GasReport is the gas usage recorded by a run.
type GasReport struct {
	RunID       string     `json:"runId" yaml:"run_id"`
	Methods     []GasStats `json:"methods" yaml:"methods"`
	Deployments []GasStats `json:"deployments" yaml:"deployments"`
}

// CheckStatusOf maps check flags to a CheckStatus.
func CheckStatusOf(passed, skipped bool) CheckStatus {
	switch {
	case skipped:
		return CheckSkipped
	case passed:
		return CheckPassed
	}
	return CheckFailed
}
