// Package storage provides persistence for deployments and harness history.
package storage

import "time"

// Deployment is a recorded contract deployment.
// JSON tags use camelCase to match the CLI and MCP output.
type Deployment struct {
	ID              int64     `json:"id"`
	Network         string    `json:"network"`
	ChainID         int64     `json:"chainId"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	TxHash          string    `json:"txHash"`
	BlockNumber     uint64    `json:"blockNumber"`
	Deployer        string    `json:"deployer"`
	CodeHash        string    `json:"codeHash"`
	ConstructorArgs string    `json:"constructorArgs,omitempty"` // hex, no selector
	ABI             string    `json:"abi,omitempty"`
	Confirmations   uint64    `json:"confirmations"`
	GasUsed         uint64    `json:"gasUsed"`
	Verified        bool      `json:"verified"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RunStatus is the lifecycle state of a harness run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
	RunStatusError   RunStatus = "error"
)

// Run is a persisted harness run with its per-check results.
type Run struct {
	ID           string        `json:"id"`
	Suite        string        `json:"suite"`
	Network      string        `json:"network"`
	ChainID      int64         `json:"chainId"`
	StartedAt    time.Time     `json:"startedAt"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
	Status       RunStatus     `json:"status"`
	Passed       int           `json:"passed"`
	Failed       int           `json:"failed"`
	Skipped      int           `json:"skipped"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Results      []CheckResult `json:"results,omitempty"`
}

// CheckResult is the outcome of a single harness check.
type CheckResult struct {
	Name       string `json:"name"`
	Passed     bool   `json:"passed"`
	Skipped    bool   `json:"skipped,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// PaginatedRuns is a page of runs, newest first.
type PaginatedRuns struct {
	Runs   []Run `json:"runs"`
	Total  int   `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// GasSample is the gas used by one transaction.
type GasSample struct {
	Contract string `json:"contract"`
	Method   string `json:"method"`
	GasUsed  uint64 `json:"gasUsed"`
	TxHash   string `json:"txHash,omitempty"`
}
