package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateway-fm/fundme/internal/network"
	"github.com/gateway-fm/fundme/internal/storage"
	"github.com/gateway-fm/fundme/pkg/types"
)

const runID = "7b0f5c1e-2d4a-4f5e-9a61-3c2b1d0e9f88"

func newTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.SaveDeployment(ctx, &storage.Deployment{
		Network:     "sepolia",
		ChainID:     network.SepoliaChainID,
		Name:        "FundMe",
		Address:     "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		TxHash:      "0x01",
		BlockNumber: 4_200_000,
		GasUsed:     1_034_567,
		Verified:    true,
	}))

	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	run := &storage.Run{
		ID:        runID,
		Suite:     "unit",
		Network:   "hardhat",
		ChainID:   network.HardhatChainID,
		StartedAt: started,
		Status:    storage.RunStatusRunning,
	}
	require.NoError(t, store.CreateRun(ctx, run))
	completed := started.Add(2 * time.Second)
	run.CompletedAt = &completed
	run.Status = storage.RunStatusFailed
	run.Passed = 1
	run.Failed = 1
	run.Results = []storage.CheckResult{
		{Name: "fund/updates the amount funded data structure", Passed: true, DurationMs: 40},
		{Name: "withdraw/only allows the owner to withdraw", Error: "expected revert FundMe__NotOwner", DurationMs: 55},
	}
	require.NoError(t, store.CompleteRun(ctx, run))
	require.NoError(t, store.BulkInsertGasSamples(ctx, runID, []storage.GasSample{
		{Contract: "FundMe", Method: "deployment", GasUsed: 1_034_567},
		{Contract: "FundMe", Method: "fund", GasUsed: 88_000},
		{Contract: "FundMe", Method: "fund", GasUsed: 54_000},
	}))
	return store
}

func newTestServer(t *testing.T) *server.MCPServer {
	t.Helper()
	s := server.NewMCPServer("fundme", "test", server.WithToolCapabilities(true))
	RegisterTools(s, NewSource(network.DefaultRegistry(), "hardhat", newTestStore(t)))
	return s
}

type toolResult struct {
	Text    string
	IsError bool
}

// call sends a JSON-RPC tools/call through the server.
func call(t *testing.T, s *server.MCPServer, name string, args map[string]any) toolResult {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(s.HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.Nil(t, resp.Error, "tools/call %s: %s", name, raw)
	require.NotEmpty(t, resp.Result.Content)
	return toolResult{Text: resp.Result.Content[0].Text, IsError: resp.Result.IsError}
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t)

	raw, err := json.Marshal(s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)))
	require.NoError(t, err)

	for _, name := range []string{
		"fundme_networks",
		"fundme_resolve_network",
		"fundme_deployments",
		"fundme_runs",
		"fundme_run",
		"fundme_gas_report",
	} {
		assert.Contains(t, string(raw), fmt.Sprintf("%q", name))
	}
}

func TestNetworksTool(t *testing.T) {
	s := newTestServer(t)

	res := call(t, s, "fundme_networks", nil)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "## Networks")
	assert.Contains(t, res.Text, "**hardhat** (chain 31337, development)")
	assert.Contains(t, res.Text, "**sepolia** (chain 11155111, public)")
}

func TestResolveNetworkTool(t *testing.T) {
	s := newTestServer(t)

	res := call(t, s, "fundme_resolve_network", map[string]any{"name": "sepolia"})
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, kv("Kind", "public"))
	assert.Contains(t, res.Text, kv("Confirmations", 6))
	assert.Contains(t, res.Text, "https://sepolia.etherscan.io")

	res = call(t, s, "fundme_resolve_network", nil)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "## Network hardhat")
	assert.Contains(t, res.Text, "MockV3Aggregator")

	res = call(t, s, "fundme_resolve_network", map[string]any{"name": "nope"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "unknown network")
}

func TestDeploymentsTool(t *testing.T) {
	s := newTestServer(t)

	res := call(t, s, "fundme_deployments", nil)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "**FundMe** on sepolia")
	assert.Contains(t, res.Text, "gas 1,034,567, verified")
	assert.Contains(t, res.Text, "https://sepolia.etherscan.io/address/0x5FbDB2315678afecb367f032d93F642f64180aa3")

	res = call(t, s, "fundme_deployments", map[string]any{"network": "localhost"})
	assert.Contains(t, res.Text, "No deployments recorded.")
}

func TestRunsTools(t *testing.T) {
	s := newTestServer(t)

	res := call(t, s, "fundme_runs", map[string]any{"limit": 5})
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, kv("Total Runs", "1"))
	assert.Contains(t, res.Text, "`"+runID+"` unit on hardhat: **failed** (1 passed, 1 failed, 0 skipped)")

	res = call(t, s, "fundme_runs", map[string]any{"offset": 10})
	assert.Contains(t, res.Text, "No test runs found.")

	res = call(t, s, "fundme_run", map[string]any{"id": runID})
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, kv("Pass Rate", "50.0%"))
	assert.Contains(t, res.Text, kv("Duration", "2s"))
	assert.Contains(t, res.Text, "- [passed] fund/updates the amount funded data structure (40ms)")
	assert.Contains(t, res.Text, "- [failed] withdraw/only allows the owner to withdraw (55ms)\n  expected revert FundMe__NotOwner")

	res = call(t, s, "fundme_run", map[string]any{"id": "missing"})
	assert.True(t, res.IsError)
	assert.Equal(t, "Run missing not found", res.Text)

	res = call(t, s, "fundme_run", nil)
	assert.True(t, res.IsError)
}

func TestGasReportTool(t *testing.T) {
	s := newTestServer(t)

	res := call(t, s, "fundme_gas_report", nil)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, kv("Run", runID))
	assert.Contains(t, res.Text, "- FundMe.fund: avg 71,000 (min 54,000, max 88,000, 2 calls)")
	assert.Contains(t, res.Text, "- FundMe: avg 1,034,567 (1 deployments)")

	res = call(t, s, "fundme_gas_report", map[string]any{"run_id": "missing"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "Run the test suite first")
}

func TestGasReportWithoutRuns(t *testing.T) {
	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	src := NewSource(network.DefaultRegistry(), "hardhat", store)
	_, err = src.GasReport(context.Background(), "")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSourceNetworkDefaultsToSelected(t *testing.T) {
	src := NewSource(network.DefaultRegistry(), "sepolia", newTestStore(t))

	n, err := src.Network("")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", n.Name)
	assert.Equal(t, types.OracleKnown, n.Oracle)
}

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"999", "999"},
		{"1000", "1,000"},
		{"1034567", "1,034,567"},
		{"-5", "-5"},
		{"-123456", "-123,456"},
	}
	for _, tt := range tests {
		if got := groupDigits(tt.in); got != tt.want {
			t.Errorf("groupDigits(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{40, "40ms"},
		{2000, "2s"},
		{61500, "1m1.5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.ms); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
	if got := formatGas(30_000_000); got != "30,000,000" {
		t.Errorf("formatGas = %q", got)
	}
}
