package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateway-fm/fundme/internal/gasreport"
	"github.com/gateway-fm/fundme/internal/network"
	"github.com/gateway-fm/fundme/internal/storage"
	"github.com/gateway-fm/fundme/pkg/types"
)

func TestNetwork(t *testing.T) {
	reg := network.DefaultRegistry()

	hardhat, err := reg.Resolve("hardhat")
	require.NoError(t, err)
	n := Network(hardhat)
	assert.Equal(t, types.OracleMock, n.Oracle)
	assert.Empty(t, n.OracleAddress)
	assert.True(t, n.Development)
	assert.True(t, n.RPCConfigured)

	sepolia, err := reg.Resolve("sepolia")
	require.NoError(t, err)
	n = Network(sepolia)
	assert.Equal(t, types.OracleKnown, n.Oracle)
	assert.Equal(t, network.SepoliaEthUsdFeed, n.OracleAddress)
	assert.Equal(t, uint64(6), n.Confirmations)
	assert.False(t, n.RPCConfigured)
}

func TestDeploymentExplorerLink(t *testing.T) {
	d := storage.Deployment{Network: "sepolia", Name: "FundMe", Address: "0xabc"}
	assert.Equal(t, "https://sepolia.etherscan.io/address/0xabc", Deployment(d, "https://sepolia.etherscan.io/").ExplorerURL)
	assert.Empty(t, Deployment(d, "").ExplorerURL)
}

func TestRun(t *testing.T) {
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	completed := started.Add(1500 * time.Millisecond)
	r := storage.Run{
		ID:          "id",
		Status:      storage.RunStatusFailed,
		StartedAt:   started,
		CompletedAt: &completed,
		Results: []storage.CheckResult{
			{Name: "a", Passed: true},
			{Name: "b", Error: "boom"},
			{Name: "c", Skipped: true},
		},
	}

	out := Run(r, true)
	assert.Equal(t, "failed", out.Status)
	assert.Equal(t, int64(1500), out.DurationMs)
	require.Len(t, out.Results, 3)
	assert.Equal(t, types.CheckPassed, out.Results[0].Status)
	assert.Equal(t, types.CheckFailed, out.Results[1].Status)
	assert.Equal(t, types.CheckSkipped, out.Results[2].Status)

	assert.Empty(t, Run(r, false).Results)
}

func TestGasReport(t *testing.T) {
	s := gasreport.Summarize([]storage.GasSample{
		{Contract: "FundMe", Method: "fund", GasUsed: 100},
		{Contract: "FundMe", Method: "fund", GasUsed: 300},
		{Contract: "FundMe", Method: gasreport.MethodDeployment, GasUsed: 1000},
	})
	r := GasReport("run", s)
	require.Len(t, r.Methods, 1)
	assert.Equal(t, uint64(200), r.Methods[0].Avg)
	assert.Equal(t, 2, r.Methods[0].Calls)
	require.Len(t, r.Deployments, 1)
	assert.Equal(t, uint64(1000), r.Deployments[0].Max)
}
