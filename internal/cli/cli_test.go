package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gateway-fm/fundme/internal/config"
	"github.com/gateway-fm/fundme/internal/contracts"
	"github.com/gateway-fm/fundme/internal/network"
	"github.com/gateway-fm/fundme/pkg/types"
)

type project struct {
	config      string
	gasReport   string
	metricsFile string
}

// newProject writes a config file into a temp dir and clears the
// environment variables the loader reads.
func newProject(t *testing.T) project {
	t.Helper()
	for _, k := range []string{
		"NETWORK", "PRIVATE_KEY", "ETHERSCAN_API_KEY", "COINMARKETCAP_API_KEY",
		"DATABASE_PATH", "ARTIFACTS_DIR", "LOG_LEVEL", "LOG_FORMAT",
		"METRICS_FILE", "REPORT_GAS", "SEPOLIA_RPC_URL",
	} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	p := project{
		config:      filepath.Join(dir, "fundme.toml"),
		gasReport:   filepath.Join(dir, "gas-report.txt"),
		metricsFile: filepath.Join(dir, "fundme.prom"),
	}
	content := fmt.Sprintf(`database_path = %q
artifacts_dir = %q
metrics_file = %q

[gas_reporter]
output_file = %q
`, filepath.Join(dir, "data", "fundme.db"), filepath.Join(dir, "artifacts"), p.metricsFile, p.gasReport)
	require.NoError(t, os.WriteFile(p.config, []byte(content), 0o644))
	return p
}

func (p project) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", p.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNetworksJSON(t *testing.T) {
	p := newProject(t)

	out, err := p.run(t, "networks", "--format", "json")
	require.NoError(t, err)

	var networks []types.Network
	require.NoError(t, json.Unmarshal([]byte(out), &networks))

	byName := make(map[string]types.Network)
	for _, n := range networks {
		byName[n.Name] = n
	}
	require.Contains(t, byName, "hardhat")
	require.Contains(t, byName, "sepolia")

	hardhat := byName["hardhat"]
	assert.True(t, hardhat.Development)
	assert.True(t, hardhat.InProcess)
	assert.Equal(t, types.OracleMock, hardhat.Oracle)

	sepolia := byName["sepolia"]
	assert.False(t, sepolia.Development)
	assert.Equal(t, types.OracleKnown, sepolia.Oracle)
	assert.Equal(t, common.HexToAddress(network.SepoliaEthUsdFeed).Hex(), sepolia.OracleAddress)
	assert.False(t, sepolia.RPCConfigured)
}

func TestNetworksResolve(t *testing.T) {
	p := newProject(t)

	out, err := p.run(t, "networks", "localhost")
	require.NoError(t, err)
	assert.Contains(t, out, "localhost")
	assert.Contains(t, out, "development")

	_, err = p.run(t, "networks", "nope")
	assert.ErrorIs(t, err, network.ErrUnknownNetwork)
}

func TestDeployInProcess(t *testing.T) {
	p := newProject(t)

	out, err := p.run(t, "deploy", "--format", "json")
	require.NoError(t, err)

	var deployments []types.Deployment
	require.NoError(t, json.Unmarshal([]byte(out), &deployments))
	require.Len(t, deployments, 2)

	names := []string{deployments[0].Name, deployments[1].Name}
	assert.ElementsMatch(t, []string{contracts.FundMeName, contracts.MockV3AggregatorName}, names)
	for _, d := range deployments {
		assert.Equal(t, "hardhat", d.Network)
		assert.Equal(t, network.HardhatChainID, d.ChainID)
		assert.NotEmpty(t, d.Address)
		assert.False(t, d.Verified)
	}

	// The metrics file is rewritten by every command.
	metrics, err := os.ReadFile(p.metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "fundme_deployments_total")

	// In-process deployments die with the process.
	out, err = p.run(t, "deployments", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestDeployMocksOnly(t *testing.T) {
	p := newProject(t)

	out, err := p.run(t, "deploy", "--tags", "mocks")
	require.NoError(t, err)
	assert.Contains(t, out, contracts.MockV3AggregatorName)
	assert.NotContains(t, out, contracts.FundMeName)
}

func TestDeployPublicNetworkNeedsSecrets(t *testing.T) {
	p := newProject(t)

	_, err := p.run(t, "deploy", "--network", "sepolia")
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}

func TestVerifyDisabledOnDevelopment(t *testing.T) {
	p := newProject(t)

	_, err := p.run(t, "verify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verification is disabled")
}

func TestTestCommandRecordsRun(t *testing.T) {
	p := newProject(t)

	out, err := p.run(t, "test", "--suite", "unit", "--gas-report")
	require.NoError(t, err)
	assert.Contains(t, out, "12 passed, 0 failed, 0 skipped")

	report, err := os.ReadFile(p.gasReport)
	require.NoError(t, err)
	assert.Contains(t, string(report), "Methods")
	assert.Contains(t, string(report), "fund")
	assert.Contains(t, string(report), contracts.FundMeName)

	out, err = p.run(t, "runs", "--format", "json")
	require.NoError(t, err)
	var list types.RunList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Runs, 1)
	run := list.Runs[0]
	assert.Equal(t, "unit", run.Suite)
	assert.Equal(t, "hardhat", run.Network)
	assert.Equal(t, "passed", run.Status)
	assert.Equal(t, 12, run.Passed)
	assert.Empty(t, run.Results)

	out, err = p.run(t, "runs", run.ID, "--format", "yaml")
	require.NoError(t, err)
	var detail map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &detail))
	assert.Equal(t, run.ID, detail["id"])
	results, ok := detail["results"].([]any)
	require.True(t, ok)
	assert.Len(t, results, 12)

	out, err = p.run(t, "gas-report", "--format", "json")
	require.NoError(t, err)
	var gas types.GasReport
	require.NoError(t, json.Unmarshal([]byte(out), &gas))
	assert.Equal(t, run.ID, gas.RunID)
	assert.NotEmpty(t, gas.Methods)
	deployed := make([]string, 0, len(gas.Deployments))
	for _, d := range gas.Deployments {
		deployed = append(deployed, d.Contract)
	}
	assert.ElementsMatch(t, []string{contracts.FundMeName, contracts.MockV3AggregatorName}, deployed)
}

func TestTestCommandGrep(t *testing.T) {
	p := newProject(t)

	out, err := p.run(t, "test", "--suite", "unit", "--grep", "constructor", "--gas-report=false")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 0 skipped")

	_, err = os.Stat(p.gasReport)
	assert.True(t, os.IsNotExist(err))
}

func TestTestCommandStagingSkippedOnDevelopment(t *testing.T) {
	p := newProject(t)

	out, err := p.run(t, "test", "--suite", "staging", "--gas-report=false")
	require.NoError(t, err)
	assert.Contains(t, out, "0 passed, 0 failed, 1 skipped")
}

func TestTestCommandUnknownSuite(t *testing.T) {
	p := newProject(t)

	_, err := p.run(t, "test", "--suite", "integration")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown suite "integration"`)
}

func TestGasReportWithoutRuns(t *testing.T) {
	p := newProject(t)

	_, err := p.run(t, "gas-report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no runs recorded")

	_, err = p.run(t, "gas-report", "--run", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run missing not found")
}

func TestRunsNotFound(t *testing.T) {
	p := newProject(t)

	_, err := p.run(t, "runs", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run missing not found")
}

func TestUnknownFormat(t *testing.T) {
	p := newProject(t)

	_, err := p.run(t, "runs", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestRenderYAMLUsesSnakeCase(t *testing.T) {
	var buf bytes.Buffer
	err := render(&buf, formatYAML, types.Deployment{Name: "FundMe", TxHash: "0xabc", BlockNumber: 7}, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `tx_hash: "0xabc"`)
	assert.Contains(t, out, "block_number: 7")
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	err := writeDeployments(&buf, formatTable, []types.Deployment{
		{Network: "sepolia", Name: "FundMe", Address: "0x01", BlockNumber: 10, GasUsed: 900000, Verified: true},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "NETWORK"))
	assert.Equal(t, []string{"sepolia", "FundMe", "0x01", "10", "900000", "true"}, strings.Fields(lines[1]))
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newLogger(io.Discard, tt.level, "text")
			assert.True(t, logger.Enabled(ctx, tt.want))
			assert.False(t, logger.Enabled(ctx, tt.want-1))
		})
	}

	var buf bytes.Buffer
	newLogger(&buf, "info", "json").Info("hello", slog.String("k", "v"))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "v", line["k"])
}
