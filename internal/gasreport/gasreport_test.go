package gasreport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateway-fm/fundme/internal/metrics"
	"github.com/gateway-fm/fundme/internal/storage"
)

func TestCollectorSummary(t *testing.T) {
	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry())
	c := NewCollector(m)

	c.Record("FundMe", "fund", &types.Receipt{GasUsed: 90000, TxHash: common.HexToHash("0x01")})
	c.Record("FundMe", "fund", &types.Receipt{GasUsed: 70000})
	c.Record("FundMe", "withdraw", &types.Receipt{GasUsed: 40000})
	c.Record("FundMe", MethodDeployment, &types.Receipt{GasUsed: 800000})
	c.Record("MockV3Aggregator", MethodDeployment, &types.Receipt{GasUsed: 500000})
	c.Record("FundMe", "fund", nil)

	samples := c.Samples()
	require.Len(t, samples, 5)
	assert.Equal(t, common.HexToHash("0x01").Hex(), samples[0].TxHash)

	s := c.Summary()
	require.Len(t, s.Methods, 2)
	assert.Equal(t, Stats{Contract: "FundMe", Method: "fund", Min: 70000, Max: 90000, Avg: 80000, Calls: 2}, s.Methods[0])
	assert.Equal(t, "withdraw", s.Methods[1].Method)

	require.Len(t, s.Deployments, 2)
	assert.Equal(t, "FundMe", s.Deployments[0].Contract)
	assert.Equal(t, "MockV3Aggregator", s.Deployments[1].Contract)
	assert.Empty(t, s.Deployments[0].Method)

	assert.Equal(t, 4, testutil.CollectAndCount(m.GasUsed))
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Record("FundMe", "fund", &types.Receipt{GasUsed: 1})
		c.Add(storage.GasSample{Contract: "FundMe", Method: "fund", GasUsed: 1})
	})
	assert.Empty(t, c.Samples())
	assert.Empty(t, c.Summary().Methods)
}

func TestReportWithoutPricing(t *testing.T) {
	r := Report{
		Summary: Summarize([]storage.GasSample{
			{Contract: "FundMe", Method: "fund", GasUsed: 100},
			{Contract: "FundMe", Method: MethodDeployment, GasUsed: 3_000_000},
		}),
		BlockGasLimit: 30_000_000,
	}

	out := r.String()
	assert.Contains(t, out, "Methods")
	assert.Contains(t, out, "Deployments")
	assert.Contains(t, out, "10.0 %")
	assert.NotContains(t, out, "USD")
	assert.NotContains(t, out, "\x1b[", "report must not contain colour codes")
}

func TestReportWithPricing(t *testing.T) {
	r := Report{
		Summary: Summarize([]storage.GasSample{
			{Contract: "FundMe", Method: "withdraw", GasUsed: 50000},
		}),
		GasPriceGwei: 20,
		TokenPrice:   2000,
		Currency:     "usd",
	}

	// 50000 gas * 20 gwei = 0.001 ETH = 2 USD
	assert.InDelta(t, 2.0, r.Cost(50000), 1e-9)

	out := r.String()
	assert.Contains(t, out, "USD (avg)")
	assert.Contains(t, out, "2.00")
	assert.Contains(t, out, "ETH price: 2000.00 USD")
	assert.Contains(t, out, "(none)", "empty deployments section is marked")
}

func TestReportWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gas-report.txt")
	r := Report{Summary: Summarize([]storage.GasSample{{Contract: "FundMe", Method: "fund", GasUsed: 1}})}

	require.NoError(t, r.WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, r.String(), string(data))
}

func TestPriceFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/cryptocurrency/quotes/latest", r.URL.Path)
		assert.Equal(t, "ETH", r.URL.Query().Get("symbol"))
		if r.Header.Get("X-CMC_PRO_API_KEY") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":{"error_code":1001,"error_message":"This API Key is invalid."}}`))
			return
		}
		w.Write([]byte(`{"status":{"error_code":0},"data":{"ETH":{"quote":{"USD":{"price":3012.5}}}}}`))
	}))
	defer srv.Close()

	price, err := NewPriceFetcher(srv.URL+"/", "secret", nil).Price(context.Background(), "eth", "usd")
	require.NoError(t, err)
	assert.Equal(t, 3012.5, price)

	_, err = NewPriceFetcher(srv.URL, "wrong", nil).Price(context.Background(), "ETH", "USD")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "API Key is invalid"), err.Error())

	_, err = NewPriceFetcher(srv.URL, "secret", nil).Price(context.Background(), "ETH", "EUR")
	require.Error(t, err)
}
