package verify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateway-fm/fundme/internal/artifact"
	"github.com/gateway-fm/fundme/internal/metrics"
	"github.com/gateway-fm/fundme/internal/network"
)

// fakeExplorer mimics the Etherscan v2 contract endpoints.
type fakeExplorer struct {
	t *testing.T

	mu       sync.Mutex
	submit   apiResponse
	statuses []string
	polls    int
	form     map[string]string
}

func (f *fakeExplorer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, "11155111", r.URL.Query().Get("chainid"))

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		require.NoError(f.t, r.ParseForm())
		f.form = map[string]string{}
		for k := range r.PostForm {
			f.form[k] = r.PostForm.Get(k)
		}
		json.NewEncoder(w).Encode(f.submit)
	case http.MethodGet:
		assert.Equal(f.t, "checkverifystatus", r.URL.Query().Get("action"))
		assert.Equal(f.t, "guid-1", r.URL.Query().Get("guid"))
		result := f.statuses[min(f.polls, len(f.statuses)-1)]
		f.polls++
		status := "0"
		if result == "Pass - Verified" {
			status = "1"
		}
		json.NewEncoder(w).Encode(apiResponse{Status: status, Message: "OK", Result: result})
	}
}

func newTestVerifier(t *testing.T, f *fakeExplorer) (*Verifier, *metrics.PrometheusMetrics, func()) {
	t.Helper()
	f.t = t
	srv := httptest.NewServer(f)
	client := NewEtherscanClient(srv.URL+"/v2/api", "key", network.SepoliaChainID, nil).WithRateLimit(1000, 10)
	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry())
	v := NewVerifier(client, "sepolia", m, nil).WithPolling(time.Millisecond, 5)
	return v, m, srv.Close
}

func testRequest() SourceRequest {
	return SourceRequest{
		Address:         "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		ContractName:    "contracts/FundMe.sol:FundMe",
		StandardJSON:    []byte(`{"language":"Solidity"}`),
		CompilerVersion: "v0.8.8+commit.dddeac2f",
		ConstructorArgs: common.LeftPadBytes(common.HexToAddress(network.SepoliaEthUsdFeed).Bytes(), 32),
	}
}

func TestVerifyPollsUntilPass(t *testing.T) {
	f := &fakeExplorer{
		submit:   apiResponse{Status: "1", Message: "OK", Result: "guid-1"},
		statuses: []string{"Pending in queue", "Pending in queue", "Pass - Verified"},
	}
	v, m, done := newTestVerifier(t, f)
	defer done()

	result, err := v.Verify(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, ResultVerified, result)
	assert.Equal(t, 3, f.polls)

	assert.Equal(t, "verifysourcecode", f.form["action"])
	assert.Equal(t, "solidity-standard-json-input", f.form["codeformat"])
	assert.Equal(t, "contracts/FundMe.sol:FundMe", f.form["contractname"])
	assert.Equal(t, "v0.8.8+commit.dddeac2f", f.form["compilerversion"])
	assert.Equal(t, "000000000000000000000000694aa1769357215de4fac081bf1f309adc325306", f.form["constructorArguements"])
	assert.Equal(t, `{"language":"Solidity"}`, f.form["sourceCode"])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.VerificationsTotal.WithLabelValues("sepolia", metrics.ResultVerified)))
}

func TestVerifyAlreadyVerifiedAtSubmit(t *testing.T) {
	f := &fakeExplorer{
		submit: apiResponse{Status: "0", Message: "NOTOK", Result: "Contract source code already verified"},
	}
	v, m, done := newTestVerifier(t, f)
	defer done()

	result, err := v.Verify(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, ResultAlreadyVerified, result)
	assert.Equal(t, 0, f.polls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VerificationsTotal.WithLabelValues("sepolia", metrics.ResultAlready)))
}

func TestVerifyAlreadyVerifiedWhilePolling(t *testing.T) {
	f := &fakeExplorer{
		submit:   apiResponse{Status: "1", Message: "OK", Result: "guid-1"},
		statuses: []string{"Already Verified"},
	}
	v, _, done := newTestVerifier(t, f)
	defer done()

	result, err := v.Verify(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, ResultAlreadyVerified, result)
}

func TestVerifyFailures(t *testing.T) {
	tests := []struct {
		name     string
		submit   apiResponse
		statuses []string
		contains string
	}{
		{
			name:     "rejected submission",
			submit:   apiResponse{Status: "0", Message: "NOTOK", Result: "Invalid API Key"},
			contains: "Invalid API Key",
		},
		{
			name:     "bytecode mismatch",
			submit:   apiResponse{Status: "1", Message: "OK", Result: "guid-1"},
			statuses: []string{"Fail - Unable to verify"},
			contains: "Unable to verify",
		},
		{
			name:     "never decided",
			submit:   apiResponse{Status: "1", Message: "OK", Result: "guid-1"},
			statuses: []string{"Pending in queue"},
			contains: "still pending",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeExplorer{submit: tt.submit, statuses: tt.statuses}
			v, m, done := newTestVerifier(t, f)
			defer done()

			_, err := v.Verify(context.Background(), testRequest())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrVerificationFailed))
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.VerificationsTotal.WithLabelValues("sepolia", metrics.ResultFailed)))
		})
	}
}

func TestEtherscanHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewEtherscanClient(srv.URL, "key", 1, nil)
	_, err := client.VerifySource(context.Background(), testRequest())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		resp apiResponse
		want Status
	}{
		{apiResponse{Status: "1", Result: "Pass - Verified"}, StatusPass},
		{apiResponse{Status: "0", Result: "Pending in queue"}, StatusPending},
		{apiResponse{Status: "0", Result: "Fail - Unable to verify"}, StatusFail},
		{apiResponse{Status: "0", Result: "Already Verified"}, StatusAlreadyVerified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseStatus(&tt.resp), tt.resp.Result)
	}
}

func TestShouldVerify(t *testing.T) {
	reg := network.DefaultRegistry()
	hardhat, err := reg.Resolve("hardhat")
	require.NoError(t, err)
	sepolia, err := reg.Resolve("sepolia")
	require.NoError(t, err)

	assert.False(t, ShouldVerify(hardhat, "key"))
	assert.False(t, ShouldVerify(sepolia, ""))
	assert.True(t, ShouldVerify(sepolia, "key"))
	assert.False(t, ShouldVerify(nil, "key"))
}

func TestNewSourceRequest(t *testing.T) {
	a := &artifact.Artifact{ContractName: "FundMe", SourceName: "contracts/FundMe.sol"}
	in := &artifact.VerificationInput{StandardJSON: []byte("{}"), SolcLongVersion: "v0.8.8+commit.dddeac2f"}
	addr := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	r := NewSourceRequest(addr, a, in, []byte{1})
	assert.Equal(t, addr.Hex(), r.Address)
	assert.Equal(t, "contracts/FundMe.sol:FundMe", r.ContractName)
	assert.Equal(t, in.SolcLongVersion, r.CompilerVersion)
	assert.Equal(t, []byte{1}, r.ConstructorArgs)
}
