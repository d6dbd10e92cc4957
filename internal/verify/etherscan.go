// Package verify publishes contract sources to an Etherscan-compatible
// block explorer.
package verify

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// errAlreadyVerified is returned by VerifySource when the explorer already
// knows the source.
var errAlreadyVerified = errors.New("contract source code already verified")

// Status is the state of a submitted verification.
type Status int

const (
	StatusPending Status = iota
	StatusPass
	StatusFail
	StatusAlreadyVerified
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusAlreadyVerified:
		return "already verified"
	}
	return "pending"
}

// SourceRequest is a verifysourcecode submission.
type SourceRequest struct {
	Address         string
	ContractName    string // fully qualified, e.g. contracts/FundMe.sol:FundMe
	StandardJSON    []byte
	CompilerVersion string // e.g. v0.8.8+commit.dddeac2f
	ConstructorArgs []byte // ABI encoded, without selector
}

// APIError is a non-successful explorer response.
type APIError struct {
	StatusCode int
	Message    string
	Result     string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("explorer HTTP %d: %s", e.StatusCode, e.Result)
	}
	return fmt.Sprintf("explorer error: %s: %s", e.Message, e.Result)
}

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// EtherscanClient talks to the Etherscan v2 multichain API.
type EtherscanClient struct {
	apiURL     string
	apiKey     string
	chainID    int64
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// DefaultRequestsPerSecond matches the free Etherscan tier.
const DefaultRequestsPerSecond = 5

// NewEtherscanClient creates a client for chainID.
func NewEtherscanClient(apiURL, apiKey string, chainID int64, logger *slog.Logger) *EtherscanClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &EtherscanClient{
		apiURL:     apiURL,
		apiKey:     apiKey,
		chainID:    chainID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		logger:     logger,
	}
}

// WithRateLimit replaces the request limiter.
func (c *EtherscanClient) WithRateLimit(perSecond float64, burst int) *EtherscanClient {
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return c
}

func (c *EtherscanClient) endpoint() (*url.URL, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid explorer URL %q: %w", c.apiURL, err)
	}
	q := u.Query()
	q.Set("chainid", strconv.FormatInt(c.chainID, 10))
	u.RawQuery = q.Encode()
	return u, nil
}

func (c *EtherscanClient) do(req *http.Request) (*apiResponse, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Result: string(body)}
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &out, nil
}

// VerifySource submits a standard-json-input verification and returns the
// explorer's GUID for status checks.
func (c *EtherscanClient) VerifySource(ctx context.Context, r SourceRequest) (string, error) {
	u, err := c.endpoint()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("module", "contract")
	form.Set("action", "verifysourcecode")
	form.Set("contractaddress", r.Address)
	form.Set("sourceCode", string(r.StandardJSON))
	form.Set("codeformat", "solidity-standard-json-input")
	form.Set("contractname", r.ContractName)
	form.Set("compilerversion", r.CompilerVersion)
	// The misspelling is part of the Etherscan API.
	form.Set("constructorArguements", hex.EncodeToString(r.ConstructorArgs))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	out, err := c.do(req)
	if err != nil {
		return "", err
	}
	if out.Status != "1" {
		if isAlreadyVerified(out.Result) {
			return "", errAlreadyVerified
		}
		return "", &APIError{Message: out.Message, Result: out.Result}
	}

	c.logger.Debug("verification submitted",
		slog.String("address", r.Address),
		slog.String("guid", out.Result),
	)
	return out.Result, nil
}

// CheckStatus reports the state of a submitted verification.
func (c *EtherscanClient) CheckStatus(ctx context.Context, guid string) (Status, string, error) {
	u, err := c.endpoint()
	if err != nil {
		return StatusPending, "", err
	}
	q := u.Query()
	q.Set("apikey", c.apiKey)
	q.Set("module", "contract")
	q.Set("action", "checkverifystatus")
	q.Set("guid", guid)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return StatusPending, "", fmt.Errorf("failed to create request: %w", err)
	}

	out, err := c.do(req)
	if err != nil {
		return StatusPending, "", err
	}
	return parseStatus(out), out.Result, nil
}

func parseStatus(out *apiResponse) Status {
	result := strings.ToLower(out.Result)
	switch {
	case isAlreadyVerified(out.Result):
		return StatusAlreadyVerified
	case strings.Contains(result, "pending"):
		return StatusPending
	case out.Status == "1" || strings.HasPrefix(result, "pass"):
		return StatusPass
	}
	return StatusFail
}

func isAlreadyVerified(result string) bool {
	return strings.Contains(strings.ToLower(result), "already verified")
}
