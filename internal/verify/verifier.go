package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gateway-fm/fundme/internal/artifact"
	"github.com/gateway-fm/fundme/internal/metrics"
	"github.com/gateway-fm/fundme/internal/network"
)

// ErrVerificationFailed is returned when the explorer rejects the source.
var ErrVerificationFailed = errors.New("verification failed")

// Result is the successful outcome of a verification.
type Result string

const (
	ResultVerified        Result = "verified"
	ResultAlreadyVerified Result = "already_verified"
)

// Client is the explorer API the Verifier drives.
type Client interface {
	VerifySource(ctx context.Context, r SourceRequest) (string, error)
	CheckStatus(ctx context.Context, guid string) (Status, string, error)
}

// Default polling of a submitted verification.
const (
	DefaultPollInterval = 3 * time.Second
	DefaultMaxPolls     = 20
)

// Verifier submits a source and waits for the explorer's verdict. A failed
// submission is not retried; polling a pending GUID is part of one attempt.
type Verifier struct {
	client       Client
	network      string
	pollInterval time.Duration
	maxPolls     int
	metrics      *metrics.PrometheusMetrics
	logger       *slog.Logger
}

// NewVerifier creates a verifier for network.
func NewVerifier(client Client, network string, m *metrics.PrometheusMetrics, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		client:       client,
		network:      network,
		pollInterval: DefaultPollInterval,
		maxPolls:     DefaultMaxPolls,
		metrics:      m,
		logger:       logger,
	}
}

// WithPolling overrides the poll interval and the number of polls.
func (v *Verifier) WithPolling(interval time.Duration, maxPolls int) *Verifier {
	v.pollInterval = interval
	v.maxPolls = maxPolls
	return v
}

// ShouldVerify reports whether deployments on p are verified: only on
// non-development networks with an explorer API key.
func ShouldVerify(p *network.Profile, apiKey string) bool {
	return p != nil && !p.Development && apiKey != ""
}

// NewSourceRequest builds the submission for a deployed artifact.
func NewSourceRequest(address common.Address, a *artifact.Artifact, in *artifact.VerificationInput, constructorArgs []byte) SourceRequest {
	return SourceRequest{
		Address:         address.Hex(),
		ContractName:    a.FullyQualifiedName(),
		StandardJSON:    in.StandardJSON,
		CompilerVersion: in.SolcLongVersion,
		ConstructorArgs: constructorArgs,
	}
}

// Verify submits r and polls until the explorer decides.
func (v *Verifier) Verify(ctx context.Context, r SourceRequest) (Result, error) {
	v.logger.Info("Verifying contract...",
		slog.String("address", r.Address),
		slog.String("contract", r.ContractName),
	)

	guid, err := v.client.VerifySource(ctx, r)
	if errors.Is(err, errAlreadyVerified) {
		return v.done(ResultAlreadyVerified, r)
	}
	if err != nil {
		v.metrics.RecordVerification(v.network, metrics.ResultFailed)
		return "", fmt.Errorf("%w: %s: %w", ErrVerificationFailed, r.Address, err)
	}

	for i := 0; i < v.maxPolls; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(v.pollInterval):
		}

		status, msg, err := v.client.CheckStatus(ctx, guid)
		if err != nil {
			v.metrics.RecordVerification(v.network, metrics.ResultFailed)
			return "", fmt.Errorf("%w: checking %s: %w", ErrVerificationFailed, guid, err)
		}
		switch status {
		case StatusPass:
			return v.done(ResultVerified, r)
		case StatusAlreadyVerified:
			return v.done(ResultAlreadyVerified, r)
		case StatusFail:
			v.metrics.RecordVerification(v.network, metrics.ResultFailed)
			return "", fmt.Errorf("%w: %s", ErrVerificationFailed, msg)
		}
		v.logger.Debug("verification pending", slog.String("guid", guid), slog.Int("poll", i+1))
	}

	v.metrics.RecordVerification(v.network, metrics.ResultFailed)
	return "", fmt.Errorf("%w: still pending after %d polls", ErrVerificationFailed, v.maxPolls)
}

func (v *Verifier) done(result Result, r SourceRequest) (Result, error) {
	label := metrics.ResultVerified
	if result == ResultAlreadyVerified {
		label = metrics.ResultAlready
		v.logger.Info("Already Verified!", slog.String("address", r.Address))
	} else {
		v.logger.Info("Contract verified", slog.String("address", r.Address))
	}
	v.metrics.RecordVerification(v.network, label)
	return result, nil
}
