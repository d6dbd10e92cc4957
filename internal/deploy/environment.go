// Package deploy runs the tagged deploy steps: a mock price feed on
// development networks, then FundMe wired to the network's price feed.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gateway-fm/fundme/internal/account"
	"github.com/gateway-fm/fundme/internal/artifact"
	"github.com/gateway-fm/fundme/internal/chain"
	"github.com/gateway-fm/fundme/internal/confirm"
	"github.com/gateway-fm/fundme/internal/contracts"
	"github.com/gateway-fm/fundme/internal/gasreport"
	"github.com/gateway-fm/fundme/internal/metrics"
	"github.com/gateway-fm/fundme/internal/network"
	"github.com/gateway-fm/fundme/internal/storage"
	"github.com/gateway-fm/fundme/internal/verify"
)

var (
	// ErrNoMockDeployment is returned when a development network has no
	// recorded MockV3Aggregator to wire FundMe to.
	ErrNoMockDeployment = errors.New("no mock price feed deployed")
	// ErrEmbeddedArtifact is returned when the built-in bytecode is sent to a
	// public network, where deployments must be verifiable.
	ErrEmbeddedArtifact = errors.New("built-in artifact can only be deployed to a development network")
)

// Environment is everything a deploy step needs. It is built once per
// command and passed to every step.
type Environment struct {
	Profile   *network.Profile
	Backend   chain.Backend
	Deployer  *account.Account
	Artifacts artifact.Source
	Store     storage.DeploymentStore

	// Verifier is nil when deployments are not verified.
	Verifier *verify.Verifier
	// Heads defaults to block number polling on Backend.
	Heads   confirm.HeadSource
	Gas     *gasreport.Collector
	Metrics *metrics.PrometheusMetrics
	Logger  *slog.Logger
}

func (env *Environment) prepare() error {
	switch {
	case env == nil:
		return fmt.Errorf("deploy environment is required")
	case env.Profile == nil:
		return fmt.Errorf("network profile is required")
	case env.Backend == nil:
		return fmt.Errorf("backend is required")
	case env.Deployer == nil:
		return fmt.Errorf("deployer account is required")
	case env.Artifacts == nil:
		return fmt.Errorf("artifact source is required")
	case env.Store == nil:
		return fmt.Errorf("deployment store is required")
	}
	if env.Logger == nil {
		env.Logger = slog.Default()
	}
	if env.Heads == nil {
		env.Heads = confirm.NewPoller(env.Backend, env.Logger)
	}
	return nil
}

// verifying reports whether deployments on this environment are verified.
func (env *Environment) verifying() bool {
	return env.Verifier != nil && !env.Profile.Development
}

// ResolveOracle binds the profile's price feed to an address. A known feed
// comes from the profile; a mock comes from the recorded MockV3Aggregator.
func ResolveOracle(ctx context.Context, env *Environment) (network.OracleSource, error) {
	src := env.Profile.Oracle()
	if !src.IsMock() {
		return src, nil
	}
	d, err := env.Store.GetDeployment(ctx, env.Profile.Name, contracts.MockV3AggregatorName)
	if errors.Is(err, storage.ErrNotFound) {
		return src, fmt.Errorf("%w on %s: run the mocks step first", ErrNoMockDeployment, env.Profile.Name)
	}
	if err != nil {
		return src, fmt.Errorf("failed to load %s deployment: %w", contracts.MockV3AggregatorName, err)
	}
	return src.WithAddress(common.HexToAddress(d.Address)), nil
}
