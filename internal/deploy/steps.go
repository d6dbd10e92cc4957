package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gateway-fm/fundme/internal/artifact"
	"github.com/gateway-fm/fundme/internal/contracts"
	"github.com/gateway-fm/fundme/internal/verify"
)

// Deploy tags.
const (
	TagAll    = "all"
	TagMocks  = "mocks"
	TagFundMe = "fundme"
)

// StepFunc runs one deploy step.
type StepFunc func(ctx context.Context, env *Environment, d *Deployer) error

// Step is a named, tagged deploy step.
type Step struct {
	Name string
	Tags []string
	Run  StepFunc
}

// Matches reports whether the step carries any of tags. No tags matches
// every step.
func (s Step) Matches(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if slices.Contains(s.Tags, t) {
			return true
		}
	}
	return false
}

// Steps returns the deploy steps in execution order.
func Steps() []Step {
	return []Step{
		{Name: "00-deploy-mocks", Tags: []string{TagAll, TagMocks}, Run: deployMocks},
		{Name: "01-deploy-fund-me", Tags: []string{TagAll, TagFundMe}, Run: deployFundMe},
	}
}

// Run executes the steps matching tags in order and stops at the first error.
func Run(ctx context.Context, env *Environment, tags []string) error {
	d, err := NewDeployer(env)
	if err != nil {
		return err
	}
	for _, s := range Steps() {
		if !s.Matches(tags) {
			continue
		}
		env.Logger.Debug("running deploy step", slog.String("step", s.Name))
		if err := s.Run(ctx, env, d); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return nil
}

func deployMocks(ctx context.Context, env *Environment, d *Deployer) error {
	if !env.Profile.Development {
		env.Logger.Debug("not a development network, skipping mocks", slog.String("network", env.Profile.Name))
		return nil
	}

	env.Logger.Info("Local network detected! Deploying mocks..")
	a, err := env.Artifacts.Artifact(contracts.MockV3AggregatorName)
	if err != nil {
		return err
	}
	if _, err := d.Deploy(ctx, contracts.MockV3AggregatorName, a, contracts.MockDecimals, big.NewInt(contracts.MockInitialAnswer)); err != nil {
		return err
	}
	env.Logger.Info("Mock deployed!")
	env.Logger.Info("-------------------------------------------")
	return nil
}

func deployFundMe(ctx context.Context, env *Environment, d *Deployer) error {
	oracle, err := ResolveOracle(ctx, env)
	if err != nil {
		return err
	}
	env.Logger.Info("Using price feed",
		slog.String("network", env.Profile.Name),
		slog.String("oracle", oracle.String()),
	)

	a, err := env.Artifacts.Artifact(contracts.FundMeName)
	if err != nil {
		return err
	}
	dc, err := d.Deploy(ctx, contracts.FundMeName, a, oracle.Address())
	if err != nil {
		return err
	}

	if env.verifying() && !dc.Verified {
		if err := verifyDeployed(ctx, env, a, dc.Address, dc.ConstructorArgs); err != nil {
			return err
		}
	}
	env.Logger.Info("------------------------")
	return nil
}

// Verify submits the recorded deployment of name to the block explorer and
// marks it verified.
func Verify(ctx context.Context, env *Environment, name string) error {
	if err := env.prepare(); err != nil {
		return err
	}
	if !env.verifying() {
		return fmt.Errorf("verification is disabled on %s", env.Profile.Name)
	}
	rec, err := env.Store.GetDeployment(ctx, env.Profile.Name, name)
	if err != nil {
		return fmt.Errorf("failed to load %s deployment: %w", name, err)
	}
	a, err := env.Artifacts.Artifact(name)
	if err != nil {
		return err
	}
	args, err := hexBytes(rec.ConstructorArgs)
	if err != nil {
		return fmt.Errorf("recorded constructor args of %s: %w", name, err)
	}
	return verifyDeployed(ctx, env, a, common.HexToAddress(rec.Address), args)
}

func verifyDeployed(ctx context.Context, env *Environment, a *artifact.Artifact, addr common.Address, args []byte) error {
	vs, ok := env.Artifacts.(artifact.VerificationSource)
	if !ok {
		return fmt.Errorf("artifact source cannot provide compiler input for %s", a.ContractName)
	}
	in, err := vs.GetVerificationInput(a)
	if err != nil {
		return err
	}
	if _, err := env.Verifier.Verify(ctx, verify.NewSourceRequest(addr, a, in, args)); err != nil {
		return err
	}
	if err := env.Store.MarkVerified(ctx, env.Profile.Name, a.ContractName); err != nil {
		return fmt.Errorf("failed to mark %s verified: %w", a.ContractName, err)
	}
	return nil
}
