package artifact

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gateway-fm/fundme/internal/contracts"
)

// Builtin serves the FundMe and MockV3Aggregator bytecode embedded in the
// binary, so a development chain can be used without a compiler. There is no
// build-info behind it, which rules out explorer verification.
type Builtin struct{}

// Artifact returns the built-in artifact for name.
func (Builtin) Artifact(name string) (*Artifact, error) {
	parsed, ok := contracts.ABIFor(name)
	if !ok {
		return nil, fmt.Errorf("%w: no built-in %s", ErrNotFound, name)
	}
	a := &Artifact{
		ContractName:     name,
		SourceName:       "contracts/FundMe.sol",
		ABI:              parsed,
		RawABI:           json.RawMessage(contracts.FundMeABI),
		Bytecode:         contracts.FundMeBytecode,
		DeployedBytecode: contracts.FundMeDeployedBytecode,
		Format:           FormatBuiltin,
	}
	if name == contracts.MockV3AggregatorName {
		a.SourceName = "contracts/test/MockV3Aggregator.sol"
		a.RawABI = json.RawMessage(contracts.MockV3AggregatorABI)
		a.Bytecode = contracts.MockV3AggregatorBytecode
		a.DeployedBytecode = contracts.MockV3AggregatorDeployedBytecode
	}
	return a, nil
}

// Chain tries each source in order, moving on only when a source has no
// artifact for the name.
type Chain []Source

// Artifact returns the first artifact found.
func (c Chain) Artifact(name string) (*Artifact, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		a, err := src.Artifact(name)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// VerificationSource resolves the compiler input of an artifact.
type VerificationSource interface {
	GetVerificationInput(a *Artifact) (*VerificationInput, error)
}

// GetVerificationInput asks every member that can answer.
func (c Chain) GetVerificationInput(a *Artifact) (*VerificationInput, error) {
	if a.Embedded() {
		return nil, fmt.Errorf("%s is a built-in artifact and cannot be verified", a.ContractName)
	}
	var lastErr error
	for _, src := range c {
		vs, ok := src.(VerificationSource)
		if !ok {
			continue
		}
		in, err := vs.GetVerificationInput(a)
		if err == nil {
			return in, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no build-info for %s", ErrNotFound, a.ContractName)
	}
	return nil, lastErr
}
