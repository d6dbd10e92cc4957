// Package network resolves network names into deployment profiles.
//
// A profile answers one question for every other step: is this a development
// network (deploy a mock price feed) or a public one (use the oracle that is
// already live on that chain).
package network

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUnknownNetwork is returned when a network name has no profile.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrMissingOracle is returned when a public network has no price feed registered.
	ErrMissingOracle = errors.New("no price feed registered for network")
)

// DevelopmentChains lists the networks that always run against a local mock oracle.
var DevelopmentChains = []string{"hardhat", "localhost"}

// IsDevelopment reports whether name is on the development allow-list.
func IsDevelopment(name string) bool {
	for _, n := range DevelopmentChains {
		if n == name {
			return true
		}
	}
	return false
}

// OracleKind discriminates the OracleSource variant.
type OracleKind int

const (
	// OracleMock means a MockV3Aggregator is deployed locally.
	OracleMock OracleKind = iota
	// OracleKnown means a price feed already exists at a fixed address.
	OracleKnown
)

func (k OracleKind) String() string {
	if k == OracleKnown {
		return "known"
	}
	return "mock"
}

// OracleSource is the price feed a FundMe deployment is wired to.
// A Mock source carries no address until the mock has been deployed.
type OracleSource struct {
	kind    OracleKind
	address common.Address
}

// MockOracle returns an OracleSource backed by a locally deployed mock.
func MockOracle() OracleSource {
	return OracleSource{kind: OracleMock}
}

// KnownOracle returns an OracleSource for an existing on-chain feed.
func KnownOracle(addr common.Address) OracleSource {
	return OracleSource{kind: OracleKnown, address: addr}
}

// Kind returns the variant.
func (o OracleSource) Kind() OracleKind { return o.kind }

// IsMock reports whether the feed must be deployed as a mock.
func (o OracleSource) IsMock() bool { return o.kind == OracleMock }

// Address returns the feed address. It is the zero address for a mock
// that has not been deployed yet.
func (o OracleSource) Address() common.Address { return o.address }

// WithAddress returns a copy bound to addr. Used once the mock is deployed.
func (o OracleSource) WithAddress(addr common.Address) OracleSource {
	o.address = addr
	return o
}

func (o OracleSource) String() string {
	if o.address == (common.Address{}) {
		return o.kind.String()
	}
	return fmt.Sprintf("%s(%s)", o.kind, o.address.Hex())
}

// Profile is the resolved configuration of a target network.
type Profile struct {
	Name    string
	ChainID int64
	// OracleAddress is the live ETH/USD feed. Always nil for development networks.
	OracleAddress *common.Address
	// Confirmations is the number of blocks to wait after a deployment is mined.
	Confirmations uint64
	Development   bool
	// RPCURL is the default endpoint. Empty for the in-process network.
	RPCURL string
	// InProcess marks the ephemeral chain that lives inside the harness.
	InProcess bool
	// ExplorerURL is the block explorer base URL used in log lines.
	ExplorerURL string
}

// Oracle returns the price feed variant for the profile.
func (p *Profile) Oracle() OracleSource {
	if p.Development || p.OracleAddress == nil {
		return MockOracle()
	}
	return KnownOracle(*p.OracleAddress)
}

// Validate checks the profile invariants.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("network name is required")
	}
	if p.ChainID <= 0 {
		return fmt.Errorf("network %s: chain id must be positive", p.Name)
	}
	if p.Development && p.OracleAddress != nil {
		return fmt.Errorf("network %s: development networks deploy their own price feed", p.Name)
	}
	if !p.Development && p.OracleAddress == nil {
		return fmt.Errorf("%w: %s (chain %d)", ErrMissingOracle, p.Name, p.ChainID)
	}
	if p.InProcess && !p.Development {
		return fmt.Errorf("network %s: the in-process chain is a development network", p.Name)
	}
	return nil
}

// RequiredConfirmations returns Confirmations clamped to at least one block.
func (p *Profile) RequiredConfirmations() uint64 {
	if p.Confirmations == 0 {
		return 1
	}
	return p.Confirmations
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	c := *p
	if p.OracleAddress != nil {
		addr := *p.OracleAddress
		c.OracleAddress = &addr
	}
	return &c
}

func addressPtr(hex string) *common.Address {
	addr := common.HexToAddress(hex)
	return &addr
}
