package network

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Well-known chain ids.
const (
	HardhatChainID int64 = 31337
	SepoliaChainID int64 = 11155111
	MainnetChainID int64 = 1
)

// Chainlink ETH/USD aggregators.
const (
	SepoliaEthUsdFeed = "0x694AA1769357215DE4FAC081bf1f309aDC325306"
	MainnetEthUsdFeed = "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419"
)

// Registry holds network profiles by name.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Profile
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Profile),
	}
}

// Register adds or replaces a profile.
func (r *Registry) Register(p *Profile) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[p.Name] = p
}

// Get retrieves a profile by name. Returns nil if not found.
// The returned profile is a copy.
func (r *Registry) Get(name string) *Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.entries[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

// Names returns all registered network names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByChainID returns the first profile registered for chainID, by name order.
func (r *Registry) ByChainID(chainID int64) *Profile {
	for _, name := range r.Names() {
		if p := r.Get(name); p != nil && p.ChainID == chainID {
			return p
		}
	}
	return nil
}

// feedFor returns the oracle of another profile on chainID, nil if none.
func (r *Registry) feedFor(chainID int64, except string) *common.Address {
	for _, name := range r.Names() {
		if name == except {
			continue
		}
		if p := r.Get(name); p != nil && p.ChainID == chainID && !p.Development && p.OracleAddress != nil {
			return p.OracleAddress
		}
	}
	return nil
}

// Resolve returns the validated profile for name.
//
// Development networks never need an oracle. Any other network without its
// own feed borrows the feed of a profile on the same chain id, otherwise
// ErrMissingOracle is returned.
func (r *Registry) Resolve(name string) (*Profile, error) {
	p := r.Get(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
	if IsDevelopment(p.Name) {
		p.Development = true
	}
	if p.Development {
		p.OracleAddress = nil
	} else if p.OracleAddress == nil {
		p.OracleAddress = r.feedFor(p.ChainID, p.Name)
	}
	if p.Confirmations == 0 {
		p.Confirmations = 1
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Override describes user supplied changes to a profile, usually from the
// project file. Zero values leave the registered field untouched.
type Override struct {
	ChainID       int64
	URL           string
	OracleAddress string
	Confirmations uint64
	Development   *bool
}

// Apply merges o into the profile registered as name, creating it if needed.
func (r *Registry) Apply(name string, o Override) error {
	p := r.Get(name)
	if p == nil {
		p = &Profile{Name: name}
	}
	if o.ChainID != 0 {
		p.ChainID = o.ChainID
	}
	if o.URL != "" {
		p.RPCURL = o.URL
		p.InProcess = false
	}
	if o.OracleAddress != "" {
		if !common.IsHexAddress(o.OracleAddress) {
			return fmt.Errorf("network %s: invalid oracle address %q", name, o.OracleAddress)
		}
		p.OracleAddress = addressPtr(o.OracleAddress)
	}
	if o.Confirmations != 0 {
		p.Confirmations = o.Confirmations
	}
	if o.Development != nil {
		p.Development = *o.Development
	}
	r.Register(p)
	return nil
}

// DefaultRegistry returns a registry pre-populated with the built-in networks.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(HardhatProfile())
	r.Register(LocalhostProfile())
	r.Register(SepoliaProfile())
	r.Register(MainnetProfile())
	return r
}

// HardhatProfile is the ephemeral in-process development chain.
func HardhatProfile() *Profile {
	return &Profile{
		Name:          "hardhat",
		ChainID:       HardhatChainID,
		Confirmations: 1,
		Development:   true,
		InProcess:     true,
	}
}

// LocalhostProfile is a development node listening on the default port.
func LocalhostProfile() *Profile {
	return &Profile{
		Name:          "localhost",
		ChainID:       HardhatChainID,
		Confirmations: 1,
		Development:   true,
		RPCURL:        "http://127.0.0.1:8545",
	}
}

// SepoliaProfile is the Sepolia testnet.
func SepoliaProfile() *Profile {
	return &Profile{
		Name:          "sepolia",
		ChainID:       SepoliaChainID,
		OracleAddress: addressPtr(SepoliaEthUsdFeed),
		Confirmations: 6,
		ExplorerURL:   "https://sepolia.etherscan.io",
	}
}

// MainnetProfile is Ethereum mainnet.
func MainnetProfile() *Profile {
	return &Profile{
		Name:          "mainnet",
		ChainID:       MainnetChainID,
		OracleAddress: addressPtr(MainnetEthUsdFeed),
		Confirmations: 2,
		ExplorerURL:   "https://etherscan.io",
	}
}
