// Package config handles configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gateway-fm/fundme/internal/account"
	"github.com/gateway-fm/fundme/internal/network"
)

// ErrMissingSecret is returned when a secret needed by an RPC-backed
// network is not configured.
var ErrMissingSecret = errors.New("missing secret")

// Defaults
const (
	DefaultConfigFile    = "fundme.toml"
	DefaultNetwork       = "hardhat"
	DefaultDatabasePath  = "./data/fundme.db"
	DefaultArtifactsDir  = "./artifacts"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultGasReportFile = "gas-report.txt"
	DefaultCurrency      = "USD"
	DefaultToken         = "ETH"
	DefaultEtherscanURL  = "https://api.etherscan.io/v2/api"
	DefaultCoinMarketCap = "https://pro-api.coinmarketcap.com"
)

// NetworkConfig is a [networks.<name>] table of the project file.
type NetworkConfig struct {
	ChainID       int64  `toml:"chain_id"`
	URL           string `toml:"url"`
	OracleAddress string `toml:"oracle_address"`
	Confirmations uint64 `toml:"confirmations"`
	Development   *bool  `toml:"development"`
}

// GasReporterConfig is the [gas_reporter] table of the project file.
type GasReporterConfig struct {
	Enabled      bool    `toml:"enabled"`
	OutputFile   string  `toml:"output_file"`
	Currency     string  `toml:"currency"`
	Token        string  `toml:"token"`
	GasPriceGwei float64 `toml:"gas_price_gwei"`
}

// Config holds the resolved fundme configuration.
type Config struct {
	DefaultNetwork string                   `toml:"default_network"`
	ArtifactsDir   string                   `toml:"artifacts_dir"`
	DatabasePath   string                   `toml:"database_path"`
	LogLevel       string                   `toml:"log_level"`
	LogFormat      string                   `toml:"log_format"`
	MetricsFile    string                   `toml:"metrics_file"`
	Networks       map[string]NetworkConfig `toml:"networks"`
	GasReporter    GasReporterConfig        `toml:"gas_reporter"`

	// Secrets and endpoints only come from the environment.
	PrivateKey          string `toml:"-"`
	EtherscanAPIKey     string `toml:"-"`
	EtherscanAPIURL     string `toml:"-"`
	CoinMarketCapAPIKey string `toml:"-"`
	CoinMarketCapURL    string `toml:"-"`

	// Network is the selected network after flags are applied.
	Network string `toml:"-"`

	// rpcURLs holds <NAME>_RPC_URL values by lower-case network name.
	rpcURLs map[string]string
}

// Overrides are command-line values. Empty fields leave the loaded value.
type Overrides struct {
	Network      string
	ArtifactsDir string
	DatabasePath string
	LogLevel     string
	LogFormat    string
	MetricsFile  string
	ReportGas    *bool
}

func defaults() *Config {
	return &Config{
		DefaultNetwork:   DefaultNetwork,
		ArtifactsDir:     DefaultArtifactsDir,
		DatabasePath:     DefaultDatabasePath,
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
		EtherscanAPIURL:  DefaultEtherscanURL,
		CoinMarketCapURL: DefaultCoinMarketCap,
		GasReporter: GasReporterConfig{
			Enabled:    true,
			OutputFile: DefaultGasReportFile,
			Currency:   DefaultCurrency,
			Token:      DefaultToken,
		},
		rpcURLs: make(map[string]string),
	}
}

// Load builds the configuration from defaults, the project file at path,
// environment variables and finally o. An empty path reads fundme.toml
// from the working directory when it exists.
func Load(path string, o Overrides) (*Config, error) {
	cfg := defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	if err := cfg.loadEnv(os.Environ()); err != nil {
		return nil, err
	}
	cfg.applyOverrides(o)

	if cfg.Network == "" {
		cfg.Network = cfg.DefaultNetwork
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) loadEnv(environ []string) error {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && v != "" {
			env[k] = v
		}
	}

	for k, v := range env {
		if name, ok := strings.CutSuffix(k, "_RPC_URL"); ok && name != "" {
			c.rpcURLs[strings.ToLower(name)] = v
		}
	}

	if v := env["PRIVATE_KEY"]; v != "" {
		c.PrivateKey = v
	}
	if v := env["ETHERSCAN_API_KEY"]; v != "" {
		c.EtherscanAPIKey = v
	}
	if v := env["ETHERSCAN_API_URL"]; v != "" {
		c.EtherscanAPIURL = v
	}
	if v := env["COINMARKETCAP_API_KEY"]; v != "" {
		c.CoinMarketCapAPIKey = v
	}
	if v := env["DATABASE_PATH"]; v != "" {
		c.DatabasePath = v
	}
	if v := env["ARTIFACTS_DIR"]; v != "" {
		c.ArtifactsDir = v
	}
	if v := env["LOG_LEVEL"]; v != "" {
		c.LogLevel = v
	}
	if v := env["LOG_FORMAT"]; v != "" {
		c.LogFormat = v
	}
	if v := env["METRICS_FILE"]; v != "" {
		c.MetricsFile = v
	}
	if v := env["NETWORK"]; v != "" {
		c.Network = v
	}
	if v := env["REPORT_GAS"]; v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REPORT_GAS: %w", err)
		}
		c.GasReporter.Enabled = enabled
	}
	return nil
}

func (c *Config) applyOverrides(o Overrides) {
	if o.Network != "" {
		c.Network = o.Network
	}
	if o.ArtifactsDir != "" {
		c.ArtifactsDir = o.ArtifactsDir
	}
	if o.DatabasePath != "" {
		c.DatabasePath = o.DatabasePath
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.MetricsFile != "" {
		c.MetricsFile = o.MetricsFile
	}
	if o.ReportGas != nil {
		c.GasReporter.Enabled = *o.ReportGas
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Network == "" {
		return fmt.Errorf("network is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}
	for name, n := range c.Networks {
		if n.ChainID < 0 {
			return fmt.Errorf("network %s: chain id must be positive", name)
		}
	}
	if c.GasReporter.GasPriceGwei < 0 {
		return fmt.Errorf("gas_reporter.gas_price_gwei cannot be negative")
	}
	return nil
}

// Registry returns the built-in networks merged with the project file
// tables and <NAME>_RPC_URL variables.
func (c *Config) Registry() (*network.Registry, error) {
	reg := network.DefaultRegistry()
	for name, n := range c.Networks {
		err := reg.Apply(name, network.Override{
			ChainID:       n.ChainID,
			URL:           n.URL,
			OracleAddress: n.OracleAddress,
			Confirmations: n.Confirmations,
			Development:   n.Development,
		})
		if err != nil {
			return nil, err
		}
	}
	for name, url := range c.rpcURLs {
		if reg.Get(name) == nil {
			continue
		}
		if err := reg.Apply(name, network.Override{URL: url}); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Profile resolves the selected network.
func (c *Config) Profile() (*network.Profile, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	return reg.Resolve(c.Network)
}

// RPCURL returns the endpoint of an RPC-backed network.
func (c *Config) RPCURL(p *network.Profile) (string, error) {
	if p.InProcess {
		return "", nil
	}
	if p.RPCURL == "" {
		return "", fmt.Errorf("%w: %s_RPC_URL is not set", ErrMissingSecret, strings.ToUpper(p.Name))
	}
	return p.RPCURL, nil
}

// SignerKey returns PRIVATE_KEY. Development networks fall back to the well
// known development keys and get an empty string; every other network fails
// with ErrMissingSecret.
func (c *Config) SignerKey(p *network.Profile) (string, error) {
	if c.PrivateKey != "" {
		return c.PrivateKey, nil
	}
	if p.Development {
		return "", nil
	}
	return "", fmt.Errorf("%w: PRIVATE_KEY is required for network %s", ErrMissingSecret, p.Name)
}

// Signers returns the accounts used on p. The deployer comes first.
func (c *Config) Signers(p *network.Profile) ([]*account.Account, error) {
	key, err := c.SignerKey(p)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return account.DevelopmentAccounts()
	}
	acc, err := account.NewAccountFromHex(key)
	if err != nil {
		return nil, fmt.Errorf("PRIVATE_KEY: %w", err)
	}
	if p.Development {
		dev, err := account.DevelopmentAccounts()
		if err != nil {
			return nil, err
		}
		signers := []*account.Account{acc}
		for _, d := range dev {
			if d.Address != acc.Address {
				signers = append(signers, d)
			}
		}
		return signers, nil
	}
	return []*account.Account{acc}, nil
}

// VerificationEnabled reports whether an explorer API key is configured.
func (c *Config) VerificationEnabled() bool {
	return c.EtherscanAPIKey != ""
}
