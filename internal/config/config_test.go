package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gateway-fm/fundme/internal/account"
	"github.com/gateway-fm/fundme/internal/network"
)

// isolateEnv clears the variables Load reads so the host environment
// cannot leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PRIVATE_KEY", "ETHERSCAN_API_KEY", "ETHERSCAN_API_URL", "COINMARKETCAP_API_KEY",
		"DATABASE_PATH", "ARTIFACTS_DIR", "LOG_LEVEL", "LOG_FORMAT", "METRICS_FILE",
		"REPORT_GAS", "NETWORK", "SEPOLIA_RPC_URL", "MAINNET_RPC_URL", "LOCALHOST_RPC_URL",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fundme.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("", Overrides{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Network != DefaultNetwork {
		t.Errorf("Network = %q, want %q", cfg.Network, DefaultNetwork)
	}
	if cfg.DatabasePath != DefaultDatabasePath {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, DefaultDatabasePath)
	}
	if cfg.GasReporter.OutputFile != DefaultGasReportFile {
		t.Errorf("OutputFile = %q, want %q", cfg.GasReporter.OutputFile, DefaultGasReportFile)
	}
	if cfg.GasReporter.Currency != "USD" || cfg.GasReporter.Token != "ETH" {
		t.Errorf("unexpected gas reporter defaults: %+v", cfg.GasReporter)
	}
	if !cfg.GasReporter.Enabled {
		t.Error("gas reporter must be on by default")
	}
	if cfg.VerificationEnabled() {
		t.Error("verification must be off without an API key")
	}
}

func TestLoadFile(t *testing.T) {
	isolateEnv(t)

	path := writeConfig(t, `
default_network = "localhost"
artifacts_dir = "out"
database_path = "state/fundme.db"

[networks.localhost]
url = "http://127.0.0.1:9545"

[networks.anvil]
chain_id = 31337
url = "http://127.0.0.1:8546"
development = true

[networks.holesky]
chain_id = 17000
url = "https://holesky.example"
oracle_address = "0x694AA1769357215DE4FAC081bf1f309aDC325306"
confirmations = 3

[gas_reporter]
enabled = true
output_file = "gas.txt"
gas_price_gwei = 12.5
`)

	cfg, err := Load(path, Overrides{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Network != "localhost" {
		t.Errorf("Network = %q, want localhost", cfg.Network)
	}
	if cfg.ArtifactsDir != "out" || cfg.DatabasePath != "state/fundme.db" {
		t.Errorf("unexpected paths: %q %q", cfg.ArtifactsDir, cfg.DatabasePath)
	}
	if !cfg.GasReporter.Enabled || cfg.GasReporter.OutputFile != "gas.txt" || cfg.GasReporter.GasPriceGwei != 12.5 {
		t.Errorf("unexpected gas reporter: %+v", cfg.GasReporter)
	}
	if cfg.GasReporter.Currency != DefaultCurrency {
		t.Errorf("unset keys must keep defaults, Currency = %q", cfg.GasReporter.Currency)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry failed: %v", err)
	}

	local, err := reg.Resolve("localhost")
	if err != nil {
		t.Fatalf("Resolve localhost failed: %v", err)
	}
	if local.RPCURL != "http://127.0.0.1:9545" {
		t.Errorf("localhost RPCURL = %q", local.RPCURL)
	}

	anvil, err := reg.Resolve("anvil")
	if err != nil {
		t.Fatalf("Resolve anvil failed: %v", err)
	}
	if !anvil.Development || anvil.OracleAddress != nil {
		t.Errorf("anvil must be a development network without oracle: %+v", anvil)
	}

	holesky, err := reg.Resolve("holesky")
	if err != nil {
		t.Fatalf("Resolve holesky failed: %v", err)
	}
	if holesky.Development || holesky.Confirmations != 3 || holesky.ChainID != 17000 {
		t.Errorf("unexpected holesky profile: %+v", holesky)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolateEnv(t)

	path := writeConfig(t, `default_netwrok = "sepolia"`)
	if _, err := Load(path, Overrides{}); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolateEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml"), Overrides{}); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadPrecedence(t *testing.T) {
	isolateEnv(t)

	path := writeConfig(t, `
database_path = "file.db"
log_level = "warn"
`)
	t.Setenv("DATABASE_PATH", "env.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REPORT_GAS", "false")

	cfg, err := Load(path, Overrides{DatabasePath: "flag.db", Network: "sepolia"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DatabasePath != "flag.db" {
		t.Errorf("flags must win, DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("env must beat the file, LogLevel = %q", cfg.LogLevel)
	}
	if cfg.GasReporter.Enabled {
		t.Error("REPORT_GAS=false must disable the gas reporter")
	}
	if cfg.Network != "sepolia" {
		t.Errorf("Network = %q, want sepolia", cfg.Network)
	}

	on := true
	cfg, err = Load(path, Overrides{ReportGas: &on})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.GasReporter.Enabled {
		t.Error("flag must beat REPORT_GAS")
	}
}

func TestLoadInvalidReportGas(t *testing.T) {
	isolateEnv(t)
	t.Setenv("REPORT_GAS", "sometimes")

	if _, err := Load("", Overrides{}); err == nil {
		t.Fatal("expected error for invalid REPORT_GAS")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid defaults", modify: func(c *Config) {}},
		{name: "empty network", modify: func(c *Config) { c.Network = "" }, wantErr: true},
		{name: "empty database", modify: func(c *Config) { c.DatabasePath = "" }, wantErr: true},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "bad log format", modify: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
		{name: "json format", modify: func(c *Config) { c.LogFormat = "json" }},
		{name: "negative gas price", modify: func(c *Config) { c.GasReporter.GasPriceGwei = -1 }, wantErr: true},
		{
			name:    "negative chain id",
			modify:  func(c *Config) { c.Networks = map[string]NetworkConfig{"x": {ChainID: -1}} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.Network = DefaultNetwork
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRPCURL(t *testing.T) {
	isolateEnv(t)
	t.Setenv("SEPOLIA_RPC_URL", "https://sepolia.example/v3/key")

	cfg, err := Load("", Overrides{Network: "sepolia"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	p, err := cfg.Profile()
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	url, err := cfg.RPCURL(p)
	if err != nil {
		t.Fatalf("RPCURL failed: %v", err)
	}
	if url != "https://sepolia.example/v3/key" {
		t.Errorf("RPCURL = %q", url)
	}

	mainnet, err := network.DefaultRegistry().Resolve("mainnet")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, err := cfg.RPCURL(mainnet); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret, got %v", err)
	}

	hardhat, err := network.DefaultRegistry().Resolve("hardhat")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if url, err := cfg.RPCURL(hardhat); err != nil || url != "" {
		t.Errorf("in-process network needs no URL, got %q, %v", url, err)
	}
}

func TestSignerKey(t *testing.T) {
	reg := network.DefaultRegistry()
	hardhat, _ := reg.Resolve("hardhat")
	sepolia, _ := reg.Resolve("sepolia")

	cfg := defaults()
	key, err := cfg.SignerKey(hardhat)
	if err != nil || key != "" {
		t.Errorf("development network: got %q, %v", key, err)
	}
	if _, err := cfg.SignerKey(sepolia); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("expected ErrMissingSecret, got %v", err)
	}

	cfg.PrivateKey = account.DevelopmentKeys[1]
	key, err = cfg.SignerKey(sepolia)
	if err != nil || key != account.DevelopmentKeys[1] {
		t.Errorf("configured key: got %q, %v", key, err)
	}
}

func TestSigners(t *testing.T) {
	reg := network.DefaultRegistry()
	hardhat, _ := reg.Resolve("hardhat")
	sepolia, _ := reg.Resolve("sepolia")

	cfg := defaults()
	signers, err := cfg.Signers(hardhat)
	if err != nil {
		t.Fatalf("Signers failed: %v", err)
	}
	if len(signers) != len(account.DevelopmentKeys) {
		t.Errorf("expected %d development signers, got %d", len(account.DevelopmentKeys), len(signers))
	}

	cfg.PrivateKey = "0x" + account.DevelopmentKeys[3]
	signers, err = cfg.Signers(hardhat)
	if err != nil {
		t.Fatalf("Signers failed: %v", err)
	}
	if len(signers) != len(account.DevelopmentKeys) {
		t.Errorf("configured key must not be duplicated, got %d signers", len(signers))
	}
	want, _ := account.NewAccountFromHex(account.DevelopmentKeys[3])
	if signers[0].Address != want.Address {
		t.Errorf("deployer = %s, want %s", signers[0].Address, want.Address)
	}

	signers, err = cfg.Signers(sepolia)
	if err != nil {
		t.Fatalf("Signers failed: %v", err)
	}
	if len(signers) != 1 {
		t.Errorf("RPC networks use only the configured key, got %d signers", len(signers))
	}

	cfg.PrivateKey = "not-a-key"
	if _, err := cfg.Signers(sepolia); err == nil {
		t.Error("expected error for invalid key")
	}
}
