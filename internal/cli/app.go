package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gateway-fm/fundme/internal/account"
	"github.com/gateway-fm/fundme/internal/artifact"
	"github.com/gateway-fm/fundme/internal/chain"
	"github.com/gateway-fm/fundme/internal/config"
	"github.com/gateway-fm/fundme/internal/confirm"
	"github.com/gateway-fm/fundme/internal/deploy"
	"github.com/gateway-fm/fundme/internal/devchain"
	"github.com/gateway-fm/fundme/internal/metrics"
	"github.com/gateway-fm/fundme/internal/network"
	"github.com/gateway-fm/fundme/internal/storage"
	"github.com/gateway-fm/fundme/internal/verify"
)

// app holds what every command shares: configuration, logger, metrics and
// the on-disk store.
type app struct {
	cfg      *config.Config
	profile  *network.Profile
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.PrometheusMetrics
	store    *storage.SQLiteStorage
}

// loadConfig applies the global flags on top of the project file and
// environment.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile, config.Overrides{
		Network:      networkName,
		ArtifactsDir: artifactsDir,
		DatabasePath: databasePath,
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		MetricsFile:  metricsFile,
	})
}

func loadApp(out io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(out, cfg.LogLevel, cfg.LogFormat)

	profile, err := cfg.Profile()
	if err != nil {
		return nil, err
	}

	if cfg.DatabasePath != storage.MemoryPath {
		dir := filepath.Dir(cfg.DatabasePath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	return &app{
		cfg:      cfg,
		profile:  profile,
		logger:   logger,
		registry: registry,
		metrics:  metrics.NewPrometheusMetrics(registry),
		store:    store,
	}, nil
}

// newLogger builds the process logger. Logs go to out so command output on
// stdout stays machine readable.
func newLogger(out io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

func (a *app) close() {
	if a.cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(a.cfg.MetricsFile, a.registry); err != nil {
			a.logger.Warn("failed to write metrics", slog.String("path", a.cfg.MetricsFile), slog.String("error", err.Error()))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close database", slog.String("error", err.Error()))
	}
}

// session is a live connection to the selected network.
type session struct {
	backend   chain.Backend
	signers   []*account.Account
	artifacts artifact.Source
	heads     confirm.HeadSource
	// deployments is the on-disk store, or a throwaway one for in-process
	// networks whose state dies with the process.
	deployments storage.DeploymentStore

	closers []func()
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// connect starts the in-process chain or dials the configured node.
func (a *app) connect(ctx context.Context) (*session, error) {
	signers, err := a.cfg.Signers(a.profile)
	if err != nil {
		return nil, err
	}
	if a.profile.InProcess {
		return a.connectInProcess(signers)
	}
	return a.connectRPC(ctx, signers)
}

func (a *app) connectInProcess(signers []*account.Account) (*session, error) {
	ch, err := devchain.New(devchain.Config{
		ChainID:  a.profile.ChainID,
		Accounts: signers,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, err
	}
	s := &session{backend: ch, signers: ch.Accounts(), heads: confirm.NewPoller(ch, a.logger)}
	s.closers = append(s.closers, ch.Close)

	s.artifacts = a.developmentArtifacts()

	mem, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		return nil, err
	}
	s.deployments = mem
	s.closers = append(s.closers, func() { _ = mem.Close() })
	return s, nil
}

func (a *app) connectRPC(ctx context.Context, signers []*account.Account) (*session, error) {
	url, err := a.cfg.RPCURL(a.profile)
	if err != nil {
		return nil, err
	}
	var sources artifact.Source
	if a.profile.Development {
		sources = a.developmentArtifacts()
	} else {
		dir, err := artifact.NewDir(a.cfg.ArtifactsDir)
		if err != nil {
			return nil, fmt.Errorf("%w: compile the contracts before deploying to %s", err, a.profile.Name)
		}
		sources = dir
	}

	client, err := chain.Dial(ctx, url, a.profile.ChainID)
	if err != nil {
		return nil, err
	}
	s := &session{backend: client, signers: signers, artifacts: sources, deployments: a.store}
	s.closers = append(s.closers, client.Close)

	heads, err := confirm.DialWSHeads(ctx, url, a.logger)
	if err != nil {
		a.logger.Debug("newHeads subscription unavailable, polling instead", slog.String("error", err.Error()))
		s.heads = confirm.NewPoller(client, a.logger)
		return s, nil
	}
	s.heads = heads.WithFallback(confirm.NewPoller(client, a.logger))
	s.closers = append(s.closers, func() { _ = heads.Close() })
	return s, nil
}

// developmentArtifacts prefers a compiled artifacts directory and falls back
// to the embedded bytecode.
func (a *app) developmentArtifacts() artifact.Chain {
	sources := artifact.Chain{}
	if dir, err := artifact.NewDir(a.cfg.ArtifactsDir); err == nil {
		sources = append(sources, dir)
	} else {
		a.logger.Debug("no artifacts directory, using built-in bytecode", slog.String("dir", a.cfg.ArtifactsDir))
	}
	return append(sources, artifact.Builtin{})
}

// verifier is nil when deployments on the selected network are not verified.
func (a *app) verifier() *verify.Verifier {
	if !verify.ShouldVerify(a.profile, a.cfg.EtherscanAPIKey) {
		return nil
	}
	client := verify.NewEtherscanClient(a.cfg.EtherscanAPIURL, a.cfg.EtherscanAPIKey, a.profile.ChainID, a.logger)
	return verify.NewVerifier(client, a.profile.Name, a.metrics, a.logger)
}

func (a *app) environment(s *session) *deploy.Environment {
	return &deploy.Environment{
		Profile:   a.profile,
		Backend:   s.backend,
		Deployer:  s.signers[0],
		Artifacts: s.artifacts,
		Store:     s.deployments,
		Verifier:  a.verifier(),
		Heads:     s.heads,
		Metrics:   a.metrics,
		Logger:    a.logger,
	}
}

// withApp loads the app, runs fn and flushes metrics afterwards.
func withApp(ctx context.Context, out io.Writer, fn func(ctx context.Context, a *app) error) error {
	a, err := loadApp(out)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}
