// Package mcp provides MCP server tools for inspecting fundme networks,
// deployments and test runs.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/gateway-fm/fundme/internal/gasreport"
	"github.com/gateway-fm/fundme/internal/network"
	"github.com/gateway-fm/fundme/internal/storage"
	"github.com/gateway-fm/fundme/internal/view"
	"github.com/gateway-fm/fundme/pkg/types"
)

// Store is the part of the record database the tools read.
type Store interface {
	storage.DeploymentStore
	storage.RunStore
	storage.GasStore
}

// Source answers tool queries from the network registry and the record
// database. It never writes.
type Source struct {
	registry *network.Registry
	selected string
	store    Store
}

// NewSource creates a Source. selected is the network used when a tool is
// called without one.
func NewSource(registry *network.Registry, selected string, store Store) *Source {
	return &Source{registry: registry, selected: selected, store: store}
}

// Networks returns every registered network, resolved where possible.
func (s *Source) Networks() []types.Network {
	names := s.registry.Names()
	out := make([]types.Network, 0, len(names))
	for _, name := range names {
		p, err := s.registry.Resolve(name)
		if err != nil {
			p = s.registry.Get(name)
		}
		out = append(out, view.Network(p))
	}
	return out
}

// Network resolves name, or the selected network when name is empty.
func (s *Source) Network(name string) (types.Network, error) {
	if name == "" {
		name = s.selected
	}
	p, err := s.registry.Resolve(name)
	if err != nil {
		return types.Network{}, err
	}
	return view.Network(p), nil
}

// Deployments lists recorded deployments on network, or on every network
// when it is empty.
func (s *Source) Deployments(ctx context.Context, network string) ([]types.Deployment, error) {
	records, err := s.store.ListDeployments(ctx, network)
	if err != nil {
		return nil, err
	}
	out := make([]types.Deployment, len(records))
	for i, d := range records {
		explorer := ""
		if p := s.registry.Get(d.Network); p != nil {
			explorer = p.ExplorerURL
		}
		out[i] = view.Deployment(d, explorer)
	}
	return out, nil
}

// Runs returns a page of runs, newest first.
func (s *Source) Runs(ctx context.Context, limit, offset int) (types.RunList, error) {
	page, err := s.store.ListRuns(ctx, limit, offset)
	if err != nil {
		return types.RunList{}, err
	}
	return view.RunList(page), nil
}

// Run returns a run with its check results.
func (s *Source) Run(ctx context.Context, id string) (types.Run, error) {
	r, err := s.store.GetRun(ctx, id)
	if err != nil {
		return types.Run{}, err
	}
	return view.Run(*r, true), nil
}

// GasReport summarizes the gas samples of a run, the latest one when id is
// empty.
func (s *Source) GasReport(ctx context.Context, id string) (types.GasReport, error) {
	if id == "" {
		page, err := s.store.ListRuns(ctx, 1, 0)
		if err != nil {
			return types.GasReport{}, err
		}
		if len(page.Runs) == 0 {
			return types.GasReport{}, fmt.Errorf("no runs recorded: %w", storage.ErrNotFound)
		}
		id = page.Runs[0].ID
	} else if _, err := s.store.GetRun(ctx, id); err != nil {
		return types.GasReport{}, err
	}

	samples, err := s.store.GetGasSamples(ctx, id)
	if err != nil {
		return types.GasReport{}, err
	}
	return view.GasReport(id, gasreport.Summarize(samples)), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound) || errors.Is(err, network.ErrUnknownNetwork)
}
