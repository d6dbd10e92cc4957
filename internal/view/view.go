// Package view converts internal records into the public output types.
package view

import (
	"strings"

	"github.com/gateway-fm/fundme/internal/gasreport"
	"github.com/gateway-fm/fundme/internal/network"
	"github.com/gateway-fm/fundme/internal/storage"
	"github.com/gateway-fm/fundme/pkg/types"
)

// Network converts a resolved profile.
func Network(p *network.Profile) types.Network {
	n := types.Network{
		Name:          p.Name,
		ChainID:       p.ChainID,
		Development:   p.Development,
		InProcess:     p.InProcess,
		Oracle:        types.OracleMock,
		Confirmations: p.RequiredConfirmations(),
		RPCConfigured: p.InProcess || p.RPCURL != "",
		ExplorerURL:   p.ExplorerURL,
	}
	if oracle := p.Oracle(); !oracle.IsMock() {
		n.Oracle = types.OracleKnown
		n.OracleAddress = oracle.Address().Hex()
	}
	return n
}

// Deployment converts a deployment record. explorer is the block explorer
// base URL of the network, empty when it has none.
func Deployment(d storage.Deployment, explorer string) types.Deployment {
	out := types.Deployment{
		Network:         d.Network,
		ChainID:         d.ChainID,
		Name:            d.Name,
		Address:         d.Address,
		TxHash:          d.TxHash,
		BlockNumber:     d.BlockNumber,
		Deployer:        d.Deployer,
		ConstructorArgs: d.ConstructorArgs,
		Confirmations:   d.Confirmations,
		GasUsed:         d.GasUsed,
		Verified:        d.Verified,
		CreatedAt:       d.CreatedAt,
	}
	if explorer != "" {
		out.ExplorerURL = strings.TrimSuffix(explorer, "/") + "/address/" + d.Address
	}
	return out
}

// Run converts a harness run. Results are included when withResults is set.
func Run(r storage.Run, withResults bool) types.Run {
	out := types.Run{
		ID:           r.ID,
		Suite:        r.Suite,
		Network:      r.Network,
		ChainID:      r.ChainID,
		Status:       string(r.Status),
		Passed:       r.Passed,
		Failed:       r.Failed,
		Skipped:      r.Skipped,
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
		ErrorMessage: r.ErrorMessage,
	}
	if r.CompletedAt != nil {
		out.DurationMs = r.CompletedAt.Sub(r.StartedAt).Milliseconds()
	}
	if withResults {
		for _, c := range r.Results {
			out.Results = append(out.Results, types.CheckResult{
				Name:       c.Name,
				Status:     types.CheckStatusOf(c.Passed, c.Skipped),
				Error:      c.Error,
				DurationMs: c.DurationMs,
			})
		}
	}
	return out
}

// RunList converts a page of runs without their results.
func RunList(p *storage.PaginatedRuns) types.RunList {
	out := types.RunList{Runs: make([]types.Run, 0, len(p.Runs)), Total: p.Total, Limit: p.Limit, Offset: p.Offset}
	for _, r := range p.Runs {
		out.Runs = append(out.Runs, Run(r, false))
	}
	return out
}

// GasReport converts a gas summary.
func GasReport(runID string, s gasreport.Summary) types.GasReport {
	return types.GasReport{
		RunID:       runID,
		Methods:     gasStats(s.Methods),
		Deployments: gasStats(s.Deployments),
	}
}

func gasStats(in []gasreport.Stats) []types.GasStats {
	out := make([]types.GasStats, 0, len(in))
	for _, s := range in {
		out = append(out, types.GasStats{
			Contract: s.Contract,
			Method:   s.Method,
			Min:      s.Min,
			Max:      s.Max,
			Avg:      s.Avg,
			Calls:    s.Calls,
		})
	}
	return out
}
