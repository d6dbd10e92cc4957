package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gateway-fm/fundme/pkg/types"
)

// RegisterTools registers all fundme tools on the MCP server.
func RegisterTools(s *server.MCPServer, src *Source) {
	registerNetworks(s, src)
	registerNetwork(s, src)
	registerDeployments(s, src)
	registerRuns(s, src)
	registerRun(s, src)
	registerGasReport(s, src)
}

func registerNetworks(s *server.MCPServer, src *Source) {
	tool := gomcp.NewTool("fundme_networks",
		gomcp.WithDescription("List configured networks: chain id, development or public, price feed source and required confirmations."),
	)
	s.AddTool(tool, func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		return gomcp.NewToolResultText(formatNetworks(src.Networks(), src.selected)), nil
	})
}

func registerNetwork(s *server.MCPServer, src *Source) {
	tool := gomcp.NewTool("fundme_resolve_network",
		gomcp.WithDescription("Resolve one network the way deploy and test do. Fails when a public network has no price feed."),
		gomcp.WithString("name",
			gomcp.Description("Network name (default: the selected network)"),
		),
	)
	s.AddTool(tool, func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		n, err := src.Network(req.GetString("name", ""))
		if err != nil {
			return gomcp.NewToolResultError(fmt.Sprintf("Resolve failed: %v", err)), nil
		}
		return gomcp.NewToolResultText(formatNetwork(n)), nil
	})
}

func registerDeployments(s *server.MCPServer, src *Source) {
	tool := gomcp.NewTool("fundme_deployments",
		gomcp.WithDescription("List recorded contract deployments with address, block, gas used and verification state."),
		gomcp.WithString("network",
			gomcp.Description("Only this network (default: all networks)"),
		),
	)
	s.AddTool(tool, func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		deployments, err := src.Deployments(ctx, req.GetString("network", ""))
		if err != nil {
			return gomcp.NewToolResultError(fmt.Sprintf("Deployments failed: %v", err)), nil
		}
		return gomcp.NewToolResultText(formatDeployments(deployments)), nil
	})
}

func registerRuns(s *server.MCPServer, src *Source) {
	tool := gomcp.NewTool("fundme_runs",
		gomcp.WithDescription("List test suite runs with pass/fail counts, newest first (paginated)."),
		gomcp.WithNumber("limit",
			gomcp.Description("Max results to return (default: 10, max: 100)"),
		),
		gomcp.WithNumber("offset",
			gomcp.Description("Results offset for pagination (default: 0)"),
		),
	)
	s.AddTool(tool, func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		limit := req.GetInt("limit", 10)
		if limit <= 0 || limit > 100 {
			limit = 10
		}
		offset := req.GetInt("offset", 0)
		if offset < 0 {
			offset = 0
		}
		list, err := src.Runs(ctx, limit, offset)
		if err != nil {
			return gomcp.NewToolResultError(fmt.Sprintf("Runs failed: %v", err)), nil
		}
		return gomcp.NewToolResultText(formatRuns(list)), nil
	})
}

func registerRun(s *server.MCPServer, src *Source) {
	tool := gomcp.NewTool("fundme_run",
		gomcp.WithDescription("Get the outcome of every check in a test run by ID."),
		gomcp.WithString("id",
			gomcp.Required(),
			gomcp.Description("Run ID"),
		),
	)
	s.AddTool(tool, func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return gomcp.NewToolResultError("id is required"), nil
		}
		run, err := src.Run(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return gomcp.NewToolResultError(fmt.Sprintf("Run %s not found", id)), nil
			}
			return gomcp.NewToolResultError(fmt.Sprintf("Run failed: %v", err)), nil
		}
		return gomcp.NewToolResultText(formatRun(run)), nil
	})
}

func registerGasReport(s *server.MCPServer, src *Source) {
	tool := gomcp.NewTool("fundme_gas_report",
		gomcp.WithDescription("Gas used per contract method and per deployment during a test run."),
		gomcp.WithString("run_id",
			gomcp.Description("Run ID (default: latest run)"),
		),
	)
	s.AddTool(tool, func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		report, err := src.GasReport(ctx, req.GetString("run_id", ""))
		if err != nil {
			if isNotFound(err) {
				return gomcp.NewToolResultError(fmt.Sprintf("Gas report unavailable: %v\n\nRun the test suite first: fundme test", err)), nil
			}
			return gomcp.NewToolResultError(fmt.Sprintf("Gas report failed: %v", err)), nil
		}
		return gomcp.NewToolResultText(formatGasReport(report)), nil
	})
}

// Response formatting functions

func networkKind(n types.Network) string {
	if n.Development {
		return "development"
	}
	return "public"
}

func priceFeed(n types.Network) string {
	if n.Oracle == types.OracleMock {
		return "MockV3Aggregator (deployed locally)"
	}
	return n.OracleAddress
}

func formatNetworks(networks []types.Network, selected string) string {
	lines := joinLines(
		section("Networks"),
		kv("Selected", selected),
	)
	lines += "\n"
	for _, n := range networks {
		lines += fmt.Sprintf("\n- **%s** (chain %d, %s): feed %s, %d confirmation(s)",
			n.Name, n.ChainID, networkKind(n), priceFeed(n), n.Confirmations)
	}
	return lines
}

func formatNetwork(n types.Network) string {
	rpc := "not configured"
	switch {
	case n.InProcess:
		rpc = "in-process chain"
	case n.RPCConfigured:
		rpc = "configured"
	}
	explorer := n.ExplorerURL
	if explorer == "" {
		explorer = "-"
	}
	return joinLines(
		section("Network "+n.Name),
		kv("Chain ID", n.ChainID),
		kv("Kind", networkKind(n)),
		kv("Price Feed", priceFeed(n)),
		kv("Confirmations", n.Confirmations),
		kv("RPC", rpc),
		kv("Explorer", explorer),
	)
}

func formatDeployments(deployments []types.Deployment) string {
	lines := joinLines(
		section("Deployments"),
		kv("Total", formatCount(len(deployments))),
	)
	if len(deployments) == 0 {
		return lines + "\n\nNo deployments recorded."
	}
	lines += "\n"
	for _, d := range deployments {
		verified := ""
		if d.Verified {
			verified = ", verified"
		}
		lines += fmt.Sprintf("\n- **%s** on %s at `%s` (block %d, gas %s%s)",
			d.Name, d.Network, d.Address, d.BlockNumber, formatGas(d.GasUsed), verified)
		if d.ExplorerURL != "" {
			lines += "\n  " + d.ExplorerURL
		}
	}
	return lines
}

func formatRuns(list types.RunList) string {
	lines := joinLines(
		section("Test Runs"),
		kv("Total Runs", formatCount(list.Total)),
	)
	if len(list.Runs) == 0 {
		return lines + "\n\nNo test runs found."
	}
	lines += "\n"
	for _, r := range list.Runs {
		lines += fmt.Sprintf("\n- `%s` %s on %s: **%s** (%d passed, %d failed, %d skipped) %s",
			r.ID, r.Suite, r.Network, r.Status, r.Passed, r.Failed, r.Skipped, r.StartedAt.Format("2006-01-02 15:04:05"))
	}
	if list.Offset+len(list.Runs) < list.Total {
		lines += fmt.Sprintf("\n\nShowing %d-%d of %d. Use offset=%d for more.",
			list.Offset+1, list.Offset+len(list.Runs), list.Total, list.Offset+len(list.Runs))
	}
	return lines
}

func formatRun(r types.Run) string {
	lines := joinLines(
		section("Run "+r.ID),
		kv("Suite", r.Suite),
		kv("Network", fmt.Sprintf("%s (chain %d)", r.Network, r.ChainID)),
		kv("Status", r.Status),
		kv("Pass Rate", passRate(r.Passed, r.Failed)),
		kv("Duration", formatDuration(r.DurationMs)),
	)
	if r.ErrorMessage != "" {
		lines += "\n" + kv("Error", r.ErrorMessage)
	}

	lines += "\n\n" + section("Checks")
	for _, c := range r.Results {
		lines += fmt.Sprintf("\n- [%s] %s (%s)", c.Status, c.Name, formatDuration(c.DurationMs))
		if c.Error != "" && c.Status != types.CheckPassed {
			lines += "\n  " + c.Error
		}
	}
	return lines
}

func formatGasReport(r types.GasReport) string {
	lines := joinLines(
		section("Gas Report"),
		kv("Run", r.RunID),
	)
	lines += "\n\n" + section("Methods")
	if len(r.Methods) == 0 {
		lines += "\n(none)"
	}
	for _, m := range r.Methods {
		lines += fmt.Sprintf("\n- %s.%s: avg %s (min %s, max %s, %d calls)",
			m.Contract, m.Method, formatGas(m.Avg), formatGas(m.Min), formatGas(m.Max), m.Calls)
	}
	lines += "\n\n" + section("Deployments")
	if len(r.Deployments) == 0 {
		lines += "\n(none)"
	}
	for _, d := range r.Deployments {
		lines += fmt.Sprintf("\n- %s: avg %s (%d deployments)", d.Contract, formatGas(d.Avg), d.Calls)
	}
	return lines
}
