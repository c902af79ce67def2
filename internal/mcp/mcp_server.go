// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Timelapse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Timelapse Replay Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_stats ---
	s.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Summarize the commit table: corpus-wide stats, plus the snapshot at a cursor when one is given."),
		mcp.WithNumber("progress", mcp.Description("Slider position between 0 and 100."), mcp.Min(0), mcp.Max(100)),
		mcp.WithString("at", mcp.Description("Cursor as an RFC3339 timestamp or 'N units ago' relative to the newest commit.")),
	), h.handleGetStats)

	// --- 2. Tool: get_files ---
	s.AddTool(mcp.NewTool("get_files",
		mcp.WithDescription("List the files visible at a cursor, largest first, with one colored unit per line."),
		mcp.WithNumber("progress", mcp.Description("Slider position between 0 and 100."), mcp.Min(0), mcp.Max(100)),
		mcp.WithString("at", mcp.Description("Cursor as an RFC3339 timestamp or 'N units ago'.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of files returned.")),
	), h.handleGetFiles)

	// --- 3. Tool: select_commits ---
	s.AddTool(mcp.NewTool("select_commits",
		mcp.WithDescription("Brush a rectangle over the scatter plot and summarize the commits inside it."),
		mcp.WithNumber("x0", mcp.Description("Left edge in plot coordinates."), mcp.Required()),
		mcp.WithNumber("y0", mcp.Description("Top edge in plot coordinates."), mcp.Required()),
		mcp.WithNumber("x1", mcp.Description("Right edge in plot coordinates."), mcp.Required()),
		mcp.WithNumber("y1", mcp.Description("Bottom edge in plot coordinates."), mcp.Required()),
		mcp.WithNumber("progress", mcp.Description("Slider position between 0 and 100."), mcp.Min(0), mcp.Max(100)),
	), h.handleSelectCommits)

	// --- 4. Tool: narrative_step ---
	s.AddTool(mcp.NewTool("narrative_step",
		mcp.WithDescription("Enter a narrative step, moving the cursor to its commit, and return every step with the synchronized stats."),
		mcp.WithNumber("step", mcp.Description("Zero-based step index."), mcp.Required()),
	), h.handleNarrativeStep)

	// --- 5. Tool: get_commit ---
	s.AddTool(mcp.NewTool("get_commit",
		mcp.WithDescription("Describe one commit the way the plot tooltip does."),
		mcp.WithString("id", mcp.Description("Commit id."), mcp.Required()),
	), h.handleGetCommit)

	return s
}

// StartMCPServer starts the Timelapse MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
