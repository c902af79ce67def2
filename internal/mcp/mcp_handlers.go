package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/huangsam/timelapse/core"
	"github.com/huangsam/timelapse/core/plot"
	"github.com/huangsam/timelapse/core/session"
	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
// The corpus is loaded on first use and the session is shared by every
// tool call, so mu guards both.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager

	mu      sync.Mutex
	corpus  *core.Corpus
	session *session.Session
}

// commitDetail is the get_commit result.
type commitDetail struct {
	schema.Commit
	Visible bool                `json:"visible"`
	Tooltip []plot.TooltipField `json:"tooltip"`
}

// open loads the corpus once. Callers hold mu.
func (h *toolHandler) open(ctx context.Context) (*session.Session, error) {
	if h.session != nil {
		return h.session, nil
	}
	corpus, s, err := core.OpenSession(ctx, h.baseCfg, h.mgr)
	if err != nil {
		return nil, err
	}
	h.corpus, h.session = corpus, s
	return s, nil
}

// moveCursor applies the optional "at" or "progress" arguments.
func moveCursor(s *session.Session, request mcp.CallToolRequest) error {
	if at := request.GetString("at", ""); at != "" {
		spec, err := contract.ParseCursorSpec(at)
		if err != nil {
			return err
		}
		return core.ApplyCursor(s, spec)
	}
	if _, ok := request.GetArguments()["progress"]; ok {
		s.SetProgress(request.GetFloat("progress", 100))
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandler) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.open(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	if err := moveCursor(s, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid cursor: %v", err)), nil
	}

	view := s.View()
	progress := view.Progress
	return jsonResult(schema.StatsReport{
		Input:    h.corpus.Path,
		Rejected: len(h.corpus.Rejected),
		CacheHit: h.corpus.CacheHit,
		Corpus:   h.corpus.Stats,
		At:       view.At,
		Progress: &progress,
		Snapshot: &view.Stats,
	})
}

func (h *toolHandler) handleGetFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.open(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	if err := moveCursor(s, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid cursor: %v", err)), nil
	}

	view := s.View()
	files := view.Files
	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = l
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return jsonResult(schema.FilesReport{
		At:         view.At,
		Progress:   view.Progress,
		TotalFiles: len(view.Files),
		Files:      files,
	})
}

func (h *toolHandler) handleSelectCommits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var coords [4]float64
	for i, name := range []string{"x0", "y0", "x1", "y1"} {
		v, err := request.RequireFloat(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		coords[i] = v
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.open(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	if err := moveCursor(s, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid cursor: %v", err)), nil
	}

	s.SetSelection(&schema.Rect{X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3]})
	return jsonResult(core.SelectionReport(s))
}

func (h *toolHandler) handleNarrativeStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	step, err := request.RequireInt("step")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.open(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	report, err := core.NarrativeReport(s, step, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleGetCommit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.open(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	c, ok := s.Commit(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("commit %q not found", id)), nil
	}
	return jsonResult(commitDetail{
		Commit:  c,
		Visible: !c.Datetime.After(s.CursorTime()),
		Tooltip: plot.TooltipFields(c),
	})
}
