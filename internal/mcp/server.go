package mcp

import (
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const instructions = "CoachByte workout coach. Plan today's sets, complete them in order " +
	"(the rest timer resets to the next set's rest), log extra sets, manage the weekly " +
	"split template, and read PRs and history. Relative loads are percentages of the " +
	"exercise's estimated 1RM and resolve to concrete weights on read."

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	if log == nil {
		log = slog.Default()
	}
	s := server.NewMCPServer("CoachByte", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolNewDailyPlan, Handler: h.newDailyPlan},
		server.ServerTool{Tool: toolGetTodayPlan, Handler: h.getTodayPlan},
		server.ServerTool{Tool: toolCompleteNextSet, Handler: h.completeNextSet},
		server.ServerTool{Tool: toolLogCompletedSet, Handler: h.logCompletedSet},
		server.ServerTool{Tool: toolUpdateSummary, Handler: h.updateSummary},
		server.ServerTool{Tool: toolGetRecentHistory, Handler: h.getRecentHistory},
		server.ServerTool{Tool: toolUpdateWeeklySplitDay, Handler: h.updateWeeklySplitDay},
		server.ServerTool{Tool: toolGetWeeklySplit, Handler: h.getWeeklySplit},
		server.ServerTool{Tool: toolSetTimer, Handler: h.setTimer},
		server.ServerTool{Tool: toolGetTimer, Handler: h.getTimer},
		server.ServerTool{Tool: toolGetPRs, Handler: h.getPRs},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resToday, Handler: h.today},
		server.ServerResource{Resource: resSplit, Handler: h.split},
	)

	return s
}

// NewHTTPHandler serves s over the streamable HTTP transport.
func NewHTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithStateLess(true))
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resToday = mcp.NewResource(
	"coachbyte://today",
	"Today",
	mcp.WithResourceDescription("Today's logical day: remaining planned sets with resolved loads, completed sets and summary"),
	mcp.WithMIMEType("application/json"),
)

var resSplit = mcp.NewResource(
	"coachbyte://split",
	"Weekly Split",
	mcp.WithResourceDescription("The weekly split template for all weekdays (0=Sunday..6=Saturday)"),
	mcp.WithMIMEType("application/json"),
)
