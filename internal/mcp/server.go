package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/ytnb/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"notebook_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"notebook_view": {
		def:     viewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleView },
	},
	"notebook_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"notebook_report": {
		def:     reportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReport },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns the names in the list that are not tools.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server exposing the notebook tools.
// Tools listed in env.Config.DisabledTools are not registered.
func NewServer(env ops.Env, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"ytnb",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(env)

	disabled := make(map[string]bool)
	if env.Config != nil {
		for _, name := range env.Config.DisabledTools {
			disabled[name] = true
		}
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the MCP tools over stdio.
func Run(env ops.Env, version string) error {
	return server.ServeStdio(NewServer(env, version))
}
