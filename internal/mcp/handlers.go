package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env ops.Env
}

// NewHandlers creates a new Handlers instance. Progress output is discarded:
// stdout belongs to the protocol.
func NewHandlers(env ops.Env) *Handlers {
	env.Reporter = nil
	return &Handlers{env: env}
}

// GenerationRequest holds the generation arguments shared by import and view.
type GenerationRequest struct {
	Kinds        []string `json:"kinds,omitempty"`
	All          bool     `json:"all,omitempty"`
	Language     string   `json:"language,omitempty"`
	DelaySeconds *float64 `json:"delay_seconds,omitempty"`
	Wait         bool     `json:"wait,omitempty"`
	Parallel     bool     `json:"parallel,omitempty"`
}

// ImportRequest represents the arguments for notebook_import.
type ImportRequest struct {
	URL string `json:"url"`
	GenerationRequest
}

// ViewRequest represents the arguments for notebook_view.
type ViewRequest struct {
	Notebook string `json:"notebook"`
	GenerationRequest
}

// ListRequest represents the arguments for notebook_list.
type ListRequest struct {
	Sort   string `json:"sort,omitempty"`
	Desc   bool   `json:"desc,omitempty"`
	Prefix string `json:"prefix,omitempty"`
}

// ReportRequest represents the arguments for notebook_report.
type ReportRequest struct {
	Notebook string `json:"notebook"`
	Path     string `json:"path,omitempty"`
	HTML     bool   `json:"html,omitempty"`
}

func (r GenerationRequest) settings() (ops.GenerationSettings, error) {
	delay, err := ops.DelayFromSeconds(r.DelaySeconds)
	if err != nil {
		return ops.GenerationSettings{}, err
	}
	return ops.GenerationSettings{
		Language: r.Language,
		Delay:    delay,
		Wait:     r.Wait,
		Parallel: r.Parallel,
	}, nil
}

// HandleImport handles the notebook_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}
	if input.URL == "" {
		return errorResult(errors.NewInvalidInput("url is required")), nil
	}
	kinds, err := ops.ParseKinds(input.Kinds, input.All)
	if err != nil {
		return errorResult(err), nil
	}
	settings, err := input.settings()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Import(ctx, h.env, ops.ImportInput{
		URL:                input.URL,
		Kinds:              kinds,
		GenerationSettings: settings,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleView handles the notebook_view tool call.
func (h *Handlers) HandleView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ViewRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}
	kinds, err := ops.ParseKinds(input.Kinds, input.All)
	if err != nil {
		return errorResult(err), nil
	}
	settings, err := input.settings()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.View(ctx, h.env, ops.ViewInput{
		Notebook:           input.Notebook,
		Kinds:              kinds,
		GenerationSettings: settings,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the notebook_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	result, err := ops.List(ctx, h.env.Client, ops.ListInput{
		Sort:   input.Sort,
		Desc:   input.Desc,
		Prefix: input.Prefix,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleReport handles the notebook_report tool call.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidInput(err.Error())), nil
	}

	result, err := ops.Report(ctx, h.env, ops.ReportInput{
		Notebook: input.Notebook,
		Path:     input.Path,
		HTML:     input.HTML,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are withheld.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if e, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    e.Code,
			"message": e.Message,
			"status":  e.Status,
		}
		if e.Code != errors.ErrInternal && e.Details != nil {
			errorObj["details"] = e.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
