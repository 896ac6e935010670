package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/ytnb/internal/artifact"
)

var kindList = strings.Join(artifact.Names(artifact.All()), ", ")

// generationOptions are shared by the tools that can request artifacts.
func generationOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithArray("kinds",
			mcp.Description("Artifact kinds to generate when missing: "+kindList),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithBoolean("all", mcp.Description("Request every artifact kind")),
		mcp.WithString("language", mcp.Description("Language code for localized artifacts (default from config)")),
		mcp.WithNumber("delay_seconds", mcp.Description("Pause between the start of consecutive generation calls")),
		mcp.WithBoolean("wait", mcp.Description("Wait for each artifact to finish generating")),
		mcp.WithBoolean("parallel", mcp.Description("Run independent artifact lanes concurrently")),
	}
}

var importToolDef = mcp.NewTool("notebook_import",
	append([]mcp.ToolOption{
		mcp.WithDescription("Create or reuse the NotebookLM notebook for a YouTube video and generate the missing requested artifacts. " +
			"Defaults to report and mind-map when no kinds are given."),
		mcp.WithString("url", mcp.Required(), mcp.Description("YouTube video URL (watch, youtu.be or embed form)")),
	}, generationOptions()...)...,
)

var viewToolDef = mcp.NewTool("notebook_view",
	append([]mcp.ToolOption{
		mcp.WithDescription("Show which artifacts a notebook has; generates requested kinds that are missing."),
		mcp.WithString("notebook", mcp.Required(), mcp.Description("Notebook id or NotebookLM URL")),
	}, generationOptions()...)...,
)

var listToolDef = mcp.NewTool("notebook_list",
	mcp.WithDescription("List NotebookLM notebooks."),
	mcp.WithString("sort", mcp.Description("Sort key"), mcp.Enum("title", "created", "updated")),
	mcp.WithBoolean("desc", mcp.Description("Sort descending")),
	mcp.WithString("prefix", mcp.Description("Only notebooks whose title starts with this prefix")),
)

var reportToolDef = mcp.NewTool("notebook_report",
	mcp.WithDescription("Download a notebook's report to a local markdown or HTML file."),
	mcp.WithString("notebook", mcp.Required(), mcp.Description("Notebook id or NotebookLM URL")),
	mcp.WithString("path", mcp.Description("Destination .md or .html file (default: ~/.ytnb/reports/<title>-<timestamp>.md)")),
	mcp.WithBoolean("html", mcp.Description("Render HTML when using the default path")),
)
