// Package tools exposes project operations as MCP tools.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentic-research/rosgraph/internal/launch"
	"github.com/agentic-research/rosgraph/internal/meta"
	"github.com/agentic-research/rosgraph/internal/project"
	"github.com/agentic-research/rosgraph/internal/report"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients.
var Version = "dev"

// Handler serves tool calls against one project file. Every call opens the
// file afresh so edits made by the CLI in between are visible.
type Handler struct {
	Path string
}

// NewServer returns an MCP server with every tool registered.
func NewServer(path string) *server.MCPServer {
	h := &Handler{Path: path}
	s := server.NewMCPServer(
		"rosgraph",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool("list_launch_files",
		mcp.WithDescription("List the top-level launch files of the project with their IDs."),
	), h.ListLaunchFiles)

	s.AddTool(mcp.NewTool("export_launch",
		mcp.WithDescription("Render one launch file of the project as roslaunch XML."),
		mcp.WithString("launch_id", mcp.Required(), mcp.Description("Model ID of the launch file, e.g. /launch1")),
	), h.ExportLaunch)

	s.AddTool(mcp.NewTool("check_model",
		mcp.WithDescription("Report duplicate node names, conflicting or cyclic arguments and invalid rosparam YAML."),
		mcp.WithString("root_id", mcp.Description("Limit the check to this subtree")),
	), h.CheckModel)

	s.AddTool(mcp.NewTool("connect_model",
		mcp.WithDescription("Derive topic connections between publishers and subscribers and save the project."),
		mcp.WithString("launch_id", mcp.Description("Only connect this launch file")),
	), h.ConnectModel)

	s.AddTool(mcp.NewTool("import_launch",
		mcp.WithDescription("Add a launch file given as roslaunch XML to the project and save it."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the new launch file")),
		mcp.WithString("xml", mcp.Required(), mcp.Description("roslaunch XML text")),
	), h.ImportLaunch)

	return s
}

func (h *Handler) open(ctx context.Context) (*project.Project, error) {
	return project.Open(ctx, h.Path)
}

func diagnosticsText(diags []report.Diagnostic) string {
	var b strings.Builder
	for _, d := range diags {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (h *Handler) ListLaunchFiles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.open(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer func() { _ = p.Close() }()

	ids, err := p.LaunchFiles()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	for _, id := range ids {
		n, err := p.Store.GetNode(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%s\t%s\n", id, launch.FileName(meta.String(p.Store, n, "name")))
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("no launch files"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (h *Handler) ExportLaunch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("launch_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := h.open(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer func() { _ = p.Close() }()

	n, err := p.Store.GetNode(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", id, err)), nil
	}
	if meta.Classify(p.Store, n) != meta.LaunchFile {
		return mcp.NewToolResultError(fmt.Sprintf("%s is not a launch file", id)), nil
	}
	text, rep := launch.Serialize(p.Store, id)
	if len(rep.Diagnostics) > 0 {
		text += "<!--\n" + diagnosticsText(rep.Diagnostics) + "-->\n"
	}
	return mcp.NewToolResultText(text), nil
}

func (h *Handler) CheckModel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.open(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer func() { _ = p.Close() }()

	root := req.GetString("root_id", "")
	if root != "" {
		if _, err := p.Store.GetNode(root); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", root, err)), nil
		}
	}
	diags, err := p.Check(ctx, root)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(diags) == 0 {
		return mcp.NewToolResultText("no findings"), nil
	}
	return mcp.NewToolResultText(diagnosticsText(diags)), nil
}

func (h *Handler) ConnectModel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.open(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer func() { _ = p.Close() }()

	rep, err := p.Connect(ctx, req.GetString("launch_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := p.Save(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(rep.String() + "\n" + diagnosticsText(rep.Diagnostics)), nil
}

func (h *Handler) ImportLaunch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	src, err := req.RequireString("xml")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := h.open(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer func() { _ = p.Close() }()

	id, rep, err := p.Import(ctx, name, strings.NewReader(src))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := p.Save(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n%s\n%s", id, rep, diagnosticsText(rep.Diagnostics))), nil
}

// Serve runs the server on stdin and stdout until the client disconnects.
func Serve(path string) error {
	return server.ServeStdio(NewServer(path))
}
