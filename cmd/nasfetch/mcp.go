package main

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/taigrr/nasfetch/internal/config"
	"github.com/taigrr/nasfetch/internal/remote"
	"github.com/taigrr/nasfetch/internal/transfer"
)

// The mcp subcommand reuses the lister and transfer dispatcher headlessly:
// an MCP client takes the place of the fzf picker.
var (
	mcpConfig config.Config
	mcpLister *remote.Lister
	mcpNative *remote.NativeRunner
)

type (
	// ListInput contains parameters for listing a remote directory.
	ListInput struct {
		Path string `json:"path,omitempty" jsonschema:"Remote directory, absolute or relative to the configured root (default: the root)"`
	}

	// ListEntry is one item of a remote listing.
	ListEntry struct {
		Name string `json:"name"`
		Dir  bool   `json:"dir"`
	}

	// ListOutput contains the listed entries in remote order.
	ListOutput struct {
		Path    string      `json:"path"`
		Entries []ListEntry `json:"entries"`
	}

	// FetchInput contains parameters for downloading a remote path.
	FetchInput struct {
		Path string `json:"path" jsonschema:"Remote path to download, absolute or relative to the configured root"`
		Dir  bool   `json:"dir,omitempty" jsonschema:"Set when the path is a directory (downloads recursively)"`
	}

	// FetchOutput contains the result of a download.
	FetchOutput struct {
		Success   bool   `json:"success"`
		LocalDest string `json:"localDest"`
	}
)

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve remote browsing and downloads over MCP stdio",
		Long: `mcp exposes the same remote listing and transfer machinery as the
interactive browser to MCP clients, with no picker UI involved.`,
		Args: cobra.NoArgs,
		RunE: runMCP,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg.Verbose)

	runner, native, err := newRunner(cfg)
	if err != nil {
		return err
	}
	if native != nil {
		defer native.Close()
	}

	mcpConfig = cfg
	mcpLister = remote.NewLister(runner)
	mcpNative = native

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "nasfetch",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list",
		Description: "List a remote directory. Returns entries in remote order, flagging directories.",
	}, handleList)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "fetch",
		Description: "Download a remote file or directory into the configured local destination.",
	}, handleFetch)

	if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("error running server: %w", err)
	}
	return nil
}

// resolveRemote maps tool input onto an absolute remote path under the
// spirit of the configured root: empty means the root itself, relative
// paths are joined to it, absolute paths pass through cleaned.
func resolveRemote(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return mcpConfig.RemoteRoot
	}
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Join(mcpConfig.RemoteRoot, p)
}

func handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	dir := resolveRemote(input.Path)

	entries, err := mcpLister.List(ctx, dir)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ListOutput{}, err
	}

	out := ListOutput{Path: dir, Entries: make([]ListEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, ListEntry{Name: e.Name, Dir: e.Dir})
	}
	return nil, out, nil
}

func handleFetch(ctx context.Context, req *mcp.CallToolRequest, input FetchInput) (*mcp.CallToolResult, FetchOutput, error) {
	if strings.TrimSpace(input.Path) == "" {
		return &mcp.CallToolResult{IsError: true}, FetchOutput{},
			fmt.Errorf("path is required")
	}

	request := transfer.Request{
		RemotePath: resolveRemote(input.Path),
		LocalDest:  mcpConfig.LocalDest,
		Dir:        input.Dir,
	}
	if err := download(mcpConfig, mcpNative, request); err != nil {
		return &mcp.CallToolResult{IsError: true}, FetchOutput{}, err
	}

	return nil, FetchOutput{Success: true, LocalDest: mcpConfig.LocalDest}, nil
}
