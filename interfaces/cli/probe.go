package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

// probeOptions holds options for the probe command.
type probeOptions struct {
	url     string
	sse     bool
	timeout time.Duration
	call    string
	args    string
}

// newProbeCmd creates the probe command.
func (a *App) newProbeCmd() *cobra.Command {
	opts := &probeOptions{}

	cmd := &cobra.Command{
		Use:   "probe [-- command args...]",
		Short: "Connect to a running MCP server and list its tools",
		Long: `Connect to an MCP server as a client, initialize a session and list the
tools it exposes. Either connect to an HTTP endpoint with --url or start a
stdio server from the arguments after "--".

Examples:
  # Probe a streamable HTTP server
  aiera-mcp probe --url http://localhost:8000/mcp

  # Probe an SSE server
  aiera-mcp probe --url http://localhost:8000/sse --sse

  # Start a stdio server and call one tool
  aiera-mcp probe --call get_available_indexes -- aiera-mcp serve --transport stdio`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.probe(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "HTTP endpoint of the server")
	cmd.Flags().BoolVar(&opts.sse, "sse", false, "Use the SSE transport for --url")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall timeout")
	cmd.Flags().StringVar(&opts.call, "call", "", "Tool to call after listing")
	cmd.Flags().StringVar(&opts.args, "args", "{}", "JSON arguments for --call")

	return cmd
}

// connectClient opens a client for the requested transport.
func connectClient(ctx context.Context, opts *probeOptions, command []string) (*client.Client, error) {
	switch {
	case opts.url != "" && len(command) > 0:
		return nil, errors.New("use either --url or a command, not both")
	case opts.url != "" && opts.sse:
		c, err := client.NewSSEMCPClient(opts.url)
		if err != nil {
			return nil, err
		}
		return start(ctx, c)
	case opts.url != "":
		c, err := client.NewStreamableHttpClient(opts.url)
		if err != nil {
			return nil, err
		}
		return start(ctx, c)
	case len(command) > 0:
		return client.NewStdioMCPClient(command[0], os.Environ(), command[1:]...)
	default:
		return nil, errors.New("a server is required: pass --url or a command after --")
	}
}

func start(ctx context.Context, c *client.Client) (*client.Client, error) {
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// probe lists the server's tools and optionally calls one.
func (a *App) probe(ctx context.Context, opts *probeOptions, command []string) error {
	var input map[string]any
	if opts.call != "" {
		if err := json.Unmarshal([]byte(opts.args), &input); err != nil {
			return fmt.Errorf("--args must be a JSON object: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	c, err := connectClient(ctx, opts, command)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = c.Close() }()

	init := mcp.InitializeRequest{}
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: "aiera-mcp-probe", Version: Version}
	info, err := c.Initialize(ctx, init)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	_, _ = fmt.Fprintf(a.stdout, "Server: %s %s (protocol %s)\n", info.ServerInfo.Name, info.ServerInfo.Version, info.ProtocolVersion)

	listed, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("list tools: %w", err)
	}
	_, _ = fmt.Fprintf(a.stdout, "Tools (%d):\n", len(listed.Tools))
	for _, t := range listed.Tools {
		_, _ = fmt.Fprintf(a.stdout, "  - %s\n", t.Name)
	}

	if opts.call == "" {
		return nil
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = opts.call
	req.Params.Arguments = input
	res, err := c.CallTool(ctx, req)
	if err != nil {
		return fmt.Errorf("call %s: %w", opts.call, err)
	}
	var text []string
	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			text = append(text, tc.Text)
		}
	}
	_, _ = fmt.Fprintln(a.stdout, strings.Join(text, "\n"))
	if res.IsError {
		return fmt.Errorf("%s returned an error", opts.call)
	}
	return nil
}
