// Package mcp exposes the harness over the Model Context Protocol so an
// agent can query gates, workflow state, and configuration as tools
// instead of shelling out to hook processes.
package mcp

import (
	"context"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/gate"
)

// Config holds MCP server configuration.
type Config struct {
	// WorkDir is the project directory every tool call operates on.
	WorkDir string
}

// Server wraps the MCP SDK server around the gate engine and config
// store for one working directory.
type Server struct {
	mcpServer *mcpsdk.Server
	workDir   string
	store     *config.Store
	engine    gate.Evaluator
}

// New creates an MCP server rooted at cfg.WorkDir.
func New(cfg Config) (*Server, error) {
	workDir := cfg.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		workDir = wd
	}

	s := &Server{
		workDir: workDir,
		store:   config.Default(),
		engine:  gate.NewDefault(),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "phasegate",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds the harness tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "gate_check",
		Description: "Check whether a file operation would be allowed by the workflow gates without performing it (dry-run).",
	}, s.handleGateCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "workflow_status",
		Description: "Report the current workflow phase, completion flags, and active strictness level.",
	}, s.handleWorkflowStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "config_get",
		Description: "Read one harness configuration setting, or the full configuration when no key is given.",
	}, s.handleConfigGet)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "config_set",
		Description: "Write one harness configuration setting. The value is parsed as JSON, falling back to a plain string.",
	}, s.handleConfigSet)
}
