package mcp

import (
	"io"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Services contains all domain services needed by MCP.
type Services struct {
	Tracker  TrackerService
	Rules    RuleService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "worklog",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger.With("transport", cfg.TransportMode), "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger.With("transport", cfg.TransportMode), "outbound"))

	handler := NewHandler(cfg.Services.Tracker, cfg.Services.Rules, cfg.Services.Activity)
	registerTools(server, handler, logger)

	return server
}
