package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ludo-technologies/docsim/internal/config"
	"github.com/ludo-technologies/docsim/internal/logging"
	"github.com/ludo-technologies/docsim/internal/metrics"
	"github.com/ludo-technologies/docsim/internal/version"
	"github.com/ludo-technologies/docsim/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	flag "github.com/spf13/pflag"
)

const serverName = "docsim"

func main() {
	configPath := flag.String("config", "", "Configuration file (default: discover .docsim.toml from each target)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	// stdout carries JSON-RPC, logs go to stderr
	logging.Setup(*logLevel, "text")
	logger := logging.WithComponent("mcp")

	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	m := metrics.New()
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, m)
	}

	// Create MCP server with tool capabilities
	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	mcp.RegisterTools(server, mcp.NewHandlerSet(mcp.NewDependencies(cfg, *configPath, m)))

	logger.Info("starting MCP server",
		"name", serverName,
		"version", version.Short(),
		"tools", []string{"find_similar_documents", "find_duplicate_pairs", "get_index_stats"})

	// Blocks until the client disconnects
	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func serveMetrics(addr string, m *metrics.Metrics) {
	logger := logging.WithComponent("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", "error", err)
	}
}
