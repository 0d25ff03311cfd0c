package main

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/ludo-technologies/setsim/internal/logging"
	"github.com/ludo-technologies/setsim/internal/version"
	"github.com/ludo-technologies/setsim/mcp"
)

const serverName = "setsim"

func main() {
	configPath := flag.String("config", "", "Configuration file path (default: discover .setsim.toml per dataset)")
	cacheSize := flag.Int("cache-size", mcp.DefaultMatrixCacheSize, "Number of signature matrices kept in memory")
	verbose := flag.BoolP("verbose", "v", false, "Enable verbose logging")
	logFile := flag.String("log-file", "", "Also write JSON logs to this file (rotated)")
	flag.Parse()

	// MCP uses stdout for JSON-RPC, logs go to stderr
	if err := logging.Setup(logging.Options{
		Verbose: *verbose,
		Console: os.Stderr,
		File:    *logFile,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	deps, err := mcp.NewDependencies(*configPath, *cacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create dependencies")
	}

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	mcp.RegisterTools(server, mcp.NewHandlerSet(deps))

	log.Info().
		Str("version", version.Short()).
		Strs("tools", []string{"similar_pairs", "signature_matrix", "estimate_similarity"}).
		Msg("setsim MCP server ready, waiting for client on stdio")

	// ServeStdio blocks until the server is terminated
	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
