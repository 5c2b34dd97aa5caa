package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/gridplan/gridplan/internal/core/ingest"
	"github.com/gridplan/gridplan/internal/core/plan"
	"github.com/gridplan/gridplan/internal/core/topology"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	topologyPath := flag.String("topology", "", "Compile a topology file to stdout and exit")
	format := flag.String("format", "manifest", "Topology format: manifest or compose")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Printf("gridplan %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	// Load configuration
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	// One-shot compile mode: no server, no database
	if *topologyPath != "" {
		return compileFile(cfg, *topologyPath, *format)
	}

	// Setup logger
	logger := SetupLogger(cfg)
	logger.Info("starting gridplan",
		"version", Version,
		"config", *configPath,
	)

	// Create server
	server, err := NewServer(cfg, logger)
	if err != nil {
		if sErr, ok := err.(*ServerError); ok {
			logger.Error("failed to create server",
				"error", sErr.Err,
				"operation", sErr.Op,
			)
			return sErr.ExitCode
		}
		logger.Error("failed to create server", "error", err)
		return ExitConfigError
	}

	// Start server
	ctx := context.Background()
	if err := server.Start(ctx); err != nil {
		if sErr, ok := err.(*ServerError); ok {
			logger.Error("server error",
				"error", sErr.Err,
				"operation", sErr.Op,
			)
			return sErr.ExitCode
		}
		logger.Error("server error", "error", err)
		return ExitConfigError
	}

	return ExitSuccess
}

// compileFile validates and translates a single topology file, writing
// the deployment specification to stdout as JSON.
func compileFile(cfg *Config, path, format string) int {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read topology: %v\n", err)
		return ExitConfigError
	}

	var graph *topology.Graph
	switch format {
	case "manifest":
		graph, err = ingest.ParseManifest(string(content))
	case "compose":
		graph, err = ingest.ParseComposeTopology(string(content))
	default:
		fmt.Fprintf(os.Stderr, "unknown topology format: %s\n", format)
		return ExitConfigError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse topology: %v\n", err)
		return ExitPlanError
	}

	spec, err := plan.NewTranslator(cfg.Limits.Limits()).Translate(graph)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to compile topology: %v\n", err)
		return ExitPlanError
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(spec); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode spec: %v\n", err)
		return ExitPlanError
	}

	return ExitSuccess
}
