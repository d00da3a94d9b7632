package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ironsheep/crossprint-mcp/internal/config"
	"github.com/ironsheep/crossprint-mcp/internal/editor"
	"github.com/ironsheep/crossprint-mcp/internal/registry"
	"github.com/ironsheep/crossprint-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and --help before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("crossprint-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	configPath := flag.String("config", "", "path to a JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossprint-mcp: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "crossprint-mcp: %v\n", err)
		os.Exit(1)
	}

	// Logging goes to stderr (stdout is for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	logger.Debug("Crossprint MCP Server starting",
		"version", Version, "built", BuildTime, "commit", GitCommit,
		"preview_long_edge", cfg.PreviewLongEdge, "full_long_edge", cfg.FullLongEdge,
		"export_dir", cfg.ExportDir)

	reg := registry.New(
		registry.WithPreviewLongEdge(cfg.PreviewLongEdge),
		registry.WithFullLongEdge(cfg.FullLongEdge),
	)
	svc := editor.New(reg, editor.WithFill(cfg.Fill()), editor.WithLogger(logger))
	srv := server.New(svc,
		server.WithExportDir(cfg.ExportDir),
		server.WithVersion(Version),
		server.WithLogger(logger),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("crossprint-mcp - MCP server for straightening photographed puzzle grids")
	fmt.Println()
	fmt.Println("Usage: crossprint-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <file>  Load settings from a JSON config file")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug        Enable debug logging\n", config.EnvLogLevel)
	fmt.Printf("  %s=1600  Preview long-edge cap\n", config.EnvPreviewLongEdge)
	fmt.Printf("  %s=8000     Full-resolution long-edge cap\n", config.EnvFullLongEdge)
	fmt.Printf("  %s=exports       Default export directory\n", config.EnvExportDir)
	fmt.Printf("  %s=#000000       Fill for pixels outside the source\n", config.EnvFillColor)
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
