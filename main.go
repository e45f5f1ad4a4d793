// Command roversim runs the rover simulator.
//
// Subcommands:
//  1. "serve" (default) – HTTP server exposing the REST API, a WebSocket trace stream and an /mcp endpoint
//  2. "mcp" – MCP stdio server, proxying to an external API or an internal one
//  3. "run" – one simulation from flags or a mission file, printed to stdout
//  4. "check" – validates every mission file and compares expected outcomes
//  5. "watch" – prints the steps of live runs streamed by a running server
//
// Global flags select the log level and format and the missions directory.
// Every flag can also be set through a ROVER_* environment variable or a .env file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/roversim/logging"
	"github.com/wricardo/roversim/rover/mission"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Rover Simulator"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	cmd := newRootCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree
func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:           "roversim",
		Usage:          "Simulate a rover on a 5x5 grid",
		Version:        Version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("ROVER_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   string(logging.FormatConsole),
				Usage:   "log format (console, json)",
				Sources: cli.EnvVars("ROVER_LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "missions-dir",
				Value:   "missions",
				Usage:   "directory containing mission files (.json, .toml)",
				Sources: cli.EnvVars("ROVER_MISSIONS_DIR", "CONFIG_DIR"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			runCommand(),
			checkCommand(),
			watchCommand(),
		},
	}
}

// newLogger builds the process logger from the global flags. Logs always go
// to stderr so stdout stays free for results and the MCP stdio protocol.
func newLogger(cmd *cli.Command) (logging.Logger, error) {
	logger, err := logging.New(os.Stderr, cmd.String("log-level"), logging.Format(cmd.String("log-format")))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// openCatalog opens the mission catalog named by --missions-dir
func openCatalog(cmd *cli.Command, logger logging.Logger) (*mission.Catalog, error) {
	catalog, err := mission.NewCatalog(cmd.String("missions-dir"), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open mission catalog: %w", err)
	}
	logger.Debug("mission catalog opened", logging.String("dir", catalog.Dir()))
	return catalog, nil
}
