package main

import (
	"fmt"
	"os"
	"strings"

	"codeberg.org/mutker/hostctl/internal/config"
	"codeberg.org/mutker/hostctl/internal/errors"
	"codeberg.org/mutker/hostctl/internal/logger"
)

const usage = `Usage: hostctl [serve|doctor] [flags]

Commands:
  serve    Run the HTTP API (default)
  doctor   Report provider availability and one telemetry snapshot
`

func main() {
	command, args := splitCommand(os.Args[1:])
	if command == "help" {
		fmt.Print(usage)
		return
	}

	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(2)
	}

	if err := logger.Init(cfg.Log.Level, logger.IsService()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(2)
	}
	logger.Debug().Str("config_file", cfg.ConfigFile).Str("platform", cfg.Platform).Msg("Config loaded")

	switch command {
	case "serve":
		err = serve(cfg)
	case "doctor":
		err = doctor(cfg, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}

	if err != nil {
		if appErr, ok := err.(errors.Error); ok {
			logger.ErrorWithCode(appErr).Msg("hostctl failed")
		} else {
			logger.Error().Err(err).Msg("hostctl failed")
		}
		os.Exit(1)
	}
}

// splitCommand treats a leading non-flag argument as the subcommand.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "serve", args
	}
	if args[0] == "-h" || args[0] == "--help" {
		return "help", nil
	}
	if strings.HasPrefix(args[0], "-") {
		return "serve", args
	}

	return args[0], args[1:]
}
