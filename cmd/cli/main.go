package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gookit/color"

	"github.com/vk/forgerun/internal/app"
	"github.com/vk/forgerun/internal/cli"
)

// main is the entrypoint for the forgerun application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, color.Red.Sprint(exitErr.Message))
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, color.Red.Sprint(err))
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW, errW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	forgerunApp, err := app.NewApp(outW, errW, appConfig)
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}

	return forgerunApp.Run(context.Background())
}
