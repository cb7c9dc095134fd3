// Package main is the entry point for the travel rules service.
package main

import (
	"context"
	"fmt"
	"os"

	"travelrules/bootstrap"
	"travelrules/cmd"
)

// run initializes and starts the travel rules service.
func run() error {
	ctx := context.Background()

	configPath := os.Getenv("TRAVELRULES_CONFIG")

	app, err := bootstrap.NewApp(ctx, configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Start(ctx); err != nil {
		app.Shutdown()
		return fmt.Errorf("failed to start application: %w", err)
	}

	app.WaitForShutdown()
	app.Shutdown()

	return nil
}

func main() {
	// "rules" dispatches to the CLI; anything else runs the server.
	if len(os.Args) > 1 && os.Args[1] == "rules" {
		os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

		rulesCmd := cmd.NewRulesCmd()
		if err := rulesCmd.Execute(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
