// Command uiscope runs the UI debugging tool server over stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entrhq/uiscope/pkg/browser"
	"github.com/entrhq/uiscope/pkg/config"
	"github.com/entrhq/uiscope/pkg/llm/openai"
	"github.com/entrhq/uiscope/pkg/logging"
	"github.com/entrhq/uiscope/pkg/mcp"
	"github.com/entrhq/uiscope/pkg/pipeline"
	"github.com/entrhq/uiscope/pkg/report"
	"github.com/entrhq/uiscope/pkg/store"
	"github.com/entrhq/uiscope/pkg/tools/inspect"
	"github.com/entrhq/uiscope/pkg/workspace"
)

var version = "dev"

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "uiscope",
		Short:         "Vision-based UI debugging tool server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the UI debugging tools over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	serve.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "uiscope %s\n", version)
		},
	}

	root.AddCommand(serve, versionCmd)
	return root
}

func runServe(parent context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger("uiscope")
	if err != nil {
		// The fallback logger writes to stderr, so keep going.
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", err)
	}
	defer logger.Close()
	logger.Infof("uiscope %s starting", version)

	opts := []openai.ProviderOption{openai.WithModel(cfg.Provider.Model)}
	if cfg.Provider.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.Provider.BaseURL))
	}
	provider, err := openai.NewProvider(cfg.Provider.APIKey, opts...)
	if err != nil {
		return fmt.Errorf("failed to set up provider: %w", err)
	}

	manager := browser.NewManager(cfg.Browser, cfg.ScreenshotDir, logger)
	defer func() {
		if serr := manager.Shutdown(); serr != nil {
			logger.Warnf("browser shutdown: %v", serr)
		}
	}()

	index, err := store.Open(cfg.Report.IndexPath)
	if err != nil {
		return fmt.Errorf("failed to open report index: %w", err)
	}
	defer index.Close()

	assembler := report.NewAssembler(cfg.Report.OutputDir, logger)
	pipe := pipeline.New(cfg, manager, provider, assembler, index, logger)

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	guard, err := workspace.NewGuard(workDir)
	if err != nil {
		return fmt.Errorf("failed to set up workspace guard: %w", err)
	}

	registry, err := inspect.NewRegistry(pipe, index, guard)
	if err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	server := mcp.NewServer("uiscope", version, registry, logger)
	logger.Infof("serving %d tools on stdio", len(registry.All()))

	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Infof("shutting down")
	return nil
}
