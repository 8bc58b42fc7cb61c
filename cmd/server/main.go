// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

// Command server runs the Checkmk MCP server on stdio.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/checkmk-mcp/core/pkg/app"
	"github.com/checkmk-mcp/core/pkg/appconsts"
	"github.com/checkmk-mcp/core/pkg/logging"
)

// newRootCmd builds the CLI. The root command serves MCP on stdio; stdout is
// the protocol channel, so logs go to the configured file or are discarded.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CHECKMK_MCP")
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:          appconsts.Name,
		Short:        "MCP server exposing a Checkmk site to AI clients",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath := v.GetString("config")
			logFile := v.GetString("log_file")
			metricsAddr := v.GetString("metrics_addr")

			logLevel := slog.LevelInfo
			if v.GetBool("debug") {
				logLevel = slog.LevelDebug
			}

			// Stdout carries JSON-RPC; without a log file, logs are dropped.
			var logOutput io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer func() { _ = f.Close() }()
				logOutput = f
			}
			logging.Init(logLevel, logOutput)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return app.Run(ctx, afero.NewOsFs(), app.Options{
				ConfigPath:  configPath,
				MetricsAddr: metricsAddr,
			})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to the YAML configuration file")
	flags.String("log-file", "", "Append logs to this file instead of discarding them")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	flags.Bool("debug", false, "Enable debug logging")

	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("log_file", flags.Lookup("log-file"))
	_ = v.BindPFlag("metrics_addr", flags.Lookup("metrics-addr"))
	_ = v.BindPFlag("debug", flags.Lookup("debug"))

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newValidateCmd(v))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appconsts.Name, appconsts.Version)
			return err
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		// Configuration and startup errors exit non-zero; a closed stdio
		// pipe is handled inside app.Run and exits zero.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
