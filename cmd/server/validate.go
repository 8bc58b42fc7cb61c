// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/checkmk-mcp/core/pkg/app"
	"github.com/checkmk-mcp/core/pkg/config"
	"github.com/checkmk-mcp/core/pkg/logging"
)

// newValidateCmd checks the configuration without serving. With --check it
// additionally performs one round trip to the Checkmk version endpoint.
func newValidateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration, optionally checking site connectivity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.Init(slog.LevelWarn, io.Discard)
			fs := afero.NewOsFs()
			configPath := v.GetString("config")

			cfg, err := config.Load(fs, configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration OK (site %s at %s)\n",
				cfg.Checkmk.Site, cfg.Checkmk.ServerURL)

			check, _ := cmd.Flags().GetBool("check")
			if !check {
				return nil
			}

			version, err := app.Healthcheck(cmd.Context(), fs, configPath)
			if err != nil {
				return fmt.Errorf("connectivity check failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected to Checkmk %s (%s edition)\n",
				version.Versions.Checkmk, version.Edition)
			return nil
		},
	}
	cmd.Flags().Bool("check", false, "Also verify connectivity to the Checkmk site")
	return cmd
}
