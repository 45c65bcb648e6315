// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/visitant/internal/config"
	"github.com/holomush/visitant/internal/xdg"
)

const flagConfig = "config"

// NewRootCmd creates the root command. Running it without a subcommand
// is the same as "visitant run".
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visitant",
		Short: "Scripted session test client",
		Long: `visitant logs in to a server over UDP, takes operator commands
on stdin, and writes one JSON trace line per observation to stdout.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, nil)
		},
	}

	cmd.PersistentFlags().String(flagConfig, "", "config file path (default: XDG_CONFIG_HOME/visitant/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one client session",
		Long: `Bind the local UDP port, log in (unless the mode or --auto-login
says otherwise), and drive the session until it ends.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, nil)
		},
	}
}

// NewVersionCmd creates the version subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Printf("visitant %s (commit: %s, built: %s)\n", version, commit, date)
			return nil
		},
	}
}

// loadConfig resolves the config file path and layers flags over it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if path == "" {
		if def, ok := xdg.DefaultConfigFile(); ok {
			path = def
		}
	}
	return config.Load(cmd.Flags(), path)
}
