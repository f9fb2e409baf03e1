package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cladding/pkg/config"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
)

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			fmt.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return config.Write(os.Stdout, cfg)
		},
	})

	var unit string
	defaults := &cobra.Command{
		Use:   "defaults",
		Short: "Print the built-in configuration for a unit as TOML",
		Long: `Print the built-in configuration for a unit as TOML.

The output is a complete config file; redirect it to the path printed by
'config path' to start from the defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := units.Parse(unit)
			if err != nil {
				return errors.Wrap(errors.ErrCodeConfiguration, err, "--unit")
			}
			return config.Write(os.Stdout, config.Default(u))
		},
	}
	defaults.Flags().StringVar(&unit, "unit", string(units.Default), "unit: mm, cm, m, feet, inches")
	cmd.AddCommand(defaults)

	return cmd
}
