package main

import (
	"fmt"

	"github.com/oukeidos/codetr/internal/config"
	"github.com/oukeidos/codetr/internal/files"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(globals *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or show the preference file",
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(globals)
			if err != nil {
				return err
			}
			exists, err := files.Exists(path)
			if err != nil {
				return err
			}
			if exists {
				ok, err := confirmer().ConfirmOverwrite(path, force)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("config not written: %s already exists", path)
				}
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "yes", "y", false, "Overwrite an existing config file without asking")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(globals)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	for _, sub := range []*cobra.Command{initCmd, showCmd} {
		sub.SetUsageTemplate(subcommandUsageTemplate)
	}
	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
