package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oukeidos/codetr/internal/auth"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

func newKeyCmd(globals *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the API key in the OS keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyStatus(cmd)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	setup := &cobra.Command{
		Use:   "setup",
		Short: "Save the API key to the keychain (prompt only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeySetup(cmd)
		},
	}
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete the API key from the keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyDelete(cmd)
		},
	}
	status := &cobra.Command{
		Use:   "status",
		Short: "Show where the API key would be read from (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyStatus(cmd)
		},
	}
	for _, sub := range []*cobra.Command{setup, del, status} {
		sub.SetUsageTemplate(subcommandUsageTemplate)
	}
	cmd.AddCommand(setup, del, status)
	return cmd
}

func runKeySetup(cmd *cobra.Command) error {
	key, err := promptForKey("API Key: ")
	if err != nil {
		return fmt.Errorf("error reading key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key is required for setup")
	}
	if err := saveKey(key); err != nil {
		return fmt.Errorf("error saving key: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Saved API key to keychain.")
	return nil
}

func runKeyDelete(cmd *cobra.Command) error {
	if err := deleteKey(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "No API key stored in keychain.")
			return nil
		}
		return fmt.Errorf("error deleting key: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted API key from keychain.")
	return nil
}

func runKeyStatus(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if getStatus() {
		fmt.Fprintf(out, "API Key: Found (source=%s)\n", auth.SourceKeychain)
		return nil
	}
	if _, ok := getEnvKey(); ok {
		fmt.Fprintf(out, "API Key: Found (source=%s %s; disabled by default, use --allow-env)\n", auth.SourceEnv, auth.EnvVar())
		return nil
	}
	fmt.Fprintln(out, "API Key: Not Found (keychain empty, env not set)")
	return nil
}
