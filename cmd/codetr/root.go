package main

import (
	"fmt"
	"os"

	"github.com/oukeidos/codetr/internal/cleanup"
	"github.com/oukeidos/codetr/internal/version"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath  string
	logFilePath string
	allowEnv    bool
	debug       bool
}

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	globals := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "codetr",
		Short: "Streaming code translator",
		Long:  "codetr sends source code to a translation endpoint and streams the translated code back.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				_ = cmd.Usage()
				return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return cmd.Help()
		},
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	pf := cmd.PersistentFlags()
	pf.StringVar(&globals.configPath, "config", "", "Path to the YAML config file (default: user config dir/codetr/config.yaml)")
	pf.StringVar(&globals.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
	pf.BoolVar(&globals.allowEnv, "allow-env", false, "Allow reading the API key from CODETR_API_KEY")
	pf.BoolVar(&globals.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newTranslateCmd(globals),
		newTUICmd(globals),
		newKeyCmd(globals),
		newLanguagesCmd(),
		newModelsCmd(),
		newConfigCmd(globals),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}
	return cmd
}
