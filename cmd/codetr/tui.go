package main

import (
	"github.com/oukeidos/codetr/internal/auth"
	"github.com/oukeidos/codetr/internal/logger"
	"github.com/oukeidos/codetr/internal/models"
	"github.com/oukeidos/codetr/internal/session"
	"github.com/oukeidos/codetr/internal/stream"
	"github.com/oukeidos/codetr/internal/tui"
	"github.com/spf13/cobra"
)

var runTUI = tui.Run

func newTUICmd(globals *globalOptions) *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive translator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(globals)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("endpoint") {
				cfg.Endpoint = endpoint
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			// The UI owns the terminal; logs only go to the log file.
			if err := setupLogging(globals, cfg.LogFile, true); err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			ctrl := session.NewController(session.Options{
				Streamer:       stream.NewClient(cfg.Endpoint, nil),
				Store:          auth.KeyringStore{AllowEnv: cfg.AllowEnv},
				Clipboard:      newClipboard(),
				SourceLanguage: cfg.SourceLanguage,
				TargetLanguage: cfg.TargetLanguage,
				Model:          models.Model(cfg.Model),
				Context:        ctx,
				Timeout:        cfg.Timeout,
			})
			logger.Info("Interactive session started", "endpoint", cfg.Endpoint)
			return runTUI(ctx, ctrl)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Translation endpoint URL (default from config)")
	return cmd
}
