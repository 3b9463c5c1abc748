package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oukeidos/codetr/internal/auth"
	"github.com/oukeidos/codetr/internal/cleanup"
	"github.com/oukeidos/codetr/internal/config"
	"github.com/oukeidos/codetr/internal/files"
	"github.com/oukeidos/codetr/internal/logger"
	"github.com/oukeidos/codetr/internal/stream"
	"github.com/rivo/uniseg"
	"golang.org/x/term"
)

var (
	isTerminal   = term.IsTerminal
	getKey       = auth.GetKey
	getEnvKey    = auth.GetEnvKey
	getStatus    = auth.GetStatus
	saveKey      = auth.SaveKey
	deleteKey    = auth.DeleteKey
	promptForKey = auth.PromptForAPIKey
)

// resolveAPIKey looks in the keychain, then the environment when allowed,
// then asks on the terminal.
func resolveAPIKey(allowEnv bool) (string, string, error) {
	if key, source := getKey(false); key != "" {
		return key, source, nil
	}
	if allowEnv {
		if key, ok := getEnvKey(); ok {
			return key, auth.SourceEnv, nil
		}
	}

	if !isTerminal(int(os.Stdin.Fd())) {
		return "", "", fmt.Errorf("no API key available (non-interactive shell); run 'codetr key setup' or use --allow-env")
	}
	key, err := promptForKey("API Key (press Enter to skip): ")
	if err != nil {
		return "", "", fmt.Errorf("error reading API key: %w", err)
	}
	if key = strings.TrimSpace(key); key != "" {
		return key, auth.SourcePrompt, nil
	}
	if allowEnv {
		return "", "", fmt.Errorf("API key is required; not found in keychain or %s", auth.EnvVar())
	}
	return "", "", fmt.Errorf("API key is required; not found in keychain (environment disabled by default; use --allow-env)")
}

// setupLogging configures the global logger. Front ends that draw on the
// terminal pass noConsole.
func setupLogging(globals *globalOptions, logFile string, noConsole bool) error {
	level := logger.LevelInfo
	if globals.debug {
		level = logger.LevelDebug
	}
	var w io.Writer
	if logFile != "" {
		if err := files.RejectSymlinkPath(logFile); err != nil {
			return err
		}
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register(f.Close)
		w = f
	}
	logger.Init(logger.Options{Level: level, File: w, NoConsole: noConsole})
	return nil
}

func configPath(globals *globalOptions) (string, error) {
	if globals.configPath != "" {
		return globals.configPath, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file and the environment. Callers apply
// their flag overrides and then call Validate.
func loadConfig(globals *globalOptions) (config.Config, error) {
	path, err := configPath(globals)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if globals.allowEnv {
		cfg.AllowEnv = true
	}
	if globals.logFilePath != "" {
		cfg.LogFile = globals.logFilePath
	}
	return cfg, nil
}

func printStats(w io.Writer, res stream.Result, model string) {
	fmt.Fprintln(w, "\n--- Execution Stats ---")
	fmt.Fprintf(w, "Time: %s\n", res.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Model: %s\n", model)
	fmt.Fprintf(w, "Chunks: %d, Bytes: %d, Characters: %d, Lines: %d\n",
		res.Chunks, res.Bytes, uniseg.GraphemeClusterCount(res.Text), countLines(res.Text))
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid --timeout %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid --timeout %q: must not be negative", s)
	}
	return d, nil
}
