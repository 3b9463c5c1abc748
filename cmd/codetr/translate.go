package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/oukeidos/codetr/internal/auth"
	"github.com/oukeidos/codetr/internal/clipboard"
	"github.com/oukeidos/codetr/internal/config"
	"github.com/oukeidos/codetr/internal/files"
	"github.com/oukeidos/codetr/internal/logger"
	"github.com/oukeidos/codetr/internal/models"
	"github.com/oukeidos/codetr/internal/prompt"
	"github.com/oukeidos/codetr/internal/request"
	"github.com/oukeidos/codetr/internal/session"
	"github.com/oukeidos/codetr/internal/stream"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type translateOptions struct {
	from       string
	to         string
	modelName  string
	endpoint   string
	timeout    string
	outputPath string
	yes        bool
	noCopy     bool
	noStats    bool
}

var (
	newClipboard           = func() session.Clipboard { return clipboard.System{} }
	confirmer              = prompt.DefaultConfirmer
	stdin        io.Reader = os.Stdin
)

func newTranslateCmd(globals *globalOptions) *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate [file|-]",
		Short: "Translate a source file (or stdin) and stream the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, globals, &opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "", "Source language name or code (default from config)")
	f.StringVar(&opts.to, "to", "", "Target language name or code (default from config)")
	f.StringVar(&opts.modelName, "model", "", "Model: gpt-3.5-turbo or gpt-4 (default from config)")
	f.StringVar(&opts.endpoint, "endpoint", "", "Translation endpoint URL (default from config)")
	f.StringVar(&opts.timeout, "timeout", "", "Cancel the translation after this duration, e.g. 2m (default: none)")
	f.StringVarP(&opts.outputPath, "output", "o", "", "Also write the translated code to this file")
	f.BoolVarP(&opts.yes, "yes", "y", false, "Overwrite the output file without asking")
	f.BoolVar(&opts.noCopy, "no-copy", false, "Do not copy the result to the clipboard")
	f.BoolVar(&opts.noStats, "no-stats", false, "Do not print execution stats")
	return cmd
}

// applyTranslateFlags overrides config values with the flags the user set.
func applyTranslateFlags(cmd *cobra.Command, cfg *config.Config, opts *translateOptions) error {
	var err error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "from":
			cfg.SourceLanguage = opts.from
		case "to":
			cfg.TargetLanguage = opts.to
		case "model":
			cfg.Model = opts.modelName
		case "endpoint":
			cfg.Endpoint = opts.endpoint
		case "timeout":
			var d time.Duration
			if d, err = parseTimeout(opts.timeout); err == nil {
				cfg.Timeout = d
			}
		}
	})
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func readSource(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		if len(args) == 0 {
			if f, ok := stdin.(*os.File); ok && isTerminal(int(f.Fd())) {
				return "", fmt.Errorf("no input: pass a file or pipe code on stdin")
			}
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}

// sessionRecorder remembers the stream sessions it starts so the CLI can
// report their stats.
type sessionRecorder struct {
	stream.Starter

	mu   sync.Mutex
	last *stream.Session
}

func (r *sessionRecorder) Start(ctx context.Context, req request.Translation, cb stream.Callbacks) *stream.Session {
	s := r.Starter.Start(ctx, req, cb)
	r.mu.Lock()
	r.last = s
	r.mu.Unlock()
	return s
}

func (r *sessionRecorder) Last() *stream.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func runTranslate(cmd *cobra.Command, args []string, globals *globalOptions, opts *translateOptions) error {
	cfg, err := loadConfig(globals)
	if err != nil {
		return err
	}
	if err := setupLogging(globals, cfg.LogFile, false); err != nil {
		return err
	}
	if err := applyTranslateFlags(cmd, &cfg, opts); err != nil {
		return err
	}

	text, err := readSource(args)
	if err != nil {
		return err
	}

	key, source, err := resolveAPIKey(cfg.AllowEnv)
	if err != nil {
		return err
	}
	logger.Info("Using API Key", "source", source)

	ctx, stop := signalContext()
	defer stop()

	recorder := &sessionRecorder{Starter: stream.NewClient(cfg.Endpoint, nil)}
	var clip session.Clipboard = clipboard.Discard{}
	if !opts.noCopy {
		clip = newClipboard()
	}
	ctrl := session.NewController(session.Options{
		Streamer:       recorder,
		Store:          auth.NewMemoryStore(key),
		Clipboard:      clip,
		SourceLanguage: cfg.SourceLanguage,
		TargetLanguage: cfg.TargetLanguage,
		Model:          models.Model(cfg.Model),
		Context:        ctx,
		Timeout:        cfg.Timeout,
	})
	if err := ctrl.SetSourceText(text); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printed := 0
	unsubscribe := ctrl.Subscribe(func(s session.Snapshot) {
		if len(s.OutputText) > printed {
			_, _ = io.WriteString(out, s.OutputText[printed:])
			printed = len(s.OutputText)
		}
	})
	defer unsubscribe()

	if err := ctrl.Translate(ctx); err != nil {
		var rej *request.Rejection
		if errors.As(err, &rej) {
			return errors.New(rej.Message())
		}
		return err
	}

	snap, err := ctrl.Wait(context.Background())
	if err != nil {
		return err
	}
	if printed > 0 && !strings.HasSuffix(snap.OutputText, "\n") {
		fmt.Fprintln(out)
	}

	var res stream.Result
	if sess := recorder.Last(); sess != nil {
		res = sess.Result()
	}
	if !opts.noStats {
		printStats(cmd.ErrOrStderr(), res, cfg.Model)
	}

	switch snap.Status {
	case session.StatusCompleted:
		if !opts.noCopy {
			fmt.Fprintln(cmd.ErrOrStderr(), snap.Message)
		}
		if opts.outputPath != "" {
			return writeOutput(opts.outputPath, snap.OutputText, opts.yes)
		}
		return nil
	case session.StatusFailed:
		return errors.New(snap.Message)
	default:
		if errors.Is(res.Err, context.DeadlineExceeded) {
			return fmt.Errorf("translation timed out after %s", cfg.Timeout)
		}
		logger.Warn("Translation canceled", "run_id", snap.RunID)
		return nil
	}
}

func writeOutput(path, text string, force bool) error {
	exists, err := files.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check output path: %w", err)
	}
	if exists {
		ok, err := confirmer().ConfirmOverwrite(path, force)
		if err != nil {
			return err
		}
		if !ok {
			logger.Warn("Output not written", "path", path)
			return nil
		}
	}
	if err := files.AtomicWrite(path, []byte(text), 0644); err != nil {
		return err
	}
	logger.Info("Output written", "path", path)
	return nil
}
