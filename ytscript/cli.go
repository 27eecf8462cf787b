package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/inlieuoffun/ytscript/config"
	"github.com/inlieuoffun/ytscript/transcript"
	"github.com/inlieuoffun/ytscript/youtube"
)

const programName = "ytscript"

// commands describes the subcommands, in the order they are listed.
var commands = []struct{ name, help string }{
	{"extract", "Extract transcript from video"},
	{"list", "List available transcripts"},
}

// errReported is returned by a command that has already written its failure
// envelope, so only the exit status remains to be set.
var errReported = errors.New("failure already reported")

// An app holds the I/O and dependencies of one run of the program.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// newSource constructs the transcript source once settings are known.
	newSource func(config.Config, *slog.Logger) (transcript.Source, error)

	// Flag values.
	configPath string
	logLevel   string
	outputPath string
	proxy      string
	timeout    time.Duration
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, newSource: newYouTubeSource}
}

// run executes the command line args and returns the process exit status.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			writeCompactJSON(a.stdout, &transcript.Failure{Error: err.Error()})
		}
		return 1
	}
	return 0
}

func (a *app) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           programName + " <command> <video_url_or_id> [languages]",
		Short:         "Fetch YouTube captions as JSON",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.reportUsage()
			}
			return a.reportUnknownCommand(args[0])
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	// There is no help command: "help" is reported like any other unknown
	// command, so that stdout only ever carries JSON.
	root.SetHelpCommand(&cobra.Command{
		Use:                "help",
		Hidden:             true,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(*cobra.Command, []string) error {
			return a.reportUnknownCommand("help")
		},
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Configuration file path (YAML; default $"+config.EnvVar+")")
	pf.StringVar(&a.logLevel, "log-level", "", "Minimum level of log messages written to stderr")
	pf.StringVarP(&a.outputPath, "output", "o", "", "Write the result to this file instead of stdout")
	pf.StringVar(&a.proxy, "proxy", "", "Proxy URL for requests to YouTube")
	pf.DurationVar(&a.timeout, "timeout", 0, "Time limit for each request to YouTube (0 means none)")

	root.AddCommand(a.newExtractCommand(), a.newListCommand())
	return root
}

const extractLong = `Extract transcript from video.

Languages are listed in order of preference. Flags may appear anywhere before
a "--" argument; everything after it is taken literally as a language code.`

func (a *app) newExtractCommand() *cobra.Command {
	var opts transcript.ExtractOptions
	cmd := &cobra.Command{
		Use:   "extract <video_url_or_id> [language...]",
		Short: commands[0].help,
		Long:  extractLong,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveVideo(args)
			if err != nil {
				return err
			}
			cfg, h, err := a.setup(cmd)
			if err != nil {
				return err
			}
			opts.Languages = args[1:]
			if len(opts.Languages) == 0 {
				opts.Languages = cfg.Languages
			}
			return writeResult(a.stdout, a.outputPath, h.Extract(cmd.Context(), id, opts))
		},
	}
	cmd.Flags().BoolVar(&opts.PreserveFormatting, "preserve-formatting", false,
		"Keep inline formatting tags such as <i> and <b> in the text")
	cmd.Flags().StringVar(&opts.TranslateTo, "translate", "",
		"Machine translate the chosen track into this language code")
	return cmd
}

func (a *app) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <video_url_or_id>",
		Short: commands[1].help,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolveVideo(args)
			if err != nil {
				return err
			}
			_, h, err := a.setup(cmd)
			if err != nil {
				return err
			}
			return writeResult(a.stdout, a.outputPath, h.List(cmd.Context(), id))
		},
	}
}

// resolveVideo returns the video ID named by the first argument.
func (a *app) resolveVideo(args []string) (string, error) {
	if len(args) == 0 {
		return "", a.report(&transcript.Failure{Error: "Video URL or ID is required"})
	}
	id, ok := transcript.ResolveVideoID(args[0])
	if !ok {
		return "", a.report(&invalidInput{Error: "Invalid YouTube URL or video ID", Input: args[0]})
	}
	return id, nil
}

// setup loads settings, applies flag overrides, and constructs the logger
// and request handler.
func (a *app) setup(cmd *cobra.Command) (config.Config, *transcript.Handler, error) {
	cfg := config.Default()
	path := a.configPath
	if path == "" {
		path = config.Locate()
	}
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("proxy") {
		cfg.HTTP.Proxy = a.proxy
	}
	if flags.Changed("timeout") {
		cfg.HTTP.Timeout = config.Duration(a.timeout)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	log.Debug("loaded settings", "config", path, "languages", cfg.Languages,
		"timeout", cfg.HTTP.Timeout, "proxy", cfg.HTTP.Proxy != "")

	src, err := a.newSource(cfg, log)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, transcript.NewHandler(src, log), nil
}

func newYouTubeSource(cfg config.Config, log *slog.Logger) (transcript.Source, error) {
	proxy, err := cfg.ProxyURL()
	if err != nil {
		return nil, err
	}
	return youtube.New(
		youtube.WithProxy(proxy),
		youtube.WithTimeout(time.Duration(cfg.HTTP.Timeout)),
		youtube.WithAcceptLanguage(cfg.HTTP.AcceptLanguage),
		youtube.WithUserAgent(cfg.HTTP.UserAgent),
		youtube.WithLogger(log),
	), nil
}

func (a *app) reportUsage() error {
	cmds := make(map[string]string, len(commands))
	for _, c := range commands {
		cmds[c.name] = c.help
	}
	return a.report(&usageFailure{
		Error:    fmt.Sprintf("Usage: %s <command> <video_url_or_id> [languages]", programName),
		Commands: cmds,
	})
}

func (a *app) reportUnknownCommand(name string) error {
	var avail []string
	for _, c := range commands {
		avail = append(avail, c.name)
	}
	return a.report(&unknownCommand{
		Error:             "Unknown command: " + name,
		AvailableCommands: avail,
	})
}

// report writes a failure envelope for an invalid invocation.
func (a *app) report(v any) error {
	if err := writeCompactJSON(a.stdout, v); err != nil {
		return err
	}
	return errReported
}

// Failure envelopes for invalid invocations. Success is always false.

type usageFailure struct {
	Success  bool              `json:"success"`
	Error    string            `json:"error"`
	Commands map[string]string `json:"commands"`
}

type unknownCommand struct {
	Success           bool     `json:"success"`
	Error             string   `json:"error"`
	AvailableCommands []string `json:"available_commands"`
}

type invalidInput struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Input   string `json:"input"`
}
