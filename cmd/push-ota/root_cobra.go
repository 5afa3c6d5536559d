package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pushchain/push-ota/internal/bridge"
	"github.com/pushchain/push-ota/internal/config"
	"github.com/pushchain/push-ota/internal/exitcodes"
	ui "github.com/pushchain/push-ota/internal/ui"
)

// Version information - set via -ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// rootCmd wires the CLI surface using Cobra. Persistent flags are
// applied to a loaded config in loadCfg(). Subcommands drive the update
// agent (check, download, apply, reload, watch).
var rootCmd = &cobra.Command{
	Use:           "push-ota",
	Short:         "Push OTA",
	Long:          "Check for, download and apply over-the-air updates through the on-device update agent.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.InitGlobal(ui.Config{
			NoColor: flagNoColor,
			NoEmoji: flagNoEmoji,
			Verbose: flagVerbose,
			Quiet:   flagQuiet,
			Debug:   flagDebug,
		})

		// Set NO_COLOR env so lipgloss respects the flag
		if flagNoColor {
			os.Setenv("NO_COLOR", "1")
		}
	},
}

var (
	flagHome    string
	flagAgent   string
	flagChannel string
	flagOutput  string
	flagVerbose bool
	flagQuiet   bool
	flagDebug   bool
	flagNoColor bool
	flagNoEmoji bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", "", "State directory (overrides HOME_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagAgent, "agent", "", "Update agent base URL (http[s]://host:port)")
	rootCmd.PersistentFlags().StringVar(&flagChannel, "channel", "", "Update channel sent to the agent")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format: json|yaml|text")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Quiet mode: minimal output")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Debug output: extra diagnostic logs")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable ANSI colors")
	rootCmd.PersistentFlags().BoolVar(&flagNoEmoji, "no-emoji", false, "Disable emoji output")
}

// silentErr carries an exit code for a failure that was already printed.
type silentErr struct{ err error }

func (e silentErr) Error() string { return e.err.Error() }
func (e silentErr) Unwrap() error { return e.err }

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var se silentErr
		if !errors.As(err, &se) {
			printFailure(os.Stderr, err)
		}
		os.Exit(exitcodes.CodeForError(err))
	}
}

// printFailure writes err to w, with hints when the agent could not be
// reached at all.
func printFailure(w io.Writer, err error) {
	if exitcodes.CodeForError(err) != exitcodes.NetworkError || bridge.IsAgentError(err) {
		fmt.Fprintln(w, err)
		return
	}
	getPrinter(w).PrintError(ui.ErrorMessage{
		Problem: err.Error(),
		Causes: []string{
			"the update agent is not running",
			"--agent or PUSH_OTA_AGENT points at the wrong address",
		},
		Actions: []string{"push-ota status --agent http://<host>:<port>"},
	})
}

// loadCfg reads defaults, config file and env via internal/config.Load()
// and then applies overrides from persistent flags (home, agent, channel).
func loadCfg() (config.Config, error) {
	if flagHome != "" {
		// HOME_DIR decides which config.toml is read
		os.Setenv("HOME_DIR", flagHome)
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, exitcodes.ValidationErr("invalid configuration", err)
	}
	if flagAgent != "" {
		cfg.AgentURL = flagAgent
	}
	if flagChannel != "" {
		cfg.Channel = flagChannel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, exitcodes.ValidationErr("invalid configuration", err)
	}
	return cfg, nil
}

// newLogger returns the diagnostic logger. It writes to w (stderr in
// production) at warn level unless --verbose or --debug is set.
func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: flagNoColor, FullTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if flagVerbose {
		log.SetLevel(logrus.InfoLevel)
	}
	if flagDebug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// getPrinter returns a UI printer bound to the current --output flag.
func getPrinter(w io.Writer) ui.Printer { return ui.NewPrinterFromGlobal(flagOutput, w) }

func validateOutput() error {
	switch flagOutput {
	case ui.FormatText, ui.FormatJSON, ui.FormatYAML, "":
		return nil
	}
	return exitcodes.InvalidArgsErrorf("invalid --output: %s (use json|yaml|text)", flagOutput)
}
