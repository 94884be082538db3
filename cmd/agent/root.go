package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"browser-runner/internal/config"
	"browser-runner/internal/di"
	"browser-runner/internal/domain/entity"
)

type flags struct {
	task           string
	configFile     string
	envFiles       []string
	browserPath    string
	driver         string
	headless       bool
	model          string
	provider       string
	maxSteps       int
	timeout        time.Duration
	allowedDomains []string
	vision         bool
	validate       bool
	logLevel       string
}

func newRootCmd() *cobra.Command {
	cmd, _ := newCommand()
	return cmd
}

func newCommand() (*cobra.Command, *flags) {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Run a browser agent on a single task",
		Long: `Launches a local browser, hands it to a language-model driven agent together
with the task and closes the browser when the agent is done.

Settings come from defaults, an optional YAML file, .env files, the
environment and finally these flags.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.task, "task", "t", config.DefaultTask, "task for the agent")
	fs.StringVarP(&f.configFile, "config", "c", "", "YAML config file")
	fs.StringSliceVar(&f.envFiles, "env-file", nil, "dotenv file to read (repeatable, default .env and .env.<APP_ENV>)")
	fs.StringVar(&f.browserPath, "browser-path", config.DefaultExecutablePath, "browser executable")
	fs.StringVar(&f.driver, "driver", string(entity.DriverRod), "browser driver: rod, chromedp or playwright")
	fs.BoolVar(&f.headless, "headless", false, "run the browser without a window")
	fs.StringVarP(&f.model, "model", "m", config.DefaultModel, "model name")
	fs.StringVar(&f.provider, "provider", config.ProviderOpenAI, "model provider: openai or langchain")
	fs.IntVar(&f.maxSteps, "max-steps", 50, "maximum agent steps")
	fs.DurationVar(&f.timeout, "timeout", 0, "abort the run after this long (0 disables)")
	fs.StringArrayVar(&f.allowedDomains, "allowed-domain", nil, "domain the agent may visit (repeatable)")
	fs.BoolVar(&f.vision, "vision", false, "let the agent take screenshots")
	fs.BoolVar(&f.validate, "validate", false, "check the final answer with a second model call")
	fs.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")

	return cmd, f
}

// apply copies the flags the user actually set onto cfg.
func (f *flags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("task") {
		cfg.Task = f.task
	}
	if fs.Changed("browser-path") {
		cfg.Browser.ExecutablePath = f.browserPath
	}
	if fs.Changed("driver") {
		cfg.Browser.Driver = f.driver
	}
	if fs.Changed("headless") {
		cfg.Browser.Headless = f.headless
	}
	if fs.Changed("model") {
		cfg.LLM.Model = f.model
	}
	if fs.Changed("provider") {
		cfg.LLM.Provider = f.provider
	}
	if fs.Changed("max-steps") {
		cfg.Agent.MaxSteps = f.maxSteps
	}
	if fs.Changed("timeout") {
		cfg.RunTimeout = f.timeout
	}
	if fs.Changed("allowed-domain") {
		cfg.Agent.AllowedDomains = append([]string(nil), f.allowedDomains...)
	}
	if fs.Changed("vision") {
		cfg.Agent.UseVision = f.vision
	}
	if fs.Changed("validate") {
		cfg.Agent.Validate = f.validate
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
}

func run(cmd *cobra.Command, f *flags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(di.Options{
		ConfigFile: f.configFile,
		EnvFiles:   f.envFiles,
		Override: func(cfg *config.Config) {
			f.apply(cmd.Flags(), cfg)
		},
	})
	if err != nil {
		return err
	}
	defer closeLog(cmd.ErrOrStderr(), container)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nAgent started: %s\n", container.Config.Task)

	result, err := container.Runner.Run(ctx)
	if err != nil {
		container.Logger.Error("Task failed", "error", err)
		return err
	}

	if result.Status == entity.TaskStatusCompleted {
		color.New(color.FgGreen, color.Bold).Fprintln(out, "\nFINAL ANSWER:")
	} else {
		color.New(color.FgYellow, color.Bold).Fprintln(out, "\nAGENT GAVE UP:")
	}
	if result.Agent != nil {
		fmt.Fprintln(out, result.Agent.FinalAnswer)
		if ev := result.Agent.Evaluation; ev != nil {
			fmt.Fprintf(out, "\nValidation: success=%t confidence=%.2f\n", ev.Success, ev.Confidence)
			for _, issue := range ev.Issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
		}
	}
	fmt.Fprintf(out, "\nFinished in %s\n", result.Duration.Round(time.Millisecond))

	container.Logger.Info("Task completed", "status", result.Status, "duration", result.Duration)
	return nil
}

// closeLog flushes the run log. The logger is gone by then, so a failure
// goes to w.
func closeLog(w io.Writer, c io.Closer) {
	if err := c.Close(); err != nil {
		fmt.Fprintf(w, "failed to flush log: %v\n", err)
	}
}
