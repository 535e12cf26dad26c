package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/maa-labs/maa-cli/internal/branding"
	"github.com/maa-labs/maa-cli/internal/config"
	"github.com/maa-labs/maa-cli/internal/output"
	"github.com/maa-labs/maa-cli/internal/prompt"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagSilence bool
	flagVerbose bool
	flagProxy   string

	// settings is loaded once before any command runs.
	settings config.Settings
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagSilence, "silence", false, "Never prompt; use defaults for anything not given on the command line")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagProxy, "proxy", "", "HTTP(S) proxy for git and downloads (overrides config)")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` creates MaaFramework projects from a template and
fetches the framework and UI releases they depend on.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.SetupLogging(flagVerbose)
		settings = config.LoadSettings()
		if flagProxy != "" {
			settings.Proxy = flagProxy
		}
	},
}

// Execute runs the root command with build info injected via ldflags.
// An interrupt cancels the command context, which stops running git and
// hook processes.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		output.Error(err.Error())
	}
	return err
}

// inputSource picks how missing values are asked for.
func inputSource() prompt.InputSource {
	switch {
	case flagSilence:
		return prompt.Silent{}
	case output.IsInteractiveInput() && output.IsTTY():
		return prompt.NewInteractive()
	default:
		return prompt.NewConsole(os.Stdin, os.Stderr)
	}
}
