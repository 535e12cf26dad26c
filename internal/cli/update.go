package cli

import (
	"fmt"

	"github.com/maa-labs/maa-cli/internal/output"
	"github.com/maa-labs/maa-cli/internal/template"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Sync the template repository",
	Long: `Clone the template repository if it is missing, otherwise fetch the
configured branch and reset the local checkout to it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := template.New(settings)
		output.Debug("syncing template", "url", settings.TemplateURL, "branch", settings.TemplateBranch, "dir", p.Dir())

		err := output.RunWithSpinner(cmd.Context(), "Syncing template...", func() error {
			return p.Sync(cmd.Context())
		})
		if err != nil {
			return fmt.Errorf("updating template: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark(fmt.Sprintf("Template %s is up to date", output.FormatNoun(settings.TemplateBranch))))
		return nil
	},
}
