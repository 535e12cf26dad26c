package cli

import (
	"errors"
	"fmt"

	"github.com/maa-labs/maa-cli/internal/config"
	"github.com/maa-labs/maa-cli/internal/output"
	"github.com/maa-labs/maa-cli/internal/prompt"
	"github.com/maa-labs/maa-cli/internal/release"
	"github.com/spf13/cobra"
)

var authToken string

func init() {
	authCmd.Flags().StringVar(&authToken, "token", "", "GitHub personal access token")
	rootCmd.AddCommand(authCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Store a GitHub token for release downloads",
	Long: `Validate a GitHub personal access token and save it to the config file.
Authenticated requests get a higher GitHub API rate limit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		token := authToken
		if token == "" {
			var err error
			token, err = inputSource().Text(ctx, prompt.TextRequest{
				Title:  "GitHub personal access token",
				Secret: true,
				Validate: func(s string) error {
					if s == "" {
						return errors.New("token is required")
					}
					return nil
				},
			})
			if err != nil {
				return fmt.Errorf("reading token: %w", err)
			}
		}

		p, err := release.New(settings)
		if err != nil {
			return err
		}
		user, err := p.User(ctx, token)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		if err := config.Set(config.KeyToken, token); err != nil {
			return fmt.Errorf("saving token: %w", err)
		}
		output.Info("token saved", "path", config.FilePath())
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark(fmt.Sprintf("Logged in as %s", output.FormatNoun(user))))
		return nil
	},
}
