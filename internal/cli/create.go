package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/maa-labs/maa-cli/internal/engine"
	"github.com/maa-labs/maa-cli/internal/output"
	"github.com/maa-labs/maa-cli/internal/template"
	"github.com/spf13/cobra"
)

var createFeatures []string

func init() {
	createCmd.Flags().StringArrayVar(&createFeatures, "feature", nil, "Select a feature choice as name=choice (repeat or comma-separate for multi-choice features)")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create [folder]",
	Short: "Create a new project from the template",
	Long: `Create a new project folder from the template repository.

The template is cloned on first use. Features not selected with --feature
are asked for interactively, or take their defaults with --silence.`,
	Example: `  maa create my-project
  maa create my-project --feature ui=mfaa --feature ci=lint,release
  maa --silence create my-project`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := parseFeatureFlags(createFeatures)
		if err != nil {
			return err
		}

		var folder string
		if len(args) == 1 {
			folder = args[0]
		}

		res, err := engine.Run(cmd.Context(), engine.Options{
			Folder:    folder,
			Overrides: overrides,
			Input:     inputSource(),
			Template:  spinnerSource{template.New(settings)},
			Logger:    output.Logger,
		})
		if err != nil {
			if res != nil && res.Target != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), output.FormatFailure(fmt.Sprintf("%s left in place after stage %s",
					output.FormatNoun(res.Target), res.Reached)))
			}
			return err
		}

		printCreateSummary(cmd, res)
		return nil
	},
}

// spinnerSource shows a spinner while the template is cloned or synced.
type spinnerSource struct {
	p *template.Provider
}

func (s spinnerSource) Ensure(ctx context.Context) (string, error) {
	var dir string
	err := output.RunWithSpinner(ctx, "Preparing template...", func() error {
		var err error
		dir, err = s.p.Ensure(ctx)
		return err
	})
	return dir, err
}

func printCreateSummary(cmd *cobra.Command, res *engine.Result) {
	out := cmd.OutOrStdout()
	for _, name := range res.Order {
		fmt.Fprintf(out, "  %s %s\n", output.StyleDim.Render(name+":"), strings.Join(res.Resolved[name], ", "))
	}
	for _, h := range res.Hooks {
		fmt.Fprintf(out, "  %s %s\n", output.StyleAction.Render("ran"), strings.Join(h.Command, " "))
	}
	fmt.Fprintln(out, output.FormatCheckmark(fmt.Sprintf("Created %s (%d bundles, %d hooks)",
		output.FormatNoun(res.Target), len(res.Applied), len(res.Hooks))))
}

// parseFeatureFlags turns repeated name=choice flags into the override map.
// Values are comma-separated and accumulate across repeats; "name=" selects
// nothing.
func parseFeatureFlags(flags []string) (map[string][]string, error) {
	overrides := make(map[string][]string, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --feature %q: expected name=choice", f)
		}
		values := overrides[name]
		if values == nil {
			values = []string{}
		}
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		overrides[name] = values
	}
	return overrides, nil
}
