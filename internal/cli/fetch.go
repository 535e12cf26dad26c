package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maa-labs/maa-cli/internal/archive"
	"github.com/maa-labs/maa-cli/internal/output"
	"github.com/maa-labs/maa-cli/internal/platform"
	"github.com/maa-labs/maa-cli/internal/release"
	"github.com/spf13/cobra"
)

// projectMarker identifies a project root.
var projectMarker = filepath.Join("assets", "interface.json")

var fetchVersion string

func init() {
	fetchCmd.PersistentFlags().StringVar(&fetchVersion, "version", "latest", "Release tag to download")
	fetchCmd.AddCommand(fetchMaaCmd)
	fetchCmd.AddCommand(fetchUICmd)
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download release artifacts into the current project",
	Long: `Download MaaFramework or a UI release for this platform and extract it
into the project. Must be run at the project root.`,
}

var fetchMaaCmd = &cobra.Command{
	Use:   "maa",
	Short: "Download MaaFramework into deps/",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd, "maa")
	},
}

var fetchUICmd = &cobra.Command{
	Use:       "ui <name>",
	Short:     "Download a UI and link it to the project resources",
	Long:      "Download a UI release. Available UIs: " + strings.Join(release.UIs(), ", "),
	Args:      cobra.ExactArgs(1),
	ValidArgs: release.UIs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := release.Lookup(args[0])
		if err != nil {
			return err
		}
		if !c.UI {
			return fmt.Errorf("%q is not a UI (available: %s)", args[0], strings.Join(release.UIs(), ", "))
		}
		return runFetch(cmd, c.ID)
	},
}

func runFetch(cmd *cobra.Command, id string) error {
	ctx := cmd.Context()

	root, err := projectRoot()
	if err != nil {
		return err
	}
	c, err := release.Lookup(id)
	if err != nil {
		return err
	}
	p, err := release.New(settings)
	if err != nil {
		return err
	}

	var a *release.Archive
	err = output.RunWithSpinner(ctx, fmt.Sprintf("Downloading %s...", c.Name), func() error {
		var err error
		a, err = p.Fetch(ctx, c, fetchVersion)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetching %s: %w", c.Name, err)
	}
	output.Debug("release archive ready", "component", c.ID, "tag", a.Tag, "asset", a.Asset, "cached", a.Cached)

	// Links from an earlier fetch point outside the folder; the archive must
	// not write through them.
	for _, l := range c.Symlinks {
		link := filepath.Join(root, filepath.FromSlash(l.Link))
		if err := platform.Unlink(link); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", l.Link, err)
		}
	}

	dest := filepath.Join(root, c.Folder)
	stats, err := archive.Extract(a.Data, dest)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", a.Asset, err)
	}

	for _, l := range c.Symlinks {
		link := filepath.Join(root, filepath.FromSlash(l.Link))
		// The project's copy replaces whatever the release bundles here.
		if info, err := os.Lstat(link); err == nil && info.IsDir() {
			if err := os.RemoveAll(link); err != nil {
				return fmt.Errorf("replacing %s: %w", l.Link, err)
			}
		}
		if err := platform.Link(filepath.FromSlash(l.Target), link); err != nil {
			return fmt.Errorf("linking %s: %w", l.Link, err)
		}
		output.Debug("linked", "link", l.Link, "target", l.Target)
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark(fmt.Sprintf("%s %s extracted to %s (%d files)",
		c.Name, a.Tag, output.FormatNoun(c.Folder), stats.Files)))
	return nil
}

// projectRoot returns the working directory if it looks like a project root.
func projectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	if _, err := os.Stat(filepath.Join(wd, projectMarker)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s not found: run this command at your project root", projectMarker)
		}
		return "", err
	}
	return wd, nil
}
