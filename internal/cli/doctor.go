package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/maa-labs/maa-cli/internal/config"
	"github.com/maa-labs/maa-cli/internal/manifest"
	"github.com/maa-labs/maa-cli/internal/platform"
	"github.com/maa-labs/maa-cli/internal/release"
	"github.com/maa-labs/maa-cli/internal/template"
	"github.com/spf13/cobra"
)

var checkManifest string

func init() {
	doctorCmd.Flags().StringVar(&checkManifest, "check-manifest", "", "Validate a feature manifest at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local environment",
	Long: `Run diagnostic checks on required tools, the template checkout, and,
when run at a project root, the fetched releases.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if checkManifest != "" {
			return runManifestCheck(w, checkManifest)
		}

		runToolCheck(w)
		runTemplateCheck(cmd.Context(), w)
		if root, err := projectRoot(); err == nil {
			runProjectCheck(w, root)
		}
		return nil
	},
}

func runToolCheck(w io.Writer) {
	fmt.Fprintln(w, "Tool check:")
	if path, err := exec.LookPath("git"); err != nil {
		fmt.Fprintln(w, "  [MISS] git not found (required by create and update)")
	} else {
		fmt.Fprintf(w, "  [ OK ] git found at %s\n", path)
	}
	if platform.SymlinksSupported() {
		fmt.Fprintln(w, "  [ OK ] symlinks supported")
	} else {
		fmt.Fprintln(w, "  [WARN] symlinks unavailable, UI resources will be copied")
	}
	if _, err := os.Stat(config.FilePath()); err == nil {
		fmt.Fprintf(w, "  [ OK ] config file at %s\n", config.FilePath())
	} else {
		fmt.Fprintf(w, "  [INFO] no config file at %s (defaults in use)\n", config.FilePath())
	}
	if settings.Token != "" || os.Getenv("GITHUB_TOKEN") != "" {
		fmt.Fprintln(w, "  [ OK ] GitHub token configured")
	} else {
		fmt.Fprintf(w, "  [INFO] no GitHub token (see '%s auth')\n", rootCmd.Name())
	}
}

func runTemplateCheck(ctx context.Context, w io.Writer) {
	fmt.Fprintln(w, "Template check:")
	dir := template.New(settings).Dir()
	if !template.IsRepo(ctx, dir) {
		fmt.Fprintf(w, "  [MISS] %s is not a checkout (run '%s update')\n", dir, rootCmd.Name())
		return
	}

	last := template.LastSynced(dir)
	switch {
	case last.IsZero():
		fmt.Fprintf(w, "  [WARN] %s has never been synced\n", dir)
	case template.IsStale(dir, template.DefaultMaxAge):
		fmt.Fprintf(w, "  [WARN] %s last synced %s ago\n", dir, time.Since(last).Round(time.Hour))
	default:
		fmt.Fprintf(w, "  [ OK ] %s synced %s\n", dir, last.Format(time.RFC3339))
	}

	path, err := manifest.Locate(dir)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return
	}
	_ = runManifestCheck(w, path)
}

func runManifestCheck(w io.Writer, path string) error {
	fmt.Fprintf(w, "Manifest validation: %s\n", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return fmt.Errorf("manifest validation failed: %w", err)
	}
	if !result.Valid {
		fmt.Fprintf(w, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "    - %s\n", issue)
		}
		return fmt.Errorf("manifest %s has %d validation issue(s)", path, len(result.Issues))
	}

	m, err := manifest.Load(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return err
	}
	for _, warning := range m.Warnings {
		fmt.Fprintf(w, "  [WARN] %s\n", warning)
	}
	fmt.Fprintf(w, "  [ OK ] %d feature(s), %d variable seed(s)\n", len(m.Features), len(m.Vars))
	return nil
}

func runProjectCheck(w io.Writer, root string) {
	fmt.Fprintln(w, "Project check:")
	maa, _ := release.Lookup("maa")
	checkFolder(w, root, maa)

	for _, id := range release.UIs() {
		c, _ := release.Lookup(id)
		if _, err := os.Stat(filepath.Join(root, c.Folder)); err != nil {
			continue
		}
		checkFolder(w, root, c)
		for _, l := range c.Symlinks {
			link := filepath.Join(root, filepath.FromSlash(l.Link))
			target, err := platform.Readlink(link)
			if err != nil {
				fmt.Fprintf(w, "  [MISS] %s link not found (run '%s fetch ui %s')\n", l.Link, rootCmd.Name(), c.ID)
				continue
			}
			if _, err := os.Stat(link); err != nil {
				fmt.Fprintf(w, "  [WARN] %s -> %s (target does not exist)\n", l.Link, target)
				continue
			}
			fmt.Fprintf(w, "  [ OK ] %s -> %s\n", l.Link, target)
		}
	}
}

func checkFolder(w io.Writer, root string, c release.Component) {
	if _, err := os.Stat(filepath.Join(root, c.Folder)); err != nil {
		fmt.Fprintf(w, "  [MISS] %s not fetched into %s\n", c.Name, c.Folder)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s present in %s\n", c.Name, c.Folder)
}
