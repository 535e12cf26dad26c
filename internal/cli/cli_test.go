package cli

import (
	"archive/zip"
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/maa-labs/maa-cli/internal/release"
)

func TestParseFeatureFlags(t *testing.T) {
	tests := []struct {
		name    string
		flags   []string
		want    map[string][]string
		wantErr bool
	}{
		{
			name:  "single",
			flags: []string{"ui=mfaa"},
			want:  map[string][]string{"ui": {"mfaa"}},
		},
		{
			name:  "comma separated",
			flags: []string{"ci=lint, release"},
			want:  map[string][]string{"ci": {"lint", "release"}},
		},
		{
			name:  "repeated flag accumulates",
			flags: []string{"ci=lint", "ci=release", "ui=mfw"},
			want:  map[string][]string{"ci": {"lint", "release"}, "ui": {"mfw"}},
		},
		{
			name:  "empty value selects nothing",
			flags: []string{"ci="},
			want:  map[string][]string{"ci": {}},
		},
		{
			name:    "missing equals",
			flags:   []string{"ui"},
			wantErr: true,
		},
		{
			name:    "empty name",
			flags:   []string{"=mfaa"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFeatureFlags(tt.flags)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFeatureFlags(%v) = %v, want %v", tt.flags, got, tt.want)
			}
		})
	}
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	createFeatures = nil
	authToken = ""
	fetchVersion = "latest"
	flagSilence, flagVerbose, flagProxy = false, false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestVersionShort(t *testing.T) {
	buildVersion = "1.2.3"
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "1.2.3" {
		t.Errorf("version --short = %q", out)
	}
}

func TestConfigSetGet(t *testing.T) {
	t.Setenv("MAA_HOME", t.TempDir())

	if _, err := execute(t, "config", "set", "mirror", "https://mirror.example.com"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := execute(t, "config", "get", "mirror")
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if strings.TrimSpace(out) != "https://mirror.example.com" {
		t.Errorf("config get mirror = %q", out)
	}

	if _, err := execute(t, "config", "set", "colour", "blue"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestFetchRequiresProjectRoot(t *testing.T) {
	t.Setenv("MAA_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := execute(t, "fetch", "maa")
	if err == nil || !strings.Contains(err.Error(), "project root") {
		t.Fatalf("expected project root error, got %v", err)
	}
}

func TestFetchUIRejectsNonUI(t *testing.T) {
	t.Setenv("MAA_HOME", t.TempDir())
	_, err := execute(t, "fetch", "ui", "maa")
	if err == nil || !strings.Contains(err.Error(), "not a UI") {
		t.Fatalf("expected not a UI error, got %v", err)
	}
}

func TestFetchUIFromCache(t *testing.T) {
	c, err := release.Lookup("mfaa")
	if err != nil {
		t.Fatal(err)
	}
	triplet, err := c.Triplet(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		t.Skipf("no mfaa release for this platform: %v", err)
	}
	if runtime.GOOS == "windows" {
		t.Skip("symlink assertions need a unix filesystem")
	}

	home := t.TempDir()
	t.Setenv("MAA_HOME", home)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("MFAAvalonia.exe")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("binary"))
	if w, err = zw.Create("resource/bundled.txt"); err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("bundled"))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	asset := "MFAAvalonia-v1.0.0-" + triplet + ".zip"
	writeFile(t, filepath.Join(home, "cache", "releases", "mfaa", "v1.0.0", asset), buf.String())

	project := t.TempDir()
	writeFile(t, filepath.Join(project, "assets", "interface.json"), "{}")
	writeFile(t, filepath.Join(project, "assets", "resource", "image.png"), "png")
	t.Chdir(project)

	// The second fetch finds the links from the first one in place.
	for i := 0; i < 2; i++ {
		out, err := execute(t, "fetch", "ui", "mfaa", "--version", "1.0.0")
		if err != nil {
			t.Fatalf("fetch ui #%d: %v\n%s", i+1, err, out)
		}
	}
	if _, err := os.Stat(filepath.Join(project, "assets", "resource", "bundled.txt")); !os.IsNotExist(err) {
		t.Errorf("release files written into project assets, stat err = %v", err)
	}

	if _, err := os.Stat(filepath.Join(project, "MFAAvalonia", "MFAAvalonia.exe")); err != nil {
		t.Errorf("binary not extracted: %v", err)
	}
	target, err := os.Readlink(filepath.Join(project, "MFAAvalonia", "resource"))
	if err != nil {
		t.Fatalf("resource link: %v", err)
	}
	if target != filepath.FromSlash("../assets/resource") {
		t.Errorf("resource link target = %q", target)
	}
	if _, err := os.Stat(filepath.Join(project, "MFAAvalonia", "resource", "image.png")); err != nil {
		t.Errorf("resource not reachable through link: %v", err)
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	args = append([]string{"-c", "user.name=test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}, args...)
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestCreateSilent(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	upstream := t.TempDir()
	runGit(t, upstream, "init", "-q", "-b", "main")
	writeFile(t, filepath.Join(upstream, "base", "README.md"), "hello\n")
	writeFile(t, filepath.Join(upstream, "features", "meta.json"), `{
  "var": ["greeting=hi"],
  "features": [
    {"name": "ui", "type": "single", "default": "mfaa", "choices": [
      {"name": "mfaa", "apply": ["ui/mfaa"]},
      {"name": "none"}
    ]},
    {"name": "ci", "type": "multi", "choices": [
      {"name": "lint", "apply": ["ci/lint"]},
      {"name": "release", "apply": ["ci/release"]}
    ]}
  ]
}`)
	writeFile(t, filepath.Join(upstream, "features", "ui", "mfaa", "ui.txt"), "mfaa\n")
	writeFile(t, filepath.Join(upstream, "features", "ci", "lint", "lint.yml"), "lint\n")
	writeFile(t, filepath.Join(upstream, "features", "ci", "release", "release.yml"), "release\n")
	runGit(t, upstream, "add", "-A")
	runGit(t, upstream, "commit", "-q", "-m", "init")

	t.Setenv("MAA_HOME", t.TempDir())
	t.Setenv("MAA_TEMPLATE_URL", upstream)
	t.Setenv("MAA_TEMPLATE_BRANCH", "main")
	parent := t.TempDir()
	t.Chdir(parent)

	out, err := execute(t, "--silence", "create", "demo", "--feature", "ci=lint")
	if err != nil {
		t.Fatalf("create: %v\n%s", err, out)
	}

	for _, rel := range []string{"README.md", "ui.txt", "lint.yml"} {
		if _, err := os.Stat(filepath.Join(parent, "demo", rel)); err != nil {
			t.Errorf("%s missing: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(parent, "demo", "release.yml")); !os.IsNotExist(err) {
		t.Errorf("release.yml should not be applied, stat err = %v", err)
	}
	if !strings.Contains(out, "Created") {
		t.Errorf("missing summary in output:\n%s", out)
	}

	if _, err := execute(t, "--silence", "create", "demo"); err == nil {
		t.Error("expected error creating an existing folder")
	}
}

func TestDoctorCheckManifest(t *testing.T) {
	t.Setenv("MAA_HOME", t.TempDir())
	checkManifest = ""
	t.Cleanup(func() { checkManifest = "" })

	good := filepath.Join(t.TempDir(), "meta.json")
	writeFile(t, good, `{"features": [{"name": "ui", "type": "single", "choices": [{"name": "mfaa"}]}]}`)
	out, err := execute(t, "doctor", "--check-manifest", good)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[ OK ] 1 feature(s)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	bad := filepath.Join(t.TempDir(), "meta.json")
	writeFile(t, bad, `{"features": [{"name": "ui", "choices": []}]}`)
	out, err = execute(t, "doctor", "--check-manifest", bad)
	if err == nil {
		t.Fatalf("expected error for invalid manifest:\n%s", out)
	}
	if !strings.Contains(out, "[FAIL]") || !strings.Contains(out, `feature "ui"`) {
		t.Errorf("expected FAIL line naming the feature:\n%s", out)
	}
}

func TestDoctorReportsMissingTemplate(t *testing.T) {
	t.Setenv("MAA_HOME", t.TempDir())
	t.Setenv("MAA_TEMPLATE_URL", "")
	checkManifest = ""
	t.Chdir(t.TempDir())

	out, err := execute(t, "doctor")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Template check:") || !strings.Contains(out, "[MISS]") {
		t.Errorf("expected missing template report:\n%s", out)
	}
	if strings.Contains(out, "Project check:") {
		t.Errorf("project check should be skipped outside a project:\n%s", out)
	}
}
