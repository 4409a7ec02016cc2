package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	cfgpkg "github.com/KaramelBytes/resortgen/internal/config"
	"github.com/KaramelBytes/resortgen/internal/dataset"
	"github.com/KaramelBytes/resortgen/internal/manifest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default; cobra keeps values and
// Changed state across Execute calls on the same command tree.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execCmd(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	if err := execCmd(t, args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

// isolate points HOME at a temp dir so no user config leaks into the run.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestCLI_GenerateAllWritesArtifactsAndManifest(t *testing.T) {
	home := isolate(t)
	out := filepath.Join(home, "out")

	runCmd(t, "generate", "--out", out, "--seed", "7", "--xlsx", "--quiet")

	for _, d := range []dataset.Domain{dataset.RevenueDomain(), dataset.PromoDomain()} {
		for _, p := range []string{
			filepath.Join(out, d.Dir, "data_raw", d.Files.Raw),
			filepath.Join(out, d.Dir, "data_clean", d.Files.Clean),
			filepath.Join(out, d.Dir, "outputs", d.Files.Flags),
		} {
			assert.FileExists(t, p)
		}
	}
	assert.FileExists(t, filepath.Join(out, "01_problem-revenue-integrity", "outputs", "p1_daily_revenue.xlsx"))

	m, err := manifest.Load(out)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), m.Seed)
	assert.Len(t, m.Artifacts, 8)
	rev := m.Domains["revenue"]
	assert.Equal(t, 460, rev.GroundTruth)
	assert.Equal(t, 459, rev.Raw)
	assert.Equal(t, 6, rev.Gaps)
	assert.Equal(t, rev.Raw-rev.Duplicates, rev.Clean)
	for _, a := range m.Artifacts {
		assert.False(t, filepath.IsAbs(a.Path), a.Path)
	}

	runCmd(t, "list", filepath.Join(out, "01_problem-revenue-integrity", "data_raw"), "--stats")
}

func TestCLI_GenerateIsDeterministic(t *testing.T) {
	home := isolate(t)
	a, b := filepath.Join(home, "a"), filepath.Join(home, "b")
	runCmd(t, "generate", "promo", "--out", a, "--seed", "11", "--quiet")
	runCmd(t, "generate", "promo", "--out", b, "--seed", "11", "--quiet")

	d := dataset.PromoDomain()
	for _, rel := range []string{
		filepath.Join(d.Dir, "data_raw", d.Files.Raw),
		filepath.Join(d.Dir, "data_clean", d.Files.Clean),
		filepath.Join(d.Dir, "outputs", d.Files.Flags),
	} {
		x, err := os.ReadFile(filepath.Join(a, rel))
		require.NoError(t, err)
		y, err := os.ReadFile(filepath.Join(b, rel))
		require.NoError(t, err)
		assert.Equal(t, string(x), string(y), rel)
	}
	assert.NoDirExists(t, filepath.Join(a, dataset.RevenueDomain().Dir))
}

func TestCLI_GenerateUsesConfigDefaults(t *testing.T) {
	home := isolate(t)
	out := filepath.Join(home, "configured")

	runCmd(t, "config", "set", "output_dir", out)
	runCmd(t, "config", "set", "seed", "42")

	c, err := cfgpkg.Load("")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.Seed)
	assert.Equal(t, out, c.OutputDir)

	runCmd(t, "config", "show")
	runCmd(t, "generate", "revenue", "--quiet")
	m, err := manifest.Load(out)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), m.Seed)

	assert.Error(t, execCmd(t, "config", "set", "seed", "-1"))
	assert.Error(t, execCmd(t, "config", "set", "log_format", "xml"))
	assert.Error(t, execCmd(t, "config", "set", "nope", "1"))
}

func TestCLI_GenerateUnknownDomain(t *testing.T) {
	home := isolate(t)
	err := execCmd(t, "generate", "spa", "--out", filepath.Join(home, "out"), "--quiet")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrUnknownDomain))
}

func TestCLI_GenerateWithDomainsFile(t *testing.T) {
	home := isolate(t)
	out := filepath.Join(home, "out")
	file := filepath.Join(home, "domains.yaml")
	require.NoError(t, os.WriteFile(file, []byte("revenue:\n  end: 2025-10-07\n  properties: [RW_NYC]\n"), 0o644))

	runCmd(t, "domains", "list", "--domains-file", file)
	runCmd(t, "domains", "show", "revenue", "--domains-file", file)
	runCmd(t, "generate", "revenue", "--out", out, "--domains-file", file, "--quiet")

	m, err := manifest.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 35, m.Domains["revenue"].GroundTruth)
}

func TestCLI_ProfileWritesMarkdown(t *testing.T) {
	home := isolate(t)
	out := filepath.Join(home, "out")
	runCmd(t, "generate", "revenue", "--out", out, "--xlsx", "--quiet")

	d := dataset.RevenueDomain()
	md := filepath.Join(home, "reports", "raw.md")
	runCmd(t, "profile", filepath.Join(out, d.Dir, "data_raw", d.Files.Raw), "--group-by", "department", "--output", md)
	b, err := os.ReadFile(md)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[DATASET PROFILE]")
	assert.Contains(t, string(b), "- department=slots (n=")
	assert.Contains(t, string(b), "- is_duplicate_row: flag")

	runCmd(t, "profile", filepath.Join(out, d.Dir, "outputs", "p1_daily_revenue.xlsx"), "--sheet-name", "clean")
	assert.Error(t, execCmd(t, "profile", filepath.Join(home, "missing.csv")))
}

func TestCLI_GenerateXLSXFlagOverridesConfig(t *testing.T) {
	home := isolate(t)
	out := filepath.Join(home, "out")
	runCmd(t, "config", "set", "xlsx", "true")

	runCmd(t, "generate", "revenue", "--out", out, "--xlsx=false", "--quiet")

	d := dataset.RevenueDomain()
	assert.NoFileExists(t, filepath.Join(out, d.Dir, "outputs", "p1_daily_revenue.xlsx"))
	m, err := manifest.Load(out)
	require.NoError(t, err)
	for _, a := range m.Artifacts {
		assert.NotEqual(t, manifest.KindWorkbook, a.Kind, a.Path)
	}

	runCmd(t, "generate", "revenue", "--out", out, "--quiet")
	assert.FileExists(t, filepath.Join(out, d.Dir, "outputs", "p1_daily_revenue.xlsx"))
}

func TestCLI_GenerateFailsWhenOutIsAFile(t *testing.T) {
	home := isolate(t)
	out := filepath.Join(home, "blocker")
	require.NoError(t, os.WriteFile(out, []byte("x"), 0o644))

	err := execCmd(t, "generate", "revenue", "--out", out, "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), out)
	assert.NoFileExists(t, filepath.Join(home, "blocker", "manifest.json"))
}
