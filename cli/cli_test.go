package cli

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ghostconf/codec"
	"ghostconf/logging"
	"ghostconf/preset"
	"ghostconf/schema"
)

// result captures what one command invocation printed.
type result struct {
	out  string // command output (configs, tables)
	user string // user messages on stdout
	err  error
}

// resetFlags restores every flag to its default so invocations in one test
// binary do not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"PORT", "GHOSTCONF_DATA_DIR", "GHOSTCONF_STORAGE", "GHOSTCONF_CATALOG_URL", "GHOSTCONF_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return t.TempDir()
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)

	var out, user, userErr bytes.Buffer
	prevOut, prevErr := logging.Stdout, logging.Stderr
	logging.Stdout, logging.Stderr = &user, &userErr
	t.Cleanup(func() { logging.Stdout, logging.Stderr = prevOut, prevErr })

	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&userErr)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.Execute()
	return result{out: out.String(), user: user.String(), err: err}
}

// presets runs a presets subcommand against dir.
func presets(t *testing.T, dir string, args ...string) result {
	t.Helper()
	return run(t, "", append(append([]string{"presets"}, args...), "--data-dir", dir)...)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestNormalize(t *testing.T) {
	dir := setupEnv(t)
	text := "# mine\nfont-size = 16\nbogus = x\n"
	path := writeFile(t, dir, "a.conf", text)

	r := run(t, "", "normalize", path)
	if r.err != nil {
		t.Fatalf("normalize: %v", r.err)
	}
	if want := codec.Normalize(schema.Ghostty, text) + "\n"; r.out != want {
		t.Fatalf("output = %q, want %q", r.out, want)
	}
	if strings.Contains(r.out, "bogus") || strings.Contains(r.out, "# mine") {
		t.Fatalf("noise kept: %q", r.out)
	}
}

func TestNormalizeStdinToFile(t *testing.T) {
	dir := setupEnv(t)
	dest := filepath.Join(dir, "out.conf")

	r := run(t, "cursor-style = bar", "normalize", "-", "-o", dest)
	if r.err != nil {
		t.Fatalf("normalize: %v", r.err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "cursor-style = bar\n") {
		t.Fatalf("unexpected output %q", data)
	}
	if !strings.Contains(r.user, "Wrote "+dest) {
		t.Fatalf("user output = %q", r.user)
	}
}

func TestNormalizeMissingFile(t *testing.T) {
	dir := setupEnv(t)
	if r := run(t, "", "normalize", filepath.Join(dir, "nope.conf")); r.err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestDiff(t *testing.T) {
	dir := setupEnv(t)
	a := writeFile(t, dir, "a.conf", "font-size = 12\ncursor-style = bar\n")
	b := writeFile(t, dir, "b.conf", "cursor-style = bar\nfont-size = 16\n")

	r := run(t, "", "diff", a, b)
	if r.err != nil {
		t.Fatalf("diff: %v", r.err)
	}
	if !strings.Contains(r.out, "-font-size = 12") || !strings.Contains(r.out, "+font-size = 16") {
		t.Fatalf("unexpected diff %q", r.out)
	}
	if strings.Contains(r.out, "cursor-style") {
		t.Fatalf("unchanged line reported: %q", r.out)
	}
}

func TestDiffIgnoresOrderAndNoise(t *testing.T) {
	dir := setupEnv(t)
	a := writeFile(t, dir, "a.conf", "font-size = 12\ncursor-style = bar\n")
	b := writeFile(t, dir, "b.conf", "# same\ncursor-style = \"bar\"\n\nfont-size = 12\n")

	r := run(t, "", "diff", a, b)
	if r.err != nil {
		t.Fatalf("diff: %v", r.err)
	}
	if r.out != "" || !strings.Contains(r.user, "No differences") {
		t.Fatalf("out = %q, user = %q", r.out, r.user)
	}
}

func TestDiffLines(t *testing.T) {
	got := diffLines("a = 1\nb = 2\nc = 3", "a = 1\nb = 5\nc = 3\nd = 4")
	want := []string{"-b = 2", "+b = 5", "+d = 4"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("diffLines = %q, want %q", got, want)
	}
}

func TestSchema(t *testing.T) {
	setupEnv(t)

	r := run(t, "", "schema")
	if r.err != nil {
		t.Fatalf("schema: %v", r.err)
	}
	for _, want := range []string{"Appearance", "font-family", "cursor-style"} {
		if !strings.Contains(r.out, want) {
			t.Errorf("schema output missing %q", want)
		}
	}

	if r := run(t, "", "schema", "no-such-group"); r.err == nil {
		t.Fatal("expected an error for an unknown group")
	}
}

func TestPresetsLifecycle(t *testing.T) {
	dir := setupEnv(t)
	src := writeFile(t, t.TempDir(), "theme.conf", "font-size = 15\ncursor-style = underline\n")

	r := presets(t, dir, "add", "My Theme", "-f", src, "--category", "Dark")
	if r.err != nil {
		t.Fatalf("add: %v", r.err)
	}
	if !strings.Contains(r.user, "Saved preset my-theme") {
		t.Fatalf("add output = %q", r.user)
	}

	r = presets(t, dir, "list", "--category", "Dark")
	if r.err != nil || !strings.Contains(r.out, "my-theme") || !strings.Contains(r.out, "midnight") {
		t.Fatalf("list: %v\n%s", r.err, r.out)
	}

	r = presets(t, dir, "edit", "my-theme", "--name", "Renamed")
	if r.err != nil {
		t.Fatalf("edit: %v", r.err)
	}
	r = presets(t, dir, "show", "my-theme")
	if r.err != nil || !strings.Contains(r.out, "Name:        Renamed") || !strings.Contains(r.out, "cursor-style = underline") {
		t.Fatalf("show: %v\n%s", r.err, r.out)
	}
	if !strings.Contains(r.out, "Category:    Dark") {
		t.Fatalf("edit dropped the category:\n%s", r.out)
	}

	out := filepath.Join(dir, "applied.conf")
	if r = presets(t, dir, "apply", "my-theme", "-o", out); r.err != nil {
		t.Fatalf("apply: %v", r.err)
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "font-size = 15\n") || !strings.Contains(string(data), "cursor-style = underline\n") {
		t.Fatalf("applied config = %q", data)
	}

	exportDir := t.TempDir()
	if r = presets(t, dir, "export", "my-theme", "-d", exportDir); r.err != nil {
		t.Fatalf("export: %v", r.err)
	}
	exported, err := os.ReadFile(filepath.Join(exportDir, "renamed.conf"))
	if err != nil || string(exported) != "font-size = 15\ncursor-style = underline\n" {
		t.Fatalf("export = %q, %v", exported, err)
	}

	if r = presets(t, dir, "rm", "my-theme"); r.err != nil {
		t.Fatalf("rm: %v", r.err)
	}
	if r = presets(t, dir, "show", "my-theme"); !errors.Is(r.err, preset.ErrNotFound) {
		t.Fatalf("show after rm: expected ErrNotFound, got %v", r.err)
	}
}

func TestPresetsSQLiteStorage(t *testing.T) {
	dir := setupEnv(t)
	src := writeFile(t, t.TempDir(), "a.conf", "font-size = 20\n")

	if r := presets(t, dir, "add", "Big", "-f", src, "--storage", "sqlite"); r.err != nil {
		t.Fatalf("add: %v", r.err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ghostconf.db")); err != nil {
		t.Fatalf("sqlite database not created: %v", err)
	}
	r := presets(t, dir, "list", "--storage", "sqlite", "-q", "big")
	if r.err != nil || !strings.Contains(r.out, "big") {
		t.Fatalf("list: %v\n%s", r.err, r.out)
	}
}

func TestPresetsAddFromStdin(t *testing.T) {
	dir := setupEnv(t)

	r := run(t, "window-theme = dark\n", "presets", "add", "Piped", "-f", "-", "--data-dir", dir)
	if r.err != nil {
		t.Fatalf("add: %v", r.err)
	}
	r = presets(t, dir, "show", "piped")
	if r.err != nil || !strings.Contains(r.out, "window-theme = dark") {
		t.Fatalf("show: %v\n%s", r.err, r.out)
	}
}

func TestPresetsAddEmptyConfig(t *testing.T) {
	dir := setupEnv(t)
	src := writeFile(t, t.TempDir(), "empty.conf", "  \n")

	if r := presets(t, dir, "add", "Empty", "-f", src); !errors.Is(r.err, preset.ErrInvalidDraft) {
		t.Fatalf("expected ErrInvalidDraft, got %v", r.err)
	}
}

func TestPresetsEditRequiresChange(t *testing.T) {
	dir := setupEnv(t)
	if r := presets(t, dir, "edit", "anything"); r.err == nil {
		t.Fatal("expected an error when no field is given")
	}
}

func TestPresetsCommunityIsReadOnly(t *testing.T) {
	dir := setupEnv(t)

	if r := presets(t, dir, "rm", "midnight"); !errors.Is(r.err, preset.ErrReadOnly) {
		t.Fatalf("rm: expected ErrReadOnly, got %v", r.err)
	}
	if r := presets(t, dir, "edit", "midnight", "--name", "Mine"); !errors.Is(r.err, preset.ErrReadOnly) {
		t.Fatalf("edit: expected ErrReadOnly, got %v", r.err)
	}
}

func TestPresetsDup(t *testing.T) {
	dir := setupEnv(t)

	r := presets(t, dir, "dup", "midnight")
	if r.err != nil {
		t.Fatalf("dup: %v", r.err)
	}
	if !strings.Contains(r.user, "as midnight-copy") {
		t.Fatalf("dup output = %q", r.user)
	}
	r = presets(t, dir, "show", "midnight-copy")
	if r.err != nil || !strings.Contains(r.out, "Source:      local") || !strings.Contains(r.out, "background = #0b1021") {
		t.Fatalf("show: %v\n%s", r.err, r.out)
	}
}

func TestPresetsApplyLayersOverPrevious(t *testing.T) {
	dir := setupEnv(t)
	prev := writeFile(t, t.TempDir(), "prev.conf", "font-size = 18\ncursor-style = block\n")

	r := presets(t, dir, "apply", "focus", "--previous", prev)
	if r.err != nil {
		t.Fatalf("apply: %v", r.err)
	}
	if !strings.Contains(r.out, "font-size = 18\n") || !strings.Contains(r.out, "cursor-style = bar\n") {
		t.Fatalf("applied config = %q", r.out)
	}
}

func TestBadStorageFlag(t *testing.T) {
	dir := setupEnv(t)
	if r := presets(t, dir, "list", "--storage", "redis"); r.err == nil {
		t.Fatal("expected an error for an unknown storage backend")
	}
}

func TestExplicitSettingsFileMustExist(t *testing.T) {
	dir := setupEnv(t)
	if r := presets(t, dir, "list", "--config", filepath.Join(dir, "missing.yaml")); r.err == nil {
		t.Fatal("expected an error for a missing settings file")
	}
}

func TestSettingsFileSelectsStorage(t *testing.T) {
	dir := setupEnv(t)
	cfg := writeFile(t, t.TempDir(), "settings.toml", "storage = \"sqlite\"\n")
	src := writeFile(t, t.TempDir(), "a.conf", "font-size = 11\n")

	if r := presets(t, dir, "add", "Small", "-f", src, "--config", cfg); r.err != nil {
		t.Fatalf("add: %v", r.err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ghostconf.db")); err != nil {
		t.Fatalf("settings file storage not used: %v", err)
	}
}

func TestLocalPresetCommandsSkipCatalogFetch(t *testing.T) {
	dir := setupEnv(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"presets":[{"id":"remote","name":"Remote","category":"Net","config":"theme = r\n"}]}`))
	}))
	defer srv.Close()
	t.Setenv("GHOSTCONF_CATALOG_URL", srv.URL+"/index.json")
	src := writeFile(t, t.TempDir(), "a.conf", "font-size = 12\n")

	if r := presets(t, dir, "add", "Mine", "-f", src); r.err != nil {
		t.Fatalf("add: %v", r.err)
	}
	if r := presets(t, dir, "edit", "mine", "--description", "changed"); r.err != nil {
		t.Fatalf("edit: %v", r.err)
	}
	if r := presets(t, dir, "rm", "mine"); r.err != nil {
		t.Fatalf("rm: %v", r.err)
	}
	if n := hits.Load(); n != 0 {
		t.Fatalf("local commands fetched the catalog index %d times", n)
	}

	r := presets(t, dir, "list")
	if r.err != nil || !strings.Contains(r.out, "remote") {
		t.Fatalf("list: %v\n%s", r.err, r.out)
	}
	if hits.Load() == 0 {
		t.Fatal("list did not refresh the catalog")
	}
}

func TestPresetsQueryMatchesNameAndDescription(t *testing.T) {
	dir := setupEnv(t)
	src := writeFile(t, t.TempDir(), "a.conf", "font-size = 12\n")
	if r := presets(t, dir, "add", "Quiet", "-f", src, "--category", "Zebra", "--description", "soft colors"); r.err != nil {
		t.Fatalf("add: %v", r.err)
	}

	if r := presets(t, dir, "list", "-q", "soft"); r.err != nil || !strings.Contains(r.out, "quiet") {
		t.Fatalf("query on description: %v\n%s", r.err, r.out)
	}
	r := presets(t, dir, "list", "-q", "zebra")
	if r.err != nil || strings.Contains(r.out, "quiet") || !strings.Contains(r.user, "No presets found") {
		t.Fatalf("query matched the category: %v\n%s", r.err, r.out)
	}

	help := run(t, "", "presets", "list", "--help")
	if !strings.Contains(help.out, "name or description contains") || strings.Contains(help.out, "or category contains") {
		t.Fatalf("--query help:\n%s", help.out)
	}
}
