package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartmotion/pkg/errors"
)

// barDoc has a 300x300 plot area behind the default margins.
const barDoc = `
title = "Sales"
width = 360
height = 350

[x]
padding = 0

[[series]]
key = "s"
points = [
  { category = "A", value = 10 },
  { category = "B", value = 20 },
  { category = "C", value = 30 },
]

[[frames]]
[[frames.series]]
key = "s"
points = [
  { category = "A", value = 10 },
  { category = "B", value = 20 },
]
`

const stackDoc = `
mark = "stacked-bar"

[[series]]
key = "a"
points = [{ category = "A", value = 1 }, { category = "B", value = 2 }]

[[series]]
key = "b"
points = [{ category = "A", value = 3 }, { category = "B", value = 4 }]
`

// isolate points the config and cache directories at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func writeChart(t *testing.T, dir, name, doc string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.Out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	input := writeChart(t, dir, "sales.toml", barDoc)

	if _, err := runCLI(t, "render", input, "-f", "svg,json", "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	svg, err := os.ReadFile(filepath.Join(dir, "sales.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Errorf("svg = %.40q", svg)
	}
	var scene struct {
		Frame int               `json:"frame"`
		Marks []json.RawMessage `json:"marks"`
	}
	data, err := os.ReadFile(filepath.Join(dir, "sales.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &scene); err != nil {
		t.Fatal(err)
	}
	if scene.Frame != 0 || len(scene.Marks) != 3 {
		t.Errorf("scene frame %d with %d marks, want frame 0 with 3", scene.Frame, len(scene.Marks))
	}

	out := filepath.Join(dir, "second.json")
	if _, err := runCLI(t, "render", input, "-f", "json", "--frame", "1", "-o", out); err != nil {
		t.Fatalf("render frame 1: %v", err)
	}
	data, err = os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &scene); err != nil {
		t.Fatal(err)
	}
	if scene.Frame != 1 || len(scene.Marks) != 2 {
		t.Errorf("scene frame %d with %d marks, want frame 1 with 2", scene.Frame, len(scene.Marks))
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := isolate(t)
	input := writeChart(t, dir, "sales.toml", barDoc)
	bad := writeChart(t, dir, "bad.toml", "mark = 3")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"frames format", []string{"render", input, "-f", "frames"}, errors.ErrCodeInvalidFormat},
		{"unknown format", []string{"render", input, "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"missing frame", []string{"render", input, "--frame", "4"}, errors.ErrCodeInvalidInput},
		{"missing file", []string{"render", filepath.Join(dir, "nope.toml")}, errors.ErrCodeInvalidInput},
		{"bad document", []string{"render", bad}, errors.ErrCodeInvalidChart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, append(tt.args, "--no-cache")...)
			if err == nil {
				t.Fatal("render succeeded, want error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestAnimateCommand(t *testing.T) {
	dir := isolate(t)
	input := writeChart(t, dir, "sales.toml", barDoc)
	stills := filepath.Join(dir, "stills")

	if _, err := runCLI(t, "animate", input, "--fps", "10", "--stills", stills, "--no-cache"); err != nil {
		t.Fatalf("animate: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "sales.frames.json"))
	if err != nil {
		t.Fatal(err)
	}
	var frames struct {
		FPS   int `json:"fps"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(data, &frames); err != nil {
		t.Fatal(err)
	}
	if frames.FPS != 10 || frames.Count != 8 {
		t.Errorf("frames = %+v, want 8 at 10 fps", frames)
	}
	files, err := filepath.Glob(filepath.Join(stills, "frame_*.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != frames.Count {
		t.Errorf("wrote %d stills, want %d", len(files), frames.Count)
	}
}

func TestStackCommand(t *testing.T) {
	dir := isolate(t)
	input := writeChart(t, dir, "stack.toml", stackDoc)

	out, err := runCLI(t, "stack", input)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	for _, want := range []string{"Series", "[0, 1]", "[1, 4]", "[2, 6]", "offset none"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "stack", input, "--offset", "expand")
	if err != nil {
		t.Fatalf("stack expand: %v", err)
	}
	for _, want := range []string{"[0.25, 1]", "offset expand"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	_, err = runCLI(t, "stack", input, "--order", "sideways")
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("bad order error = %v", err)
	}
}

func TestNearestCommand(t *testing.T) {
	dir := isolate(t)
	input := writeChart(t, dir, "sales.toml", barDoc)

	// canvas (190, 120) is plot (150, 100), inside B's band
	out, err := runCLI(t, "nearest", input, "--x", "190", "--y", "120", "--json")
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	var res struct {
		Found bool `json:"found"`
		Hit   struct {
			Series string `json:"series"`
			Datum  struct {
				Category string `json:"category"`
			} `json:"datum"`
		} `json:"hit"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !res.Found || res.Hit.Series != "s" || res.Hit.Datum.Category != "B" {
		t.Errorf("nearest = %+v, want B of s", res)
	}

	out, err = runCLI(t, "nearest", input, "--x", "300", "--y", "120")
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	for _, want := range []string{"Nearest datum in series s", "Category", "B"} {
		if !strings.Contains(out, want) {
			t.Errorf("nearest output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, "nearest", input, "--x", "1"); err == nil {
		t.Error("nearest without --y should fail")
	}
}

func TestCachePathCommand(t *testing.T) {
	dir := isolate(t)
	cfg := writeChart(t, dir, "config.toml", "[cache]\ndir = \"/srv/chartmotion\"\n")

	out, err := runCLI(t, "cache", "path", "--config", cfg)
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != "/srv/chartmotion" {
		t.Errorf("cache path = %q", out)
	}

	out, err = runCLI(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if want := filepath.Join(dir, "cache", "chartmotion"); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := isolate(t)
	input := writeChart(t, dir, "sales.toml", barDoc)

	if _, err := runCLI(t, "render", input); err != nil {
		t.Fatalf("render: %v", err)
	}
	entries, _ := filepath.Glob(filepath.Join(dir, "cache", "chartmotion", "*", "*"))
	if len(entries) == 0 {
		t.Fatal("render should have filled the file cache")
	}
	out, err := runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cleared") {
		t.Errorf("cache clear output = %q", out)
	}
	entries, _ = filepath.Glob(filepath.Join(dir, "cache", "chartmotion", "*", "*"))
	if len(entries) != 0 {
		t.Errorf("%d entries left after clear", len(entries))
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "charts/sales.toml", "charts/sales"},
		{"out.svg", "sales.toml", "out"},
		{"out.json", "sales.toml", "out"},
		{"out.frames.json", "sales.toml", "out"},
		{"out", "sales.toml", "out"},
		{"out.png", "sales.toml", "out.png"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "chartmotion") {
		t.Error("bash completion should name the binary")
	}
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}

	exts, dir := completeChartFile(nil, nil, "")
	if len(exts) != 2 || dir != cobra.ShellCompDirectiveFilterFileExt {
		t.Errorf("completeChartFile() = %v, %v", exts, dir)
	}
	if _, dir := completeChartFile(nil, []string{"a.toml"}, ""); dir != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("second argument directive = %v", dir)
	}
}
