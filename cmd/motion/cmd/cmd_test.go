package cmd

import (
	"bytes"
	"encoding/csv"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-drift/motion/pkg/presets"
)

// project creates a temporary project with motion.yaml and makes it the
// working directory. Command output is captured in the returned buffer.
func project(t *testing.T, motionYAML string, files map[string]string) *bytes.Buffer {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "motion.yaml"), []byte(motionYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Chdir(dir)

	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestExecute_HelpAndVersion(t *testing.T) {
	out := project(t, "", nil)
	for _, args := range [][]string{nil, {"--help"}, {"help"}} {
		out.Reset()
		if err := Execute(args); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if !strings.Contains(out.String(), "simulate") || !strings.Contains(out.String(), "demo") {
			t.Errorf("%v: help does not list commands:\n%s", args, out)
		}
	}

	out.Reset()
	Execute([]string{"--version"})
	if !strings.HasPrefix(out.String(), "motion version "+Version) {
		t.Errorf("version = %q", out)
	}

	out.Reset()
	Execute([]string{"simulate", "--help"})
	if !strings.Contains(out.String(), "--integrator") {
		t.Errorf("simulate help = %q", out)
	}
}

func TestExecute_Errors(t *testing.T) {
	project(t, "", nil)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"fly"}},
		{"missing presets path", []string{"simulate", "--presets"}},
		{"unknown preset", []string{"simulate", "--preset", "bouncy"}},
		{"bad flag", []string{"simulate", "--tension", "stiff"}},
		{"bad integrator", []string{"simulate", "--integrator", "rk4"}},
		{"invalid spring", []string{"simulate", "--mass", "-1"}},
		{"unknown easing", []string{"simulate", "--duration", "100ms", "--easing", "wiggle"}},
		{"bad export", []string{"presets", "--export", "json"}},
		{"missing preset file", []string{"--presets", "nope.yaml", "presets"}},
		{"bad fps", []string{"demo", "--fps", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Execute(tt.args); err == nil {
				t.Errorf("Execute(%v) succeeded", tt.args)
			}
		})
	}
}

func TestSimulate(t *testing.T) {
	out := project(t, "", nil)
	if err := Execute([]string{"simulate", "--preset", "stiff", "--to", "10"}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if lines[0] != "stiff: tension=210 friction=20 mass=1" {
		t.Errorf("header = %q", lines[0])
	}
	if last := lines[len(lines)-1]; !strings.HasPrefix(last, "settled after ") {
		t.Errorf("last line = %q", last)
	}
}

func TestSimulate_CSV(t *testing.T) {
	out := project(t, "simulate:\n  integrator: harmonic\n", nil)
	if err := Execute([]string{"simulate", "--csv", "--clamp"}); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(out).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(records[0], ",") != "frame,time_ms,value,velocity,rest" {
		t.Errorf("header = %v", records[0])
	}
	last := records[len(records)-1]
	if last[2] != "1.000000" || last[4] != "true" {
		t.Errorf("last record = %v", last)
	}
	for _, r := range records[1:] {
		if v, err := strconv.ParseFloat(r[2], 64); err != nil || v > 1 {
			t.Errorf("clamped value overshot: %v", r)
		}
	}
}

func TestSimulate_DidNotSettle(t *testing.T) {
	out := project(t, "", nil)
	if err := Execute([]string{"simulate", "--preset", "molasses", "--limit", "5"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "did not settle within 5 frames") {
		t.Errorf("output:\n%s", out)
	}
}

func TestProjectPresets(t *testing.T) {
	out := project(t, "presets:\n  - ui.toml\n", map[string]string{
		"ui.toml":    "[presets.cmd-snappy]\nextends = \"stiff\"\nclamp = true\n",
		"extra.yaml": "presets:\n  cmd-fade:\n    duration: 120ms\n    easing: easeOutQuad\n",
	})
	if err := Execute([]string{"--presets", "extra.yaml", "simulate", "--preset", "cmd-fade"}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "cmd-fade: tween 120ms") {
		t.Errorf("output = %q", strings.SplitN(out.String(), "\n", 2)[0])
	}

	out.Reset()
	if err := Execute([]string{"presets"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "cmd-snappy") || !strings.Contains(out.String(), "clamped") {
		t.Errorf("presets output:\n%s", out)
	}

	out.Reset()
	if err := Execute([]string{"presets", "--file", "ui.toml"}); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(out.String()), "\n"); len(lines) != 2 {
		t.Errorf("--file listed %d lines:\n%s", len(lines), out)
	}
}

func TestPresets_Export(t *testing.T) {
	out := project(t, "", nil)
	if err := Execute([]string{"presets", "--export", "toml"}); err != nil {
		t.Fatal(err)
	}
	table, err := presets.Parse(out.Bytes(), presets.TOML)
	if err != nil {
		t.Fatalf("exported toml does not parse: %v\n%s", err, out)
	}
	cfg, err := table.Config("gentle")
	if err != nil || cfg.Tension != 120 || cfg.Friction != 14 {
		t.Errorf("gentle = %+v, %v", cfg, err)
	}
}

func TestPlot(t *testing.T) {
	out := project(t, "plot:\n  width: 300\n  height: 160\n", nil)
	if err := Execute([]string{"plot", "--presets", "default, wobbly", "--out", "out/springs.png"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "(2 series)") {
		t.Errorf("output = %q", out)
	}
	f, err := os.Open(filepath.Join("out", "springs.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 160 {
		t.Errorf("image bounds = %v", b)
	}
}
