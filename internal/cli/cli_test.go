package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/orthoroute/pkg/errors"
	"github.com/matzehuels/orthoroute/pkg/geom"
)

// isolate points every XDG directory at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func runCLI(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func decodeRoute(t *testing.T, out string) routeOutput {
	t.Helper()
	var got routeOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	return got
}

func TestConnectCommand(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, nil, "connect",
		"--from", "0,0,100,100", "--to", "300,200,100,100",
		"--start", "right", "--end", "left", "--json", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}

	got := decodeRoute(t, out)
	want := []geom.Point{{X: 100, Y: 50}, {X: 200, Y: 50}, {X: 200, Y: 250}, {X: 300, Y: 250}}
	if pts := geom.Points(got.Waypoints); !slicesEqual(pts, want) {
		t.Errorf("waypoints = %v, want %v", pts, want)
	}
	if got.Pair != geom.PairHH {
		t.Errorf("pair = %v, want h:h", got.Pair)
	}
	if got.Cached {
		t.Error("cached = true with --no-cache")
	}
	if a := got.Waypoints[0].Anchor; a == nil || *a != geom.Pt(50, 50) {
		t.Errorf("source anchor = %v, want (50,50)", a)
	}
}

func TestConnectCommandTable(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, nil, "connect", "--from", "0,0,100,100", "--to", "300,0,100,100", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"anchor", "300", "waypoints", "fresh"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestConnectCommandErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"bad rect", []string{"--from", "0,0,100", "--to", "300,0,100,100"}, errs.ErrCodeInvalidInput},
		{"bad side", []string{"--from", "0,0,100,100", "--to", "300,0,100,100", "--start", "north"}, errs.ErrCodeInvalidDirection},
		{"empty rect", []string{"--from", "0,0,0,100", "--to", "300,0,100,100"}, errs.ErrCodeDegenerateGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"connect", "--no-cache"}, tt.args...)
			_, err := runCLI(t, nil, args...)
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestConnectPointsCommand(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, nil, "connect-points", "--a", "0,0", "--b", "100,50", "--directions", "h:v", "--json")
	if err != nil {
		t.Fatal(err)
	}
	got := decodeRoute(t, out)
	want := []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50}}
	if pts := geom.Points(got.Waypoints); !slicesEqual(pts, want) {
		t.Errorf("waypoints = %v, want %v", pts, want)
	}

	if _, err := runCLI(t, nil, "connect-points", "--a", "0,0", "--b", "100,50", "--directions", "H:V"); !errs.Is(err, errs.ErrCodeInvalidDirection) {
		t.Errorf("uppercase pair error = %v, want INVALID_DIRECTION", err)
	}
}

func TestRepairCommandStdin(t *testing.T) {
	isolate(t)

	req := `{
	  "source": {"x": 0, "y": 0, "width": 100, "height": 100},
	  "target": {"x": 300, "y": 220, "width": 100, "height": 100},
	  "start": "right",
	  "end": "left",
	  "waypoints": [
	    {"x": 100, "y": 50, "original": {"x": 50, "y": 50}},
	    {"x": 200, "y": 50},
	    {"x": 200, "y": 250},
	    {"x": 300, "y": 250, "original": {"x": 350, "y": 250}}
	  ]
	}`

	out, err := runCLI(t, strings.NewReader(req), "repair", "-", "--json", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	got := decodeRoute(t, out)
	if got.Kind != "adjusted" {
		t.Errorf("kind = %q, want adjusted", got.Kind)
	}
	want := []geom.Point{{X: 100, Y: 50}, {X: 200, Y: 50}, {X: 200, Y: 270}, {X: 300, Y: 270}}
	if pts := geom.Points(got.Waypoints); !slicesEqual(pts, want) {
		t.Errorf("waypoints = %v, want %v", pts, want)
	}
}

func TestRepairCommandBadInput(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, strings.NewReader(`{"source": 1}`), "repair", "-", "--no-cache")
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}

	_, err = runCLI(t, nil, "repair", filepath.Join(t.TempDir(), "missing.json"), "--no-cache")
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)

	out, err := runCLI(t, nil, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "config", "orthoroute", "config.toml"); strings.TrimSpace(out) != want {
		t.Errorf("config path = %q, want %q", out, want)
	}

	out, err = runCLI(t, nil, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[layout]", "align_tolerance", "[storage]"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestConfigFlag(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"none\"\ndir = \"/tmp/routes\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, nil, "--config", path, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "/tmp/routes" {
		t.Errorf("cache path = %q, want /tmp/routes", out)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[cache]\nbackend = \"memcached\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, nil, "--config", bad, "config", "show"); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestCachePath(t *testing.T) {
	dir := isolate(t)

	out, err := runCLI(t, nil, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "cache", "orthoroute"); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestRenderDOT(t *testing.T) {
	dir := isolate(t)

	snap := `{
	  "id": "d1",
	  "shapes": [
	    {"id": "a", "bounds": {"x": 0, "y": 0, "width": 100, "height": 100}},
	    {"id": "b", "bounds": {"x": 300, "y": 0, "width": 100, "height": 100}}
	  ],
	  "connections": [
	    {"id": "c", "source": "a", "target": "b",
	     "waypoints": [{"x": 100, "y": 50}, {"x": 300, "y": 50}]}
	  ]
	}`
	in := filepath.Join(dir, "diagram.json")
	if err := os.WriteFile(in, []byte(snap), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, nil, "render", in, "-f", "dot"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "diagram.dot"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"shape:a"`, `"shape:b"`, `"conn:c:0"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("dot output missing %s:\n%s", want, data)
		}
	}

	if _, err := runCLI(t, nil, "render", in, "-f", "gif"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := runCLI(t, nil, "completion", shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, "orthoroute") {
				t.Errorf("%s completion does not mention orthoroute", shell)
			}
		})
	}

	if _, err := runCLI(t, nil, "completion", "tcsh"); err == nil {
		t.Error("completion for an unsupported shell succeeded")
	}
}

func TestCompleteSides(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, nil, "__complete", "connect", "--start", "")
	if err != nil {
		t.Fatal(err)
	}
	for _, side := range []string{"top", "right", "bottom", "left"} {
		if !strings.Contains(out, side+"\n") {
			t.Errorf("side completion missing %q:\n%s", side, out)
		}
	}
}

func slicesEqual(a, b []geom.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
