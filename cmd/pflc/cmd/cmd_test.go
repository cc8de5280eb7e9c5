package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out, errOut bytes.Buffer
	code = Run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFmtWrite(t *testing.T) {
	path := writeSource(t, t.TempDir(), "w.pf", "fn  id(x:i32)->i32=x;")

	code, stdout, stderr := run(t, "", "fmt", "--write", path)
	if code != ExitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("--write must not print, got %q", stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "fn id(x: i32) -> i32 = x;\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFmtWriteLeavesBrokenFile(t *testing.T) {
	const src = "fn id(x: i32) -> i32 = x"
	path := writeSource(t, t.TempDir(), "b.pf", src)

	if code, _, _ := run(t, "", "fmt", "-w", path); code != ExitParse {
		t.Fatalf("got exit %d, want %d", code, ExitParse)
	}
	data, _ := os.ReadFile(path)
	if string(data) != src {
		t.Errorf("file was modified: %q", data)
	}
}

func TestFmtWriteRejectsStdin(t *testing.T) {
	code, _, stderr := run(t, "fn t() -> bool = true;", "fmt", "--write", "-")
	if code != ExitUsage || !strings.Contains(stderr, "standard input") {
		t.Errorf("got exit %d, stderr %q", code, stderr)
	}
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	cfg := writeSource(t, dir, "custom.toml", "[output]\nformat = \"json\"\nspans = true\n")
	src := writeSource(t, dir, "c.pf", "fn t() -> bool = true;")

	code, stdout, stderr := run(t, "", "--config", cfg, "parse", src)
	if code != ExitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var tree map[string]any
	if err := json.Unmarshal([]byte(stdout), &tree); err != nil {
		t.Fatalf("expected json, got %q", stdout)
	}
	if tree["span"] != src+":1:1-1:23" {
		t.Errorf("got span %v", tree["span"])
	}

	// --spans=false on the command line beats the file.
	_, stdout, _ = run(t, "", "--config", cfg, "parse", src, "--spans=false")
	if strings.Contains(stdout, `"span"`) {
		t.Errorf("spans not disabled:\n%s", stdout)
	}
}

func TestConfigFlagMissingFile(t *testing.T) {
	code, _, stderr := run(t, "", "--config", filepath.Join(t.TempDir(), "none.toml"), "version")
	if code != ExitUsage || !strings.Contains(stderr, `"code":"E_CONFIG"`) {
		t.Errorf("got exit %d, stderr %q", code, stderr)
	}
}

func TestVerboseLogsToStderr(t *testing.T) {
	code, _, stderr := run(t, "fn t() -> bool = true;", "-v", "check", "-")
	if code != ExitOK {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, want := range []string{"level=DEBUG", "msg=parsed", "file=<stdin>", "run="} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := run(t, "", "version")
	if code != ExitOK || stdout != "pflc "+Version+"\n" {
		t.Errorf("got exit %d, %q", code, stdout)
	}
}
