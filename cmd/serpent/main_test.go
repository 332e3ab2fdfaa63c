package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	a := &app{stdout: &stdout, stderr: &stderr}
	code := a.dispatch(args)
	return code, stdout.String(), stderr.String()
}

func TestRunFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.py":        "import helpers\nprint(helpers.double(21))\n",
		"lib/helpers.py": "def double(x):\n    return x * 2\n",
	})

	code, out, errOut := runCLI("run", filepath.Join(dir, "main.py"))
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "42\n" {
		t.Errorf("unexpected output %q", out)
	}

	code, out, _ = runCLI(filepath.Join(dir, "main.py"))
	if code != 0 || out != "42\n" {
		t.Errorf("a bare file argument must run it, got %d %q", code, out)
	}
}

func TestRunFailure(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.py": "x = 1\ny = x / 0\n"})

	code, _, errOut := runCLI("run", "--color=never", filepath.Join(dir, "main.py"))
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	for _, want := range []string{"main:2:5: A001: division by zero", "2 | y = x / 0", "^~~~~"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut)
		}
	}

	code, _, errOut = runCLI("run", "--color=always", filepath.Join(dir, "main.py"))
	if code != 1 || !strings.Contains(errOut, "\033[0;31mx / 0\033[0m") {
		t.Errorf("expected highlighted error, got %q", errOut)
	}
}

func TestRunProject(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"serpent.yaml": "entry: app\nsource_dirs: [src]\nmax_depth: 20\n",
		"src/app.py":   "def f(n):\n    return f(n + 1)\nf(0)\n",
		"src/other.py": "print(\"other\")\n",
	})
	t.Chdir(dir)

	code, _, errOut := runCLI("run")
	if code != 1 || !strings.Contains(errOut, "X001: maximum recursion depth 20 exceeded") {
		t.Errorf("expected the project's depth limit, got %d %q", code, errOut)
	}

	code, out, _ := runCLI("run", "other")
	if code != 0 || out != "other\n" {
		t.Errorf("expected module run, got %d %q", code, out)
	}
}

func TestRunErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.py": "print(1)\n"})
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing file", []string{"run", filepath.Join(dir, "nope.py")}, 1},
		{"bad color", []string{"run", "--color=red", filepath.Join(dir, "main.py")}, 1},
		{"unknown flag", []string{"run", "--nope"}, 2},
		{"too many args", []string{"run", "a.py", "b.py"}, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"no command", nil, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runCLI(tt.args...); code != tt.code {
				t.Errorf("expected exit %d, got %d", tt.code, code)
			}
		})
	}
}

func TestTestCommand(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a_pass.py": "print(\"fine\")\n",
		"b_fail.py": "print(\"before\")\nx = [1][3]\n",
		"c_lib.py":  "def f():\n    pass\n",
	})

	code, out, _ := runCLI("test", "-j", "2", dir)
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	want := "ok   a_pass\n" +
		"FAIL b_fail\n" +
		"    before\n" +
		"    b_fail:2:5: R001: index 3 out of range for length 1\n" +
		"    2 | x = [1][3]\n" +
		"            ^~~~~~\n" +
		"ok   c_lib\n" +
		"2 passed, 1 failed\n"
	if out != want {
		t.Errorf("output mismatch:\n--- expected\n%s--- actual\n%s", want, out)
	}
}

func TestParseAndTokens(t *testing.T) {
	dir := writeFiles(t, map[string]string{"p.py": "x = 1\n", "bad.py": "x = (\n"})

	code, out, _ := runCLI("parse", filepath.Join(dir, "p.py"))
	if code != 0 || !strings.HasPrefix(out, "Block\n  Assign\n") {
		t.Errorf("unexpected parse output %d %q", code, out)
	}

	code, out, _ = runCLI("parse", "--yaml", filepath.Join(dir, "p.py"))
	if code != 0 || !strings.Contains(out, "kind: Assign") {
		t.Errorf("unexpected yaml output %d %q", code, out)
	}

	code, _, errOut := runCLI("parse", filepath.Join(dir, "bad.py"))
	if code != 1 || !strings.Contains(errOut, "P001") {
		t.Errorf("expected a syntax error, got %d %q", code, errOut)
	}

	code, out, _ = runCLI("tokens", filepath.Join(dir, "p.py"))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if code != 0 || len(lines) != 5 || lines[0] != `("x", ID, 0:0-0:1)` || !strings.Contains(lines[4], "EOF") {
		t.Errorf("unexpected tokens %d %q", code, out)
	}
}

func TestFmt(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"messy.py":     "def f(a,b):\n  return a+b\nprint(f(1,2))\n",
		"commented.py": "x=1 # keep me\n",
	})
	messy := filepath.Join(dir, "messy.py")
	want := "def f(a, b):\n    return a + b\n\nprint(f(1, 2))\n"

	code, out, _ := runCLI("fmt", messy)
	if code != 0 || out != want {
		t.Errorf("unexpected fmt output %d %q", code, out)
	}

	if code, _, errOut := runCLI("fmt", "-w", messy); code != 0 {
		t.Fatalf("fmt -w failed: %s", errOut)
	}
	data, err := os.ReadFile(messy)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != want {
		t.Errorf("file not rewritten: %q", data)
	}

	commented := filepath.Join(dir, "commented.py")
	code, _, errOut := runCLI("fmt", "-w", commented)
	if code != 1 || !strings.Contains(errOut, "1:5: file has comments") {
		t.Errorf("expected comment refusal, got %d %q", code, errOut)
	}
	if data, _ := os.ReadFile(commented); string(data) != "x=1 # keep me\n" {
		t.Errorf("commented file was modified: %q", data)
	}
}

func TestPackAndRunBundle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"app/app.py":  "import util\nprint(util.name)\n",
		"app/util.py": "name = \"bundled\"\n",
	})
	bundle := filepath.Join(dir, "app.db")

	code, out, errOut := runCLI("pack", filepath.Join(dir, "app"), bundle)
	if code != 0 {
		t.Fatalf("pack failed: %s", errOut)
	}
	if !strings.Contains(out, "packed 2 modules") || !strings.Contains(out, "entry app") {
		t.Errorf("unexpected pack output %q", out)
	}

	code, out, errOut = runCLI("run", "--bundle", bundle)
	if code != 0 || out != "bundled\n" {
		t.Errorf("bundle run failed: %d %q %q", code, out, errOut)
	}

	code, _, errOut = runCLI("pack", filepath.Join(dir, "app"), bundle, "missing")
	if code != 1 || !strings.Contains(errOut, "entry module missing") {
		t.Errorf("expected a missing entry error, got %d %q", code, errOut)
	}
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI("version")
	if code != 0 || !strings.HasPrefix(out, "serpent ") {
		t.Errorf("unexpected version output %d %q", code, out)
	}
}

// scripted feeds prompts from a fixed list of lines, then io.EOF.
func scripted(lines ...string) func(string) (string, error) {
	return func(string) (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		line := lines[0]
		lines = lines[1:]
		return line, nil
	}
}

func TestReadChunk(t *testing.T) {
	prompt := scripted("x = 1", "def f(a):", "    b = a", "    return b", "", "if x == 1:", "    print(x)")

	want := []string{"x = 1", "def f(a):\n    b = a\n    return b", "if x == 1:\n    print(x)"}
	for _, w := range want {
		chunk, err := readChunk(prompt)
		if err != nil {
			t.Fatal(err)
		}
		if chunk != w {
			t.Errorf("expected %q, got %q", w, chunk)
		}
	}
	if _, err := readChunk(prompt); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestSession(t *testing.T) {
	var out, errOut bytes.Buffer
	s := newSession(map[string]string{"m": "v = 3\n"}, &out, &errOut, false)

	for _, code := range []string{"x = 2", "x * 21", "\"s\"", "print(x)", "from m import v", "v", "None"} {
		if !s.exec(code) {
			t.Fatalf("%q failed: %s", code, errOut.String())
		}
	}
	if want := "42\n\"s\"\n2\n3\n"; out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}

	if s.exec("y + 1") {
		t.Error("expected failure for an undefined name")
	}
	if !strings.Contains(errOut.String(), "N001") || !strings.Contains(errOut.String(), "1 | y + 1") {
		t.Errorf("unexpected error output %q", errOut.String())
	}
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text, res.IsError
}

func TestToolSession(t *testing.T) {
	ts := newToolSession(map[string]string{"m": "k = 5\n"})

	if out, isErr := callTool(t, ts.handleExec, map[string]any{"code": "import m\nx = m.k\nprint(x)\nx + 1"}); isErr || out != "5\n6\n" {
		t.Errorf("unexpected exec result %q %v", out, isErr)
	}
	if out, isErr := callTool(t, ts.handleExec, map[string]any{"code": "x"}); isErr || out != "5\n" {
		t.Errorf("session state lost: %q %v", out, isErr)
	}
	if out, isErr := callTool(t, ts.handleExec, map[string]any{"code": "x / 0"}); !isErr || !strings.Contains(out, "A001") {
		t.Errorf("expected a division error, got %q %v", out, isErr)
	}
	if _, isErr := callTool(t, ts.handleExec, map[string]any{}); !isErr {
		t.Error("missing code must be an error")
	}

	if out, isErr := callTool(t, ts.handleParse, map[string]any{"code": "pass"}); isErr || !strings.Contains(out, "Pass") {
		t.Errorf("unexpected parse result %q %v", out, isErr)
	}
	if out, isErr := callTool(t, ts.handleParse, map[string]any{"code": "if"}); !isErr || !strings.Contains(out, "P001") {
		t.Errorf("expected a syntax error, got %q %v", out, isErr)
	}

	callTool(t, ts.handleReset, nil)
	if out, isErr := callTool(t, ts.handleExec, map[string]any{"code": "x"}); !isErr || !strings.Contains(out, "N001") {
		t.Errorf("reset must drop bindings, got %q %v", out, isErr)
	}
}
