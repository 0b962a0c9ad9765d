package main_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", "run", ".")
	cmd.Args = append(cmd.Args, args...)
	cmd.Dir = "."
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func TestCLIRepairsStdinToStdout(t *testing.T) {
	stdout, stderr, err := runCLI(t, `{"a": 1, "b": 2,}`)
	require.NoError(t, err, "stderr: %s", stderr)
	require.Equal(t, "{\"a\": 1, \"b\": 2}\n", stdout)
}

func TestCLIRepairsFileArgument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"key": "value"`), 0o644))

	stdout, stderr, err := runCLI(t, "", path)
	require.NoError(t, err, "stderr: %s", stderr)
	require.Equal(t, "{\"key\": \"value\"}\n", stdout)
}

func TestCLIWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.json")
	out := filepath.Join(dir, "fixed.json")
	require.NoError(t, os.WriteFile(in, []byte(`{'a': 1}`), 0o644))

	_, stderr, err := runCLI(t, "", in, "--output", out)
	require.NoError(t, err, "stderr: %s", stderr)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, `{"a": 1}`, string(got))
}

func TestCLIInlineRewritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1,}`), 0o644))

	_, stderr, err := runCLI(t, "", path, "--inline")
	require.NoError(t, err, "stderr: %s", stderr)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"a": 1}`, string(got))
}

func TestCLIInlineWithoutFileFails(t *testing.T) {
	_, stderr, err := runCLI(t, `{"a": 1}`, "--inline")
	require.Error(t, err, "stderr: %s", stderr)
}

func TestCLIStrictModeFailsOnMalformedInput(t *testing.T) {
	_, stderr, err := runCLI(t, `{"a": 1,}`, "--strict")
	require.Error(t, err)
	require.Contains(t, stderr, "strict mode")
}

func TestCLIIndentFlagPrettyPrints(t *testing.T) {
	stdout, stderr, err := runCLI(t, `{"a": 1}`, "--indent", "2")
	require.NoError(t, err, "stderr: %s", stderr)
	require.Equal(t, "{\n  \"a\": 1\n}\n", stdout)
}
