package commands

import (
	"bytes"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := Root()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "endure", cmd.Use)
	assert.Equal(t, "Retry commands with configurable backoff", cmd.Short)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range []string{"run", "schedule", "fib", "version"} {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
}

func TestVersion_Output(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	defer func() {
		version, commit, date = origVersion, origCommit, origDate
	}()

	SetVersionInfo("1.2.3", "abc123", "2024-01-01")

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "endure 1.2.3")
	assert.Contains(t, out, "commit: abc123")
}

func TestFib(t *testing.T) {
	out, _, err := execute(t, "fib", "6")
	require.NoError(t, err)
	assert.Equal(t, "0\t0\n1\t1\n2\t1\n3\t2\n4\t3\n5\t5\n", out)

	_, _, err = execute(t, "fib", "many")
	assert.Error(t, err)

	_, _, err = execute(t, "fib")
	assert.Error(t, err)
}

func TestSchedule(t *testing.T) {
	out, _, err := execute(t, "schedule", "-b", "exponential", "-d", "100ms", "--count", "3")
	require.NoError(t, err)

	for _, want := range []string{"100ms", "400ms", "900ms", "500ms", "1.4s"} {
		assert.Contains(t, out, want)
	}
}

func TestSchedule_InvalidFlags(t *testing.T) {
	_, _, err := execute(t, "schedule", "-b", "quadratic")
	assert.Error(t, err)

	_, _, err = execute(t, "schedule", "-b", "polynomial", "--polynomial-factor", "0")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	out, _, err := execute(t, "run", "-n", "2", "-d", "1ms", "--", "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	out, stderr, err := execute(t, "-v", "1", "run", "-n", "2", "-d", "1ms", "sh", "-c", "echo try; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, strings.Count(out, "try"))
	assert.Contains(t, stderr, "Retrying after failure")

	_, _, err = execute(t, "run", "-n", "2", "-d", "1ms", "--graceful", "sh", "-c", "exit 3")
	assert.NoError(t, err)
}
