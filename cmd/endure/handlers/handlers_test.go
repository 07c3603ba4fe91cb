package handlers

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/endure/pkg/retry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "endure.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPolicyOptions_Resolve(t *testing.T) {
	path := writeConfig(t, "name: nightly\nmax_retries: 4\ndelay: 1s\nbackoff: linear\n")

	backoff := "Fibonacci"
	delay := 2 * time.Second
	cfg, err := PolicyOptions{
		ConfigPath: path,
		Backoff:    &backoff,
		Delay:      &delay,
	}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, "nightly", cfg.Name)
	require.NotNil(t, cfg.MaxRetries)
	assert.Equal(t, uint(4), *cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, *cfg.Delay)
	assert.Equal(t, retry.BackoffFibonacci, cfg.Backoff)
}

func TestPolicyOptions_ResolveDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := PolicyOptions{}.Resolve()
	require.NoError(t, err)
	assert.Nil(t, cfg.MaxRetries, "no endure.yaml means defaults")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "endure.yaml"), []byte("name: local\nmax_retries: 7\nbackoff: exponential\n"), 0o600))

	retries := uint(1)
	cfg, err = PolicyOptions{MaxRetries: &retries}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Name)
	assert.Equal(t, retry.BackoffExponential, cfg.Backoff)
	require.NotNil(t, cfg.MaxRetries)
	assert.Equal(t, uint(1), *cfg.MaxRetries, "flags override the default file")

	explicit := writeConfig(t, "name: explicit\n")
	cfg, err = PolicyOptions{ConfigPath: explicit}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Name)
	assert.Nil(t, cfg.MaxRetries, "an explicit path replaces the default file")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "endure.yaml"), []byte("backoff: sideways\n"), 0o600))
	_, err = PolicyOptions{}.Resolve()
	assert.ErrorIs(t, err, retry.ErrOutOfRange)
}

func TestPolicyOptions_ResolveErrors(t *testing.T) {
	_, err := PolicyOptions{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}.Resolve()
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := "sideways"
	_, err = PolicyOptions{Backoff: &bad}.Resolve()
	assert.ErrorIs(t, err, retry.ErrOutOfRange)

	factor := -1.0
	_, err = PolicyOptions{PolynomialFactor: &factor}.Resolve()
	assert.ErrorIs(t, err, retry.ErrOutOfRange)
}

func TestSchedule_RespectsBudgetAndDeadline(t *testing.T) {
	retries := uint(2)
	var out bytes.Buffer
	require.NoError(t, Schedule(&out, PolicyOptions{MaxRetries: &retries}, 10))
	assert.Contains(t, out.String(), "200ms")
	assert.NotContains(t, out.String(), "300ms")

	linear := "linear"
	maxDuration := 250 * time.Millisecond
	out.Reset()
	require.NoError(t, Schedule(&out, PolicyOptions{Backoff: &linear, MaxDuration: &maxDuration}, 10))
	assert.Contains(t, out.String(), "max duration 250ms")
	assert.NotContains(t, out.String(), "1s")
}

func TestFibonacci(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Fibonacci(&out, 4))
	assert.Equal(t, "0\t0\n1\t1\n2\t1\n3\t2\n", out.String())
}

func TestRun_NoCommand(t *testing.T) {
	err := Run(context.Background(), RunOptions{Logger: testr.New(t)})
	assert.Error(t, err)
}

func TestRun_RestrictedExitCodes(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	delay := time.Millisecond
	retries := uint(3)
	var stdout bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Policy:      PolicyOptions{Delay: &delay, MaxRetries: &retries},
		ExitCodes:   []int{75},
		MetricsAddr: "127.0.0.1:0",
		Command:     []string{"sh", "-c", "echo once; exit 1"},
		Stdout:      &stdout,
		Logger:      testr.New(t),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1 attempts")
	assert.Equal(t, "once\n", stdout.String())
}
