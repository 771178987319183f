package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dyluth/errand/pkg/entity"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `version: "1.0"
session: {actor: tester, admin: true}
orchestrator: {confirm: prompt}
remote:
  failure_probability: 0
  reconnect_probability: 0
  initial_state: %s
seed:
  - {id: P001, name: Cafe Central, category: refreshment-point, status: active}
  - {id: P002, name: Harbour Books, category: shop, status: pending}
  - {id: N001, name: Spring market opens, category: news}
`

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writeConfig(t *testing.T, initialState string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "errand.yml")
	content := strings.Replace(testConfig, "%s", initialState, 1)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// resetFlags restores every flag to its default so package-level flag
// variables don't leak between test invocations.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_ShowsHelpWhenNoSubcommand(t *testing.T) {
	out, _, err := executeCommand(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "errand")
}

func TestRootCommand_RejectsUnknownFlags(t *testing.T) {
	_, _, err := executeCommand(t, "", "--unknown-flag", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestInitThenList(t *testing.T) {
	dir := t.TempDir()

	out, _, err := executeCommand(t, "", "init", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully initialized")

	_, _, err = executeCommand(t, "", "init", "--dir", dir)
	require.Error(t, err)
	assert.Equal(t, "initialization failed", err.Error())

	_, _, err = executeCommand(t, "", "init", "--dir", dir, "--force")
	require.NoError(t, err)

	out, _, err = executeCommand(t, "", "list", "--config", filepath.Join(dir, "errand.yml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Cafe Central")
	assert.Contains(t, out, "entities found")

	// The scaffolded link drops at random; pin it so the example script is deterministic
	cfgPath := filepath.Join(dir, "errand.yml")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	pinned := strings.Replace(string(data), "failure_probability: 0.1", "failure_probability: 0", 1)
	require.NoError(t, os.WriteFile(cfgPath, []byte(pinned), 0644))

	out, _, err = executeCommand(t, "", "run", filepath.Join(dir, "scripts", "delete-twice.yml"),
		"--config", filepath.Join(dir, "errand.yml"), "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "steps completed")
}

func TestList(t *testing.T) {
	cfg := writeConfig(t, "connected")

	t.Run("filters as jsonl", func(t *testing.T) {
		out, _, err := executeCommand(t, "", "list", "-c", cfg, "--status", "pending", "-o", "jsonl")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 1)
		var e entity.Entity
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
		assert.Equal(t, "P002", e.ID)
	})

	t.Run("category glob", func(t *testing.T) {
		out, _, err := executeCommand(t, "", "list", "-c", cfg, "--category", "refresh*")
		require.NoError(t, err)
		assert.Contains(t, out, "P001")
		assert.NotContains(t, out, "P002")
		assert.Contains(t, out, "1 entity found")
	})

	t.Run("bad status", func(t *testing.T) {
		_, errOut, err := executeCommand(t, "", "list", "-c", cfg, "--status", "lost")
		require.Error(t, err)
		assert.Contains(t, errOut, "Valid statuses")
	})

	t.Run("bad format", func(t *testing.T) {
		_, _, err := executeCommand(t, "", "list", "-c", cfg, "-o", "xml")
		assert.EqualError(t, err, "invalid output format")
	})

	t.Run("mirror needs redis", func(t *testing.T) {
		_, _, err := executeCommand(t, "", "list", "-c", cfg, "--mirror")
		assert.EqualError(t, err, "no mirror in simulated mode")
	})

	t.Run("missing config", func(t *testing.T) {
		_, errOut, err := executeCommand(t, "", "list", "-c", filepath.Join(t.TempDir(), "nope.yml"))
		assert.EqualError(t, err, "failed to load configuration")
		assert.Contains(t, errOut, "errand init")
	})
}

func TestShow(t *testing.T) {
	cfg := writeConfig(t, "connected")

	out, _, err := executeCommand(t, "", "show", "-c", cfg, "P002")
	require.NoError(t, err)
	var e entity.Entity
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, "Harbour Books", e.Name)

	out, _, err = executeCommand(t, "", "show", "-c", cfg, "N00")
	require.NoError(t, err)
	assert.Contains(t, out, "Spring market opens")

	_, errOut, err := executeCommand(t, "", "show", "-c", cfg, "P00")
	assert.EqualError(t, err, "ambiguous entity id")
	assert.Contains(t, errOut, "P001")
	assert.Contains(t, errOut, "P002")

	_, _, err = executeCommand(t, "", "show", "-c", cfg, "Q999")
	assert.EqualError(t, err, "entity not found")
}

func TestDelete(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		cfg := writeConfig(t, "connected")
		out, errOut, err := executeCommand(t, "y\n", "delete", "-c", cfg, "P001")
		require.NoError(t, err)
		assert.Contains(t, out, "✓ delete P001: deleted")
		assert.Contains(t, errOut, "Proceed? [y/N]")
		assert.Contains(t, errOut, `remove "Cafe Central"`)
	})

	t.Run("declined", func(t *testing.T) {
		cfg := writeConfig(t, "connected")
		_, errOut, err := executeCommand(t, "n\n", "delete", "-c", cfg, "P001")
		assert.EqualError(t, err, "cancelled")
		assert.Contains(t, errOut, "cancelled before commit")
	})

	t.Run("unknown id", func(t *testing.T) {
		cfg := writeConfig(t, "connected")
		_, errOut, err := executeCommand(t, "", "delete", "-c", cfg, "--yes", "P404")
		assert.EqualError(t, err, "not_found")
		assert.Contains(t, errOut, "delete P404: not found")
	})

	t.Run("disconnected", func(t *testing.T) {
		cfg := writeConfig(t, "disconnected")
		_, errOut, err := executeCommand(t, "", "delete", "-c", cfg, "-y", "P001")
		assert.EqualError(t, err, "connection_interrupted")
		assert.Contains(t, errOut, "Nothing was changed")
	})

	t.Run("non-admin with require_admin", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "errand.yml")
		content := strings.Replace(testConfig, "%s", "connected", 1)
		content = strings.Replace(content, "{confirm: prompt}", "{confirm: always, require_admin: true}", 1)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, errOut, err := executeCommand(t, "", "delete", "-c", path, "--admin=false", "--actor", "bob", "P001")
		assert.EqualError(t, err, "validation_error")
		assert.Contains(t, errOut, `"bob" is not an admin session`)
	})
}

func TestCreateAndUpdate(t *testing.T) {
	cfg := writeConfig(t, "connected")

	out, _, err := executeCommand(t, "", "create", "-c", cfg, "-y", "--id", "P003", "--name", "Night Market", "--category", "market")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ create P003: created")

	_, errOut, err := executeCommand(t, "", "create", "-c", cfg, "-y", "--id", "P001", "--name", "Duplicate")
	assert.EqualError(t, err, "validation_error")
	assert.Contains(t, errOut, `entity "P001" already exists`)

	_, errOut, err = executeCommand(t, "", "create", "-c", cfg, "-y", "--id", "P009")
	assert.EqualError(t, err, "validation_error")
	assert.Contains(t, errOut, "name: failed required")

	out, _, err = executeCommand(t, "", "update", "-c", cfg, "-y", "P001", "--location", "Graz")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ update P001: updated")

	_, errOut, err = executeCommand(t, "", "update", "-c", cfg, "-y", "P001")
	assert.EqualError(t, err, "validation_error")
	assert.Contains(t, errOut, "no fields to change")

	// Prompt shows only the changed field
	_, errOut, err = executeCommand(t, "yes\n", "update", "-c", cfg, "P002", "--name", "Harbour Maps")
	require.NoError(t, err)
	assert.Contains(t, errOut, `name: "Harbour Books" -> "Harbour Maps"`)
	assert.NotContains(t, errOut, "category:")
}

func TestStatusTransitions(t *testing.T) {
	cfg := writeConfig(t, "connected")

	for _, action := range []string{"approve", "reject", "archive"} {
		out, _, err := executeCommand(t, "", action, "-c", cfg, "-y", "P002")
		require.NoError(t, err, action)
		assert.Contains(t, out, "✓ update P002: updated")
	}

	_, _, err := executeCommand(t, "", "approve", "-c", cfg, "-y", "P404")
	assert.EqualError(t, err, "not_found")
}

func TestRun(t *testing.T) {
	cfg := writeConfig(t, "connected")
	dir := t.TempDir()

	passing := filepath.Join(dir, "pass.yml")
	require.NoError(t, os.WriteFile(passing, []byte(`steps:
  - {action: delete, id: P001, expect: success}
  - {action: delete, id: P001, expect: not_found}
`), 0644))

	out, errOut, err := executeCommand(t, "", "run", passing, "-c", cfg, "-y", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ delete P001: deleted")
	assert.Contains(t, errOut, "delete P001: not found")
	assert.Contains(t, out, `errand_usecase_outcomes_total{action="delete",outcome="not_found"} 1`)
	assert.Contains(t, out, "2 steps completed")

	failing := filepath.Join(dir, "fail.yml")
	require.NoError(t, os.WriteFile(failing, []byte(`steps:
  - {action: delete, id: P404, expect: success}
  - {action: approve, id: P002}
`), 0644))

	_, errOut, err = executeCommand(t, "", "run", failing, "-c", cfg, "-y")
	assert.EqualError(t, err, "script expectations failed")
	assert.Contains(t, errOut, "step 1: expected success, got not_found")
	assert.Contains(t, errOut, "1 of 2 steps")

	invalid := filepath.Join(dir, "invalid.yml")
	require.NoError(t, os.WriteFile(invalid, []byte("steps:\n  - action: merge\n"), 0644))
	_, _, err = executeCommand(t, "", "run", invalid, "-c", cfg)
	assert.EqualError(t, err, "invalid script")
}

func TestProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errand.yml")
	content := strings.Replace(testConfig, "%s", "connected", 1)
	content = strings.Replace(content, "failure_probability: 0\n  reconnect_probability: 0", "failure_probability: 1\n  reconnect_probability: 1", 1)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, _, err := executeCommand(t, "", "probe", "-c", path, "--count", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "probe 1: disconnected (was connected)")
	assert.Contains(t, out, "probe 2: connected (was disconnected)")
	assert.Contains(t, out, "probe 3: disconnected (was connected)")
	assert.Contains(t, out, "1/3 probes connected")

	_, _, err = executeCommand(t, "", "probe", "-c", path, "--count", "0")
	assert.EqualError(t, err, "invalid probe count")
}

func TestWatchNeedsRedis(t *testing.T) {
	cfg := writeConfig(t, "connected")
	_, _, err := executeCommand(t, "", "watch", "-c", cfg)
	assert.EqualError(t, err, "watch needs redis mode")
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")
	assert.Equal(t, "1.2.3 (commit: abc, built: today)", rootCmd.Version)
}
