package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapcsv/internal/cli"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestHeadersCommand(t *testing.T) {
	path := writeFile(t, "dup.csv", "id,name,name\n1,a,b\n")

	out, _, err := run(t, "headers", path)
	require.NoError(t, err)
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "name2")
}

func TestHeadersCommand_StrictDuplicates(t *testing.T) {
	path := writeFile(t, "dup.csv", "id,name,name\n1,a,b\n")

	_, _, err := run(t, "headers", path, "--strict-headers")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestCountCommand(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1,\n2,x\n3,y\n")

	out, _, err := run(t, "count", path, "--columns", "b")
	require.NoError(t, err)
	assert.Contains(t, out, "Records:")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "Non-empty b:")
	assert.Contains(t, out, "2")
}

func TestStatsCommand(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1,xx\n2,\n2,yyy\n")

	out, _, err := run(t, "stats", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Distinct")
	// Column a has two distinct values, column b max width 3.
	assert.Contains(t, out, "3 records")
}

func TestSelectCommand_UnknownColumn(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1,2\n")

	_, _, err := run(t, "select", path, "--columns", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown column")
}

func TestSelectCommand_PositionalColumns(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b,c\n1,2,3\n")

	out, _, err := run(t, "select", path, "--columns", "2,0", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "c,a")
	assert.Contains(t, out, "3,1")
}

func TestSelectCommand_WhereCompileError(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1,2\n")

	_, _, err := run(t, "select", path, "--where", "a ==")
	require.Error(t, err)
}

func TestHeadCommand_JSONOutput(t *testing.T) {
	path := writeFile(t, "data.csv", "name,city\nAlice,Berlin\n")

	out, _, err := run(t, "head", path, "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Alice"`)
	assert.Contains(t, out, `"city": "Berlin"`)
}

func TestDetectCommand_Pipe(t *testing.T) {
	path := writeFile(t, "data.psv", "a|b|c\n1|2|3\n")

	out, _, err := run(t, "detect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "|")
	assert.Contains(t, out, "3")
}

func TestHeadCommand_DialectPreset(t *testing.T) {
	// Auto-detection would pick comma here (two commas, one tab); the
	// tsv preset must force the tab separator instead.
	path := writeFile(t, "data.tsv", "id\tname,first,last\n1\tAda,Ada,Lovelace\n")

	out, _, err := run(t, "head", path, "--dialect", "tsv", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, `id,"name,first,last"`)
	assert.Contains(t, out, `1,"Ada,Ada,Lovelace"`)
}

func TestHeadCommand_UnknownDialect(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1,2\n")

	_, _, err := run(t, "head", path, "--dialect", "excel95")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dialect")
}

func TestConvertCommand_ToTab(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1,2\n")

	out, _, err := run(t, "convert", path, "--to", "tab")
	require.NoError(t, err)
	assert.Contains(t, out, "a\tb")
	assert.Contains(t, out, "1\t2")
}

func TestSidecarOverridesSeparator(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(data, []byte("a;b\n1;2\n"), 0o644))
	sidecar := filepath.Join(dir, "data.leapcsv.yml")
	require.NoError(t, os.WriteFile(sidecar, []byte("separator: \";\"\n"), 0o644))

	out, _, err := run(t, "head", data, "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "a,b")
	assert.Contains(t, out, "1,2")
}
