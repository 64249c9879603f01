// Package main provides tests for the leapcsv CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapcsv/internal/cli"
)

func testdataDir(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	return filepath.Join(wd, "..", "..", "testdata")
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "leapcsv") {
		t.Errorf("version output should contain 'leapcsv', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	expectedCommands := []string{"detect", "headers", "head", "select", "count", "convert", "import", "query", "serve"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestDetectCommand(t *testing.T) {
	td := testdataDir(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"detect", filepath.Join(td, "users.csv")})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("detect command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, ",") {
		t.Errorf("detect output should report the comma separator, got: %s", output)
	}
}

func TestHeadCommand(t *testing.T) {
	td := testdataDir(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"head", filepath.Join(td, "users.csv"), "-n", "2"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("head command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Alice") || !strings.Contains(output, "Bob") {
		t.Errorf("head output should contain the first two records, got: %s", output)
	}
	if strings.Contains(output, "Carol") {
		t.Errorf("head -n 2 should stop after two records, got: %s", output)
	}
}

func TestSelectCommandWithFilter(t *testing.T) {
	td := testdataDir(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"select", filepath.Join(td, "users.csv"),
		"--columns", "name",
		"--where", `city != ""`,
	})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("select command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Alice") {
		t.Errorf("select output should contain Alice, got: %s", output)
	}
	if strings.Contains(output, "Carol") {
		t.Errorf("select should filter out Carol (empty city), got: %s", output)
	}
}

func TestConvertCommand(t *testing.T) {
	td := testdataDir(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"convert", filepath.Join(td, "inventory.psv"),
		"--separator", "pipe",
		"--single-quote",
	})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("convert command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "sku,description,qty") {
		t.Errorf("convert output should start with a comma-separated header, got: %s", output)
	}
	if !strings.Contains(output, `"widget, large"`) {
		t.Errorf("convert output should re-quote fields containing the separator, got: %s", output)
	}
}

func TestImportCommand(t *testing.T) {
	td := testdataDir(t)
	tmpDir := t.TempDir()

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"import", filepath.Join(td, "users.csv"),
		"--target", "sqlite",
		"--dsn", filepath.Join(tmpDir, "users.db"),
		"--state", filepath.Join(tmpDir, "state.db"),
	})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("import command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "imported 4 records") {
		t.Errorf("import output should report 4 records, got: %s", output)
	}

	// History against the same state database
	cmd2 := cli.NewRootCmd()
	buf2 := new(bytes.Buffer)
	cmd2.SetOut(buf2)
	cmd2.SetErr(buf2)
	cmd2.SetArgs([]string{
		"import", "--history", "10",
		"--state", filepath.Join(tmpDir, "state.db"),
	})

	if err := cmd2.Execute(); err != nil {
		t.Fatalf("import --history error = %v", err)
	}
	if !strings.Contains(buf2.String(), "completed") {
		t.Errorf("history output should contain a completed run, got: %s", buf2.String())
	}
}

func TestQueryCommand(t *testing.T) {
	td := testdataDir(t)
	tmpDir := t.TempDir()

	// Import first so the state database exists.
	setup := cli.NewRootCmd()
	setup.SetOut(new(bytes.Buffer))
	setup.SetErr(new(bytes.Buffer))
	setup.SetArgs([]string{
		"import", filepath.Join(td, "users.csv"),
		"--target", "sqlite",
		"--dsn", filepath.Join(tmpDir, "users.db"),
		"--state", filepath.Join(tmpDir, "state.db"),
	})
	if err := setup.Execute(); err != nil {
		t.Fatalf("import setup error = %v", err)
	}

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"query", "SELECT source_file, records, status FROM import_runs",
		"--state", filepath.Join(tmpDir, "state.db"),
		"--format", "csv",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("query command error = %v", err)
	}
	if !strings.Contains(buf.String(), "completed") {
		t.Errorf("query output should contain the completed run, got: %s", buf.String())
	}
}
