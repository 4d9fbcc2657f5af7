package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/xlsxparser"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default, since cobra binds them to
// package-level variables that outlive a single execution.
func resetFlags(t *testing.T) {
	t.Helper()

	reset := func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}

	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(t)

	var stdout, stderr bytes.Buffer
	err := execute(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestConvert_DefaultOutputPath(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "data.tsv")
	writeFile(t, input, "a\tb\tc\n1\t2\t3\n")

	stdout, _, err := run(t, "convert", input, "--verify")
	require.NoError(t, err)

	output := filepath.Join(dir, "data.xlsx")
	require.Contains(t, stdout, fmt.Sprintf("%s -> %s (2 rows)", input, output))

	sheet, err := xlsxparser.Parse(output)
	require.NoError(t, err)
	require.Equal(t, "Sheet1", sheet.Name)
	require.Equal(t, []string{"a\tb\tc", "1\t2\t3"}, sheet.Lines())
}

func TestConvert_ExplicitOutputAndSheet(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "data.tsv")
	output := filepath.Join(dir, "report.xlsx")
	writeFile(t, input, "x\n")

	_, _, err := run(t, "convert", input, output, "--sheet", "Report")
	require.NoError(t, err)

	sheet, err := xlsxparser.Parse(output)
	require.NoError(t, err)
	require.Equal(t, "Report", sheet.Name)
}

func TestConvert_MissingInput(t *testing.T) {
	dir := t.TempDir()

	_, _, err := run(t, "convert", filepath.Join(dir, "missing.tsv"))
	require.ErrorContains(t, err, "open input")
	require.NoFileExists(t, filepath.Join(dir, "missing.xlsx"))
}

func TestConvert_Args(t *testing.T) {
	_, _, err := run(t, "convert")
	require.Error(t, err)

	_, _, err = run(t, "convert", "a", "b", "c")
	require.Error(t, err)
}

func TestConvert_ExplicitConfigMustExist(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "data.tsv")
	writeFile(t, input, "x\n")

	_, _, err := run(t, "convert", input, "--config", filepath.Join(dir, "missing.yaml"))
	require.ErrorContains(t, err, "failed to read config file")
}

func TestConvert_JSONLogs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "data.tsv")
	writeFile(t, input, "x\n")

	_, stderr, err := run(t, "convert", input, "--log-format", "json")
	require.NoError(t, err)
	require.Contains(t, stderr, `"msg":"Converted file"`)
}

func TestDefaultOutputPath(t *testing.T) {
	require.Equal(t, "data.xlsx", defaultOutputPath("data.tsv"))
	require.Equal(t, "dir/data.xlsx", defaultOutputPath("dir/data"))
	require.Equal(t, "book.xlsx.xlsx", defaultOutputPath("book.xlsx"))
}

// batchFixture creates an input directory with two TSV files and a config
// file pointing at it.
func batchFixture(t *testing.T, extraConfig string) (string, string) {
	t.Helper()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "input", "first.tsv"), "a\tb\n1\t2\n")
	writeFile(t, filepath.Join(root, "input", "second.tsv"), "x\n")
	writeFile(t, filepath.Join(root, "input", "ignored.txt"), "nope\n")

	cfg := fmt.Sprintf("input_dir: %s\noutput_dir: %s\ninput_archive_dir: %s\n%s",
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "archive"),
		extraConfig,
	)
	cfgPath := filepath.Join(root, "config.yaml")
	writeFile(t, cfgPath, cfg)

	return root, cfgPath
}

func TestProcess(t *testing.T) {
	root, cfgPath := batchFixture(t, "")

	stdout, _, err := run(t, "process", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, stdout, "Successful: 2")

	for _, name := range []string{"first", "second"} {
		require.FileExists(t, filepath.Join(root, "output", name+".xlsx"))
		require.FileExists(t, filepath.Join(root, "archive", name+".tsv"))
		require.NoFileExists(t, filepath.Join(root, "input", name+".tsv"))
	}
	require.FileExists(t, filepath.Join(root, "input", "ignored.txt"))

	sheet, err := xlsxparser.Parse(filepath.Join(root, "output", "first.xlsx"))
	require.NoError(t, err)
	require.Equal(t, []string{"a\tb", "1\t2"}, sheet.Lines())

	summaries, err := filepath.Glob(filepath.Join(root, "output", "processing_summary_*.txt"))
	require.NoError(t, err)
	require.Len(t, summaries, 1)
}

func TestProcess_ArchiveTimestampSubdirs(t *testing.T) {
	root, cfgPath := batchFixture(t, "archive_timestamp_subdirs: true\n")

	_, _, err := run(t, "process", "--config", cfgPath)
	require.NoError(t, err)

	for _, name := range []string{"first", "second"} {
		archived, err := filepath.Glob(filepath.Join(root, "archive", "*", "*", "*", name+".tsv"))
		require.NoError(t, err)
		require.Len(t, archived, 1)
		require.Regexp(t, `\d{4}/\d{2}/\d{2}/`+name+`\.tsv$`, filepath.ToSlash(archived[0]))
		require.NoFileExists(t, filepath.Join(root, "archive", name+".tsv"))
	}
}

func TestProcess_DryRun(t *testing.T) {
	root, cfgPath := batchFixture(t, "")

	stdout, _, err := run(t, "process", "--config", cfgPath, "--dry-run")
	require.NoError(t, err)
	require.Contains(t, stdout, "Dry run: 2 file(s) would be converted")

	require.FileExists(t, filepath.Join(root, "input", "first.tsv"))
	require.NoFileExists(t, filepath.Join(root, "output", "first.xlsx"))
	require.NoDirExists(t, filepath.Join(root, "archive"))
}

func TestProcess_Failure(t *testing.T) {
	root, cfgPath := batchFixture(t, "workbook:\n  sheet_name: \"bad[name]\"\n")

	stdout, _, err := run(t, "process", "--config", cfgPath)
	require.ErrorContains(t, err, "2 of 2 file(s) failed to convert")
	require.Contains(t, stdout, "Failed: 2")

	require.FileExists(t, filepath.Join(root, "input", "first.tsv"))
	require.NoFileExists(t, filepath.Join(root, "output", "first.xlsx"))
}

func TestProcess_NoFiles(t *testing.T) {
	root, cfgPath := batchFixture(t, "input_pattern: \"*.csv\"\n")

	stdout, _, err := run(t, "process", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, stdout, "No files matching *.csv found in "+filepath.Join(root, "input"))
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "data.tsv")
	lines := []string{"a\tb", "", "c"}
	writeFile(t, input, strings.Join(lines, "\n")+"\n")

	_, _, err := run(t, "convert", input)
	require.NoError(t, err)

	stdout, _, err := run(t, "inspect", filepath.Join(dir, "data.xlsx"))
	require.NoError(t, err)
	require.Equal(t, strings.Join(lines, "\n")+"\n", stdout)
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	require.Contains(t, stdout, "TSV to XLSX Converter")
	require.Contains(t, stdout, "Version:    "+Version)
}
