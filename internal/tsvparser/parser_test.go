package tsvparser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/config"
	"github.com/stretchr/testify/require"
)

func readAllFrom(t *testing.T, input string, settings config.TSVSettings) []Record {
	t.Helper()

	r, err := NewReader(strings.NewReader(input), settings)
	require.NoError(t, err)
	defer r.Close()

	records := []Record{}
	for r.Next() {
		records = append(records, r.Record())
	}
	require.NoError(t, r.Err())
	return records
}

func TestReader_Splitting(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Record
	}{
		{
			name:  "basic",
			input: "a\tb\tc\n1\t2\t3\n",
			want:  []Record{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			name:  "no trailing newline",
			input: "a\tb\n1\t2",
			want:  []Record{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "crlf line endings",
			input: "a\tb\r\n1\t2\r\n",
			want:  []Record{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "ragged rows",
			input: "a\n1\t2\t3\t4\nx\ty\n",
			want:  []Record{{"a"}, {"1", "2", "3", "4"}, {"x", "y"}},
		},
		{
			name:  "empty line is a record without fields",
			input: "a\n\nb\n",
			want:  []Record{{"a"}, {}, {"b"}},
		},
		{
			name:  "empty fields are kept",
			input: "\ta\t\t\n",
			want:  []Record{{"", "a", "", ""}},
		},
		{
			name:  "quotes are literal",
			input: "\"a\tb\"\t'c'\n",
			want:  []Record{{"\"a", "b\"", "'c'"}},
		},
		{
			name:  "whitespace is preserved",
			input: "  a \t b\n",
			want:  []Record{{"  a ", " b"}},
		},
		{
			name:  "bare carriage return belongs to the field",
			input: "a\rb\tc\r",
			want:  []Record{{"a\rb", "c\r"}},
		},
		{
			name:  "empty input",
			input: "",
			want:  []Record{},
		},
		{
			name:  "single newline",
			input: "\n",
			want:  []Record{{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, readAllFrom(t, tt.input, config.TSVSettings{}))
		})
	}
}

func TestReader_LineNumbers(t *testing.T) {
	r, err := NewReader(strings.NewReader("a\nb\nc"), config.TSVSettings{})
	require.NoError(t, err)

	var lines []int
	for r.Next() {
		lines = append(lines, r.Line())
	}
	require.NoError(t, r.Err())
	require.Equal(t, []int{1, 2, 3}, lines)
	require.False(t, r.Next(), "Next must keep returning false after EOF")
}

func TestReader_LongLine(t *testing.T) {
	long := strings.Repeat("x", 1<<20)
	records := readAllFrom(t, "a\t"+long+"\nb\n", config.TSVSettings{})

	require.Len(t, records, 2)
	require.Equal(t, long, records[0][1])
}

func TestReader_Encodings(t *testing.T) {
	t.Run("latin1", func(t *testing.T) {
		records := readAllFrom(t, "caf\xe9\tna\xefve\n", config.TSVSettings{Encoding: "ISO-8859-1"})
		require.Equal(t, []Record{{"café", "naïve"}}, records)
	})

	t.Run("windows-1252", func(t *testing.T) {
		records := readAllFrom(t, "\x80 5\n", config.TSVSettings{Encoding: "windows_1252"})
		require.Equal(t, []Record{{"€ 5"}}, records)
	})

	t.Run("utf-8 with bom", func(t *testing.T) {
		records := readAllFrom(t, "\ufeffa\tb\n", config.TSVSettings{Encoding: "UTF-8-BOM"})
		require.Equal(t, []Record{{"a", "b"}}, records)
	})

	t.Run("plain utf-8 keeps the bom", func(t *testing.T) {
		records := readAllFrom(t, "\ufeffa\n", config.TSVSettings{Encoding: "UTF-8"})
		require.Equal(t, []Record{{"\ufeffa"}}, records)
	})

	t.Run("bom only stripped from the first line", func(t *testing.T) {
		records := readAllFrom(t, "\ufeffa\n\ufeffb\n", config.TSVSettings{Encoding: "UTF-8-BOM"})
		require.Equal(t, []Record{{"a"}, {"\ufeffb"}}, records)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		for _, enc := range []string{"UTF-8", "UTF-8-BOM"} {
			r, err := NewReader(strings.NewReader("ok\nx\xffy\nnext\n"), config.TSVSettings{Encoding: enc})
			require.NoError(t, err)

			require.True(t, r.Next())
			require.Equal(t, Record{"ok"}, r.Record())
			require.False(t, r.Next())
			require.ErrorIs(t, r.Err(), ErrInvalidUTF8)
			require.ErrorContains(t, r.Err(), "line 2")
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := NewReader(strings.NewReader(""), config.TSVSettings{Encoding: "EBCDIC"})
		require.ErrorContains(t, err, "unsupported encoding")
		require.Error(t, CheckEncoding("EBCDIC"))
		require.NoError(t, CheckEncoding(""))
	})
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(dir, "missing.tsv"), config.TSVSettings{})
		require.Error(t, err)
		require.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Open(dir, config.TSVSettings{})
		require.ErrorContains(t, err, "is a directory")
	})

	t.Run("reads and closes", func(t *testing.T) {
		path := filepath.Join(dir, "data.tsv")
		require.NoError(t, os.WriteFile(path, []byte("a\tb\n"), 0644))

		r, err := Open(path, config.TSVSettings{})
		require.NoError(t, err)
		require.True(t, r.Next())
		require.Equal(t, Record{"a", "b"}, r.Record())
		require.NoError(t, r.Close())
		require.NoError(t, r.Close(), "second Close is a no-op")
	})
}

func TestReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.tsv")
	require.NoError(t, os.WriteFile(path, []byte("a\n1\t2\t3\n\n"), 0644))

	data, err := ReadAll(path, config.TSVSettings{})
	require.NoError(t, err)
	require.Equal(t, path, data.SourceFile)
	require.Equal(t, []Record{{"a"}, {"1", "2", "3"}, {}}, data.Records)
	require.Equal(t, 3, data.MaxFields)
}

func TestSplitJoin(t *testing.T) {
	for _, line := range []string{"", "a", "a\tb", "\t", "a\t\tb\t"} {
		require.Equal(t, line, Join(Split(line)), "line %q", line)
	}
}
