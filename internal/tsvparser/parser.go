// =============================================================================
// TSV to XLSX Converter - TSV Parser Module
// =============================================================================
//
// This module reads tab-separated input files record by record. It is
// deliberately literal:
//   - One record per line ("\n" or "\r\n" terminated; the last line may
//     have no terminator)
//   - Fields are split on a single tab character
//   - No quoting, escaping, trimming or header handling
//   - An empty line is a record with no fields
//   - In the UTF-8 encodings a line that is not valid UTF-8 is an error
//     rather than being silently repaired
//
// Lines are streamed, so the whole file is never held in memory by the
// Reader itself.
//
// =============================================================================

package tsvparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/TSV-to-XLSX-conversion/internal/config"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Delimiter separates fields within a line.
const Delimiter = "\t"

// byteOrderMark is stripped from the first line in UTF-8-BOM mode.
const byteOrderMark = "\ufeff"

// ErrInvalidUTF8 is reported for a line with invalid UTF-8 when the input
// encoding is UTF-8 or UTF-8-BOM.
var ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

// Record is the ordered list of fields of one input line.
type Record []string

// =============================================================================
// STREAMING READER
// =============================================================================

// Reader yields the records of a TSV source one at a time.
//
// USAGE:
//   r, err := tsvparser.Open(path, settings)
//   if err != nil {
//       return err
//   }
//   defer r.Close()
//
//   for r.Next() {
//       record := r.Record()
//   }
//
//   if err := r.Err(); err != nil {
//       return err
//   }
type Reader struct {
	closer io.Closer
	reader *bufio.Reader
	enc    inputEncoding
	record Record
	line   int
	err    error
	eof    bool
}

// Open opens a TSV file for streaming.
//
// PARAMETERS:
//   - filePath: The path to the TSV file.
//   - settings: The input settings (encoding).
//
// RETURNS:
//   - A Reader positioned before the first record. The caller must Close it.
//   - An error if the file cannot be opened or the encoding is unknown.
func Open(filePath string, settings config.TSVSettings) (*Reader, error) {
	enc, err := encodingFor(settings.Encoding)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("failed to open file: %s is a directory", filePath)
	}

	r := newReader(file, enc)
	r.closer = file
	return r, nil
}

// NewReader wraps an arbitrary source. Close on the returned Reader does not
// close src.
func NewReader(src io.Reader, settings config.TSVSettings) (*Reader, error) {
	enc, err := encodingFor(settings.Encoding)
	if err != nil {
		return nil, err
	}
	return newReader(src, enc), nil
}

func newReader(src io.Reader, enc inputEncoding) *Reader {
	if enc.decoder != nil {
		src = transform.NewReader(src, enc.decoder)
	}
	return &Reader{reader: bufio.NewReader(src), enc: enc}
}

// Next advances to the next record. It returns false at end of input or on
// a read error; check Err to tell them apart.
func (r *Reader) Next() bool {
	if r.err != nil || r.eof {
		return false
	}

	text, err := r.reader.ReadString('\n')
	if err == io.EOF {
		r.eof = true
		if text == "" {
			return false
		}
	} else if err != nil {
		r.err = fmt.Errorf("error reading line %d: %w", r.line+1, err)
		return false
	}

	r.line++
	text = trimLineEnding(text)
	if r.enc.stripBOM && r.line == 1 {
		text = strings.TrimPrefix(text, byteOrderMark)
	}
	if r.enc.validate && !utf8.ValidString(text) {
		r.err = fmt.Errorf("line %d: %w", r.line, ErrInvalidUTF8)
		return false
	}

	r.record = Split(text)
	return true
}

// Record returns the current record.
func (r *Reader) Record() Record {
	return r.record
}

// Line returns the 1-based number of the current line.
func (r *Reader) Line() int {
	return r.line
}

// Err returns the first read error, if any.
func (r *Reader) Err() error {
	return r.err
}

// Close releases the underlying file, if the Reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// =============================================================================
// WHOLE-FILE PARSING
// =============================================================================

// Data is a fully loaded TSV file.
type Data struct {
	// SourceFile is the path the records were read from.
	SourceFile string

	// Records holds every line of the file in order.
	Records []Record

	// MaxFields is the field count of the widest record.
	MaxFields int
}

// ReadAll loads every record of a TSV file.
func ReadAll(filePath string, settings config.TSVSettings) (*Data, error) {
	r, err := Open(filePath, settings)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data := &Data{SourceFile: filePath, Records: []Record{}}
	for r.Next() {
		record := r.Record()
		data.Records = append(data.Records, record)
		if len(record) > data.MaxFields {
			data.MaxFields = len(record)
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	return data, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// Split breaks one line (without its terminator) into fields.
func Split(line string) Record {
	if line == "" {
		return Record{}
	}
	return strings.Split(line, Delimiter)
}

// Join is the inverse of Split.
func Join(record Record) string {
	return strings.Join(record, Delimiter)
}

// CheckEncoding reports whether an encoding name is supported.
func CheckEncoding(name string) error {
	_, err := encodingFor(name)
	return err
}

// trimLineEnding removes a trailing "\n" or "\r\n". A bare "\r" that is not
// followed by "\n" belongs to the field.
func trimLineEnding(text string) string {
	if !strings.HasSuffix(text, "\n") {
		return text
	}
	text = text[:len(text)-1]
	return strings.TrimSuffix(text, "\r")
}

// inputEncoding describes how raw input bytes become UTF-8 text.
type inputEncoding struct {
	decoder  *encoding.Decoder // nil for UTF-8 input
	validate bool              // reject invalid UTF-8 instead of decoding
	stripBOM bool
}

// encodingFor maps an encoding name to its decoding. The UTF-8 modes read
// bytes as they are; x/text's UTF-8 decoders would replace invalid bytes
// with U+FFFD without telling anyone.
func encodingFor(name string) (inputEncoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return inputEncoding{validate: true}, nil
	case "UTF-8-BOM", "UTF-8-SIG":
		return inputEncoding{validate: true, stripBOM: true}, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return inputEncoding{decoder: charmap.ISO8859_1.NewDecoder()}, nil
	case "WINDOWS-1252", "CP1252":
		return inputEncoding{decoder: charmap.Windows1252.NewDecoder()}, nil
	default:
		return inputEncoding{}, fmt.Errorf("unsupported encoding: %s", name)
	}
}
