// Delimited text stream: the default RecordStream implementation,
// implementing the tolerant parsing rules of spec.md §6 ("Delimited
// text format") over stdlib encoding/csv's Reader. No pack library
// offers this exact tolerance policy (gocsv and encoding/csv both
// treat a field-count mismatch as a hard error by default; the spec
// requires silently skipping such lines instead), so the column
// splitting and per-cell float parsing is hand-rolled here while
// still leaning on encoding/csv's Reader for quoted-field splitting
// rather than a bespoke strings.Split, which would mishandle quoted
// commas. See DESIGN.md for why this one component sits on
// encoding/csv instead of gocsv.
package record

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pthm-cable/fieldglass/simerr"
)

const (
	defaultMaxLineLength = 1024
	defaultMaxColumns    = 10
	defaultMaxRows       = 1000
)

// CSVStream implements RecordStream over comma-delimited text: first
// non-empty line is a header of field names, subsequent non-empty
// lines are records. Mismatched-length lines are skipped silently and
// unparseable numeric tokens read as 0.0.
type CSVStream struct {
	MaxLineLength int
	MaxColumns    int
	MaxRows       int

	path   string
	schema Schema
	rows   [][]string
	cursor int
	opened bool
}

// NewCSVStream returns a CSVStream with the spec's default limits.
func NewCSVStream() *CSVStream {
	return &CSVStream{
		MaxLineLength: defaultMaxLineLength,
		MaxColumns:    defaultMaxColumns,
		MaxRows:       defaultMaxRows,
	}
}

// Init records the file path to open. Per the RecordStream contract,
// Init only prepares the source; it does not read anything yet.
func (c *CSVStream) Init(config string) error {
	c.path = config
	return nil
}

// Open reads the configured file and parses it eagerly, buffering
// rows so Reset can rewind without re-reading the source.
func (c *CSVStream) Open() error {
	if c.path == "" {
		return simerr.New(simerr.InvalidParameter, "record.CSVStream.Open", "no file path configured; call Init first")
	}
	f, err := os.Open(c.path)
	if err != nil {
		return simerr.Wrap(simerr.System, "record.CSVStream.Open", "failed to open file", err)
	}
	defer f.Close()
	return c.LoadReader(f)
}

// LoadReader parses rows from r directly, bypassing the file path
// Init/Open would otherwise require. Exported so non-file sources
// (embedded fixtures, network bodies, test data) can drive the same
// tolerant parser.
func (c *CSVStream) LoadReader(r io.Reader) error {
	if c.MaxLineLength <= 0 {
		c.MaxLineLength = defaultMaxLineLength
	}
	if c.MaxColumns <= 0 {
		c.MaxColumns = defaultMaxColumns
	}
	if c.MaxRows <= 0 {
		c.MaxRows = defaultMaxRows
	}

	// The scanner's own buffer is sized generously above MaxLineLength
	// so an over-length line is reported as a normal (if long) token to
	// skip, rather than tripping bufio.ErrTooLong and aborting the
	// whole parse.
	bufSize := c.MaxLineLength * 4
	if bufSize < 64*1024 {
		bufSize = 64 * 1024
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufSize), bufSize)

	var header []string
	var rows [][]string

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) > c.MaxLineLength {
			continue
		}

		fields, err := splitCSVLine(line)
		if err != nil {
			continue
		}
		if len(fields) > c.MaxColumns {
			continue
		}

		if header == nil {
			header = make([]string, len(fields))
			for i, f := range fields {
				header[i] = strings.TrimSpace(f)
			}
			continue
		}

		if len(fields) != len(header) {
			continue
		}
		rows = append(rows, fields)
		if len(rows) >= c.MaxRows {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return simerr.Wrap(simerr.System, "record.CSVStream.LoadReader", "scan failed", err)
	}
	if header == nil {
		return simerr.New(simerr.Parse, "record.CSVStream.LoadReader", "no header line found")
	}

	schema := Schema{Columns: make([]Column, len(header))}
	for i, name := range header {
		schema.Columns[i] = Column{Name: name, Type: Float, Ordinal: i}
	}

	c.schema = schema
	c.rows = rows
	c.cursor = 0
	c.opened = true
	return nil
}

// splitCSVLine splits one line's comma-delimited fields, using
// encoding/csv's Reader so a quoted field containing a comma is
// handled correctly.
func splitCSVLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	return r.Read()
}

// Schema returns the header-derived schema; every column is typed
// Float since the default binding reads all values numerically.
func (c *CSVStream) Schema() (Schema, error) {
	if !c.opened {
		return Schema{}, simerr.New(simerr.InvalidParameter, "record.CSVStream.Schema", "stream not opened")
	}
	return c.schema, nil
}

// HasNext reports whether more rows remain.
func (c *CSVStream) HasNext() bool {
	return c.opened && c.cursor < len(c.rows)
}

// ReadNext returns the next row as a Record, parsing each field as a
// float and treating unparseable tokens as 0.0 (B2 at exhaustion).
func (c *CSVStream) ReadNext() (Record, error) {
	if !c.HasNext() {
		return Record{}, errOutOfRange("record.CSVStream.ReadNext")
	}
	fields := c.rows[c.cursor]
	c.cursor++

	values := make([]Value, len(fields))
	for i, raw := range fields {
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			f = 0.0
		}
		values[i] = Value{Kind: Float, F: f}
	}
	return Record{Values: values}, nil
}

// Reset rewinds to the first row; CSVStream always advertises
// Seekable since rows are buffered in memory after Open.
func (c *CSVStream) Reset() error {
	c.cursor = 0
	return nil
}

// Close releases buffered rows; idempotent.
func (c *CSVStream) Close() error {
	c.rows = nil
	c.opened = false
	c.cursor = 0
	return nil
}

// Capabilities reports Seekable.
func (c *CSVStream) Capabilities() Capability {
	return Seekable
}
