// Bracketed-object stream: the secondary RecordStream, consuming a
// single top-level JSON array of flat objects (spec.md §6,
// "Bracketed-object format"). Object keys become column names in
// first-object encounter order; numeric values are read as floats;
// string values are accepted but read numerically as 0.0 in the
// default binding, matching CSVStream's all-Float schema.
package record

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/pthm-cable/fieldglass/simerr"
)

// JSONStream implements RecordStream over a bracketed array of flat
// JSON objects.
type JSONStream struct {
	path    string
	schema  Schema
	records []map[string]json.Number
	cursor  int
	opened  bool
}

// NewJSONStream returns an unopened JSONStream.
func NewJSONStream() *JSONStream {
	return &JSONStream{}
}

// Init records the file path to open.
func (j *JSONStream) Init(config string) error {
	j.path = config
	return nil
}

// Open reads and parses the configured file.
func (j *JSONStream) Open() error {
	if j.path == "" {
		return simerr.New(simerr.InvalidParameter, "record.JSONStream.Open", "no file path configured; call Init first")
	}
	f, err := os.Open(j.path)
	if err != nil {
		return simerr.Wrap(simerr.System, "record.JSONStream.Open", "failed to open file", err)
	}
	defer f.Close()
	return j.LoadReader(f)
}

// LoadReader parses a bracketed-object document from r directly,
// bypassing the file path Init/Open would otherwise require. Column
// order is recovered per-object via orderedKeys, since decoding into
// a Go map would discard it.
func (j *JSONStream) LoadReader(r io.Reader) error {
	var raw []json.RawMessage
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return simerr.Wrap(simerr.Parse, "record.JSONStream.LoadReader", "top-level value is not a JSON array", err)
	}

	var order []string
	seen := make(map[string]bool)
	records := make([]map[string]json.Number, 0, len(raw))

	for _, rm := range raw {
		keys, err := orderedKeys(rm)
		if err != nil {
			continue
		}
		var obj map[string]interface{}
		objDec := json.NewDecoder(bytes.NewReader(rm))
		objDec.UseNumber()
		if err := objDec.Decode(&obj); err != nil {
			continue
		}

		row := make(map[string]json.Number, len(obj))
		firstObject := len(records) == 0
		for _, k := range keys {
			if firstObject && !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
			switch v := obj[k].(type) {
			case json.Number:
				row[k] = v
			default:
				row[k] = json.Number("0")
			}
		}
		records = append(records, row)
	}

	schema := Schema{Columns: make([]Column, len(order))}
	for i, name := range order {
		schema.Columns[i] = Column{Name: name, Type: Float, Ordinal: i}
	}

	j.schema = schema
	j.records = records
	j.cursor = 0
	j.opened = true
	return nil
}

// orderedKeys walks a flat JSON object's raw bytes token-by-token to
// recover its key order, since decoding into a Go map loses it.
func orderedKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, simerr.New(simerr.Parse, "record.orderedKeys", "expected a flat object")
	}

	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, simerr.New(simerr.Parse, "record.orderedKeys", "expected string key")
		}
		keys = append(keys, key)

		// Skip the value token (or nested structure).
		var skip interface{}
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// Schema returns the first-object-derived schema.
func (j *JSONStream) Schema() (Schema, error) {
	if !j.opened {
		return Schema{}, simerr.New(simerr.InvalidParameter, "record.JSONStream.Schema", "stream not opened")
	}
	return j.schema, nil
}

// HasNext reports whether more objects remain.
func (j *JSONStream) HasNext() bool {
	return j.opened && j.cursor < len(j.records)
}

// ReadNext returns the next object as a Record keyed by schema
// ordinal.
func (j *JSONStream) ReadNext() (Record, error) {
	if !j.HasNext() {
		return Record{}, errOutOfRange("record.JSONStream.ReadNext")
	}
	row := j.records[j.cursor]
	j.cursor++

	values := make([]Value, len(j.schema.Columns))
	for _, col := range j.schema.Columns {
		n, ok := row[col.Name]
		if !ok {
			values[col.Ordinal] = Value{Kind: Float, F: 0}
			continue
		}
		f, err := n.Float64()
		if err != nil {
			f = 0
		}
		values[col.Ordinal] = Value{Kind: Float, F: f}
	}
	return Record{Values: values}, nil
}

// Reset rewinds to the first object.
func (j *JSONStream) Reset() error {
	j.cursor = 0
	return nil
}

// Close releases buffered records; idempotent.
func (j *JSONStream) Close() error {
	j.records = nil
	j.opened = false
	j.cursor = 0
	return nil
}

// Capabilities reports Seekable.
func (j *JSONStream) Capabilities() Capability {
	return Seekable
}
