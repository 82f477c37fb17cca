// Package record defines the RecordStream external contract and its
// default implementations (delimited text, bracketed JSON), plus the
// binder that seeds a particle store from a stream.
//
// Grounded on spec.md §6's RecordStream contract and
// original_source/src/data_source.h's DataSource vtable shape
// (init/open/schema/has_next/read_next/reset/close), generalized from
// a C function-pointer table to a Go interface, per the spec's §9
// redesign note that function-pointer dispatch should become an
// interface-level operation.
package record

import (
	"github.com/pthm-cable/fieldglass/simerr"
)

// FieldType tags a column's declared type.
type FieldType uint8

const (
	Float FieldType = iota
	Int
	String
	Timestamp
)

// Column is one entry in a Schema.
type Column struct {
	Name    string
	Type    FieldType
	Ordinal int
}

// Schema is the ordered list of columns a stream exposes.
type Schema struct {
	Columns []Column
}

// IndexOf resolves a column's ordinal by name.
func (s Schema) IndexOf(name string) (int, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Ordinal, true
		}
	}
	return 0, false
}

// Value is one typed cell in a Record.
type Value struct {
	Kind FieldType
	F    float64
	I    int64
	S    string
}

// Record is an ordered tuple of typed values, indexed by column
// ordinal as resolved from the Schema at bind time.
type Record struct {
	Values []Value
}

// Float reads the value at ordinal as a float64, converting from Int
// if necessary and returning 0 for String/Timestamp columns read
// numerically (the default bindings' documented behavior for
// non-numeric columns).
func (r Record) Float(ordinal int) float64 {
	if ordinal < 0 || ordinal >= len(r.Values) {
		return 0
	}
	v := r.Values[ordinal]
	switch v.Kind {
	case Float:
		return v.F
	case Int:
		return float64(v.I)
	default:
		return 0
	}
}

// String reads the value at ordinal as a string.
func (r Record) String(ordinal int) string {
	if ordinal < 0 || ordinal >= len(r.Values) {
		return ""
	}
	return r.Values[ordinal].S
}

// Capability flags advertise optional stream behavior.
type Capability uint8

const (
	Seekable Capability = 1 << iota
)

// RecordStream is the external data-source contract the record
// binder consumes. Implementations do not need to support Reset
// unless they advertise Seekable.
type RecordStream interface {
	Init(config string) error
	Open() error
	Schema() (Schema, error)
	HasNext() bool
	ReadNext() (Record, error)
	Reset() error
	Close() error
	Capabilities() Capability
}

// errOutOfRange is returned by ReadNext once the stream is exhausted
// (B2).
func errOutOfRange(op string) error {
	return simerr.New(simerr.OutOfRange, op, "no more records")
}
