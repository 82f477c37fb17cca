package sysmetrics

import (
	"github.com/pthm-cable/fieldglass/record"
	"github.com/pthm-cable/fieldglass/simerr"
)

// streamSchema is fixed: sysmetrics always reports the same five
// columns in the same order.
var streamSchema = record.Schema{
	Columns: []record.Column{
		{Name: "cpu_pct", Type: record.Float, Ordinal: 0},
		{Name: "mem_pct", Type: record.Float, Ordinal: 1},
		{Name: "load1", Type: record.Float, Ordinal: 2},
		{Name: "net_rx_bps", Type: record.Float, Ordinal: 3},
		{Name: "net_tx_bps", Type: record.Float, Ordinal: 4},
	},
}

// Stream adapts a Collector to the record.RecordStream contract: each
// ReadNext polls once and returns the fresh sample as a record. It
// never advertises Seekable (there is nothing to rewind to; each read
// is a live poll).
type Stream struct {
	collector *Collector
	opened    bool
}

// NewStream wraps collector as a RecordStream. Init's config argument
// is accepted for contract compatibility but ignored: there is no
// file path to configure.
func NewStream(collector *Collector) *Stream {
	return &Stream{collector: collector}
}

func (s *Stream) Init(config string) error {
	return nil
}

func (s *Stream) Open() error {
	s.opened = true
	return s.collector.Poll()
}

func (s *Stream) Schema() (record.Schema, error) {
	if !s.opened {
		return record.Schema{}, simerr.New(simerr.InvalidParameter, "sysmetrics.Stream.Schema", "stream not opened")
	}
	return streamSchema, nil
}

// HasNext is always true once opened: sysmetrics is a live,
// unbounded stream; callers supply their own cap (e.g. via
// record.BindConfig.MaxRecords).
func (s *Stream) HasNext() bool {
	return s.opened
}

func (s *Stream) ReadNext() (record.Record, error) {
	if !s.opened {
		return record.Record{}, simerr.New(simerr.InvalidParameter, "sysmetrics.Stream.ReadNext", "stream not opened")
	}
	if err := s.collector.Poll(); err != nil {
		return record.Record{}, err
	}
	sample := s.collector.Sample()
	return record.Record{Values: []record.Value{
		{Kind: record.Float, F: sample.CPUPct},
		{Kind: record.Float, F: sample.MemPct},
		{Kind: record.Float, F: sample.Load1},
		{Kind: record.Float, F: sample.NetRxBps},
		{Kind: record.Float, F: sample.NetTxBps},
	}}, nil
}

func (s *Stream) Reset() error {
	return simerr.New(simerr.InvalidParameter, "sysmetrics.Stream.Reset", "live stream is not seekable")
}

func (s *Stream) Close() error {
	s.opened = false
	return nil
}

func (s *Stream) Capabilities() record.Capability {
	return 0
}
